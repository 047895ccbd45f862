package models

import (
	"time"

	"gorm.io/datatypes"
)

// VerificationAudit is the relational audit row written after each
// completed pipeline run, for marketplace-side reporting.
type VerificationAudit struct {
	ID           string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SubmissionID string `gorm:"column:submission_id;type:uuid;index" json:"submission_id"`
	UserID       string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Skill        string `gorm:"column:skill;type:text;index" json:"skill"`

	Decision        string `gorm:"column:decision;type:text" json:"decision"`
	ConfidenceScore int    `gorm:"column:confidence_score;type:integer" json:"confidence_score"`

	Flags    datatypes.JSON `gorm:"column:flags;type:jsonb" json:"flags"`
	Analysis datatypes.JSON `gorm:"column:analysis;type:jsonb" json:"analysis"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (VerificationAudit) TableName() string { return "verification_audits" }
