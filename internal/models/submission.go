package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocalizedText holds per-locale variants of a generated question.
type LocalizedText map[string]string

// Resolve returns the text for the requested locale, falling back to "en"
// and then to the first available locale (sorted for determinism).
func (t LocalizedText) Resolve(locale string) string {
	if len(t) == 0 {
		return ""
	}
	if s, ok := t[locale]; ok && s != "" {
		return s
	}
	if s, ok := t["en"]; ok && s != "" {
		return s
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		if t[k] != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return t[keys[0]]
}

// AcousticMetrics is the compact feature vector sampled during capture.
// Values are reported by the capture flow and trusted as-is.
type AcousticMetrics struct {
	AvgVolume          float64 `bson:"avg_volume" json:"avg_volume"`
	VolumeVariance     float64 `bson:"volume_variance" json:"volume_variance"`
	SilenceRatio       float64 `bson:"silence_ratio" json:"silence_ratio"` // clamped to [0,1]
	PeakCount          int     `bson:"peak_count" json:"peak_count"`
	SpeechRateVariance float64 `bson:"speech_rate_variance" json:"speech_rate_variance"`
}

// Submission is one recorded answer to a generated skill question.
// Immutable once handed to the pipeline; only review fields are updated.
type Submission struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubmissionID string             `bson:"submission_id" json:"submission_id"` // uuid v4
	UserID       string             `bson:"user_id" json:"user_id"`

	Skill          string        `bson:"skill" json:"skill"`
	Question       LocalizedText `bson:"question" json:"question"`
	ExpectedAnswer string        `bson:"expected_answer" json:"expected_answer"`

	MediaRef           string `bson:"media_ref,omitempty" json:"media_ref,omitempty"`
	RecordedDurationMs int64  `bson:"recorded_duration_ms" json:"recorded_duration_ms"`
	LanguageHint       string `bson:"language_hint,omitempty" json:"language_hint,omitempty"`

	AcousticMetrics *AcousticMetrics `bson:"acoustic_metrics,omitempty" json:"acoustic_metrics,omitempty"`

	Status   string          `bson:"status" json:"status"` // queued|approved|rejected|pending
	Analysis *AnalysisResult `bson:"analysis,omitempty" json:"analysis,omitempty"`

	ReviewedBy  *string    `bson:"reviewed_by" json:"reviewed_by"` // nil = no human involved
	ReviewNotes string     `bson:"review_notes,omitempty" json:"review_notes,omitempty"`
	ReviewedAt  *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

const (
	StatusQueued = "queued"
)
