package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/verihire/verihire/internal/models"
)

type AuditRepository interface {
	Insert(ctx context.Context, row *models.VerificationAudit) error
	ListRecent(ctx context.Context, limit int) ([]models.VerificationAudit, error)
	ListBySkill(ctx context.Context, skill string, limit int) ([]models.VerificationAudit, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Insert(ctx context.Context, row *models.VerificationAudit) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *auditRepo) ListRecent(ctx context.Context, limit int) ([]models.VerificationAudit, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.VerificationAudit
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *auditRepo) ListBySkill(ctx context.Context, skill string, limit int) ([]models.VerificationAudit, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.VerificationAudit
	err := r.db.WithContext(ctx).
		Where("skill = ?", skill).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
