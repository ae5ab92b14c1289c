package repository

import (
	"context"

	"prodtrack/internal/models"

	"gorm.io/gorm/clause"
)

func (r *Repository) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error)
}

func (r *Repository) ListAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, translate(err)
}
