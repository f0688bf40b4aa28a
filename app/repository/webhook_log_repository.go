package repository

import (
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

// webhookLogRepository implements the WebhookLogRepository interface
type webhookLogRepository struct {
	db *gorm.DB
}

// NewWebhookLogRepository creates a new webhook log repository instance
func NewWebhookLogRepository(db *gorm.DB) WebhookLogRepository {
	return &webhookLogRepository{db: db}
}

// Append writes one audit row. The table is append-only.
func (r *webhookLogRepository) Append(entry *models.WebhookLog) error {
	return r.db.Create(entry).Error
}

// List retrieves audit rows newest first
func (r *webhookLogRepository) List(offset, limit int) ([]models.WebhookLog, error) {
	var logs []models.WebhookLog
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, err
}

// ListByEventType retrieves audit rows of one event type newest first
func (r *webhookLogRepository) ListByEventType(eventType string, offset, limit int) ([]models.WebhookLog, error) {
	var logs []models.WebhookLog
	err := r.db.Where("event_type = ?", eventType).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, err
}

// CountByStatus returns the number of audit rows with the given status
func (r *webhookLogRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.WebhookLog{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
