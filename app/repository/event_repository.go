package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

// eventRepository implements the EventRepository interface
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new session event repository instance
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Create creates a new session event in the database
func (r *eventRepository) Create(event *models.SessionEvent) error {
	return r.db.Create(event).Error
}

// GetByID retrieves a session event by ID
func (r *eventRepository) GetByID(id uint) (*models.SessionEvent, error) {
	var event models.SessionEvent
	if err := r.db.Preload("Client").First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// GetByUserID retrieves a photographer's sessions inside a time range
func (r *eventRepository) GetByUserID(userID uint, from, to time.Time) ([]models.SessionEvent, error) {
	var events []models.SessionEvent
	err := r.db.Preload("Client").
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID, from, to).
		Order("start_time ASC").Find(&events).Error
	return events, err
}

// GetUpcoming retrieves the next scheduled sessions for a photographer
func (r *eventRepository) GetUpcoming(userID uint, limit int) ([]models.SessionEvent, error) {
	var events []models.SessionEvent
	err := r.db.Preload("Client").
		Where("user_id = ? AND start_time >= ? AND status = ?", userID, time.Now(), models.EventStatusScheduled).
		Order("start_time ASC").Limit(limit).Find(&events).Error
	return events, err
}

// Update updates an existing session event
func (r *eventRepository) Update(event *models.SessionEvent) error {
	return r.db.Save(event).Error
}

// Delete soft deletes a session event by ID
func (r *eventRepository) Delete(id uint) error {
	return r.db.Delete(&models.SessionEvent{}, id).Error
}
