package booking

import (
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns the GORM-backed booking repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateEvent(ev *models.SessionEvent) error {
	return r.db.Create(ev).Error
}

func (r *gormRepository) UpdateEvent(ev *models.SessionEvent) error {
	return r.db.Save(ev).Error
}

func (r *gormRepository) GetEventByID(id uint) (*models.SessionEvent, error) {
	var ev models.SessionEvent
	if err := r.db.First(&ev, id).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *gormRepository) GetClientByID(id uint) (*models.Client, error) {
	var client models.Client
	if err := r.db.First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *gormRepository) GetGoogleAccountByUserID(userID uint) (*models.ConnectedAccount, error) {
	var account models.ConnectedAccount
	err := r.db.Where("user_id = ? AND provider = ? AND is_active = ?", userID, models.ProviderGoogle, true).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) SetCalendarEventID(eventID uint, calendarEventID string) error {
	return r.db.Model(&models.SessionEvent{}).
		Where("id = ?", eventID).
		Update("calendar_event_id", calendarEventID).Error
}
