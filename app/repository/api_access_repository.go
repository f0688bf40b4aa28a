package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

// apiAccessRepository implements the ApiAccessRepository interface
type apiAccessRepository struct {
	db *gorm.DB
}

// NewApiAccessRepository creates a new API access repository instance
func NewApiAccessRepository(db *gorm.DB) ApiAccessRepository {
	return &apiAccessRepository{db: db}
}

// Create creates a new API credential
func (r *apiAccessRepository) Create(access *models.ApiAccess) error {
	return r.db.Create(access).Error
}

// GetByKeyHash retrieves an active credential by key hash
func (r *apiAccessRepository) GetByKeyHash(hash string) (*models.ApiAccess, error) {
	var access models.ApiAccess
	err := r.db.Where("key_hash = ? AND is_active = ?", hash, true).First(&access).Error
	if err != nil {
		return nil, err
	}
	return &access, nil
}

// ListByUserID retrieves all credentials belonging to a photographer
func (r *apiAccessRepository) ListByUserID(userID uint) ([]models.ApiAccess, error) {
	var accesses []models.ApiAccess
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&accesses).Error
	return accesses, err
}

// Deactivate disables a credential. The userID guard keeps photographers from
// touching each other's keys.
func (r *apiAccessRepository) Deactivate(id uint, userID uint) error {
	return r.db.Model(&models.ApiAccess{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_active", false).Error
}

// TouchLastUsed refreshes the last-used timestamp best-effort
func (r *apiAccessRepository) TouchLastUsed(id uint) error {
	return r.db.Model(&models.ApiAccess{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
}
