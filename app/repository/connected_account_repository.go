package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

// connectedAccountRepository implements the ConnectedAccountRepository interface
type connectedAccountRepository struct {
	db *gorm.DB
}

// NewConnectedAccountRepository creates a new connected account repository instance
func NewConnectedAccountRepository(db *gorm.DB) ConnectedAccountRepository {
	return &connectedAccountRepository{db: db}
}

// Upsert inserts or refreshes the provider link for a user. There is at most
// one row per user+provider.
func (r *connectedAccountRepository) Upsert(account *models.ConnectedAccount) error {
	var existing models.ConnectedAccount
	err := r.db.Where("user_id = ? AND provider = ?", account.UserID, account.Provider).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(account).Error
	}
	if err != nil {
		return err
	}

	account.ID = existing.ID
	account.CreatedAt = existing.CreatedAt
	return r.db.Save(account).Error
}

// GetByUserAndProvider retrieves the active provider link for a user
func (r *connectedAccountRepository) GetByUserAndProvider(userID uint, provider string) (*models.ConnectedAccount, error) {
	var account models.ConnectedAccount
	err := r.db.Where("user_id = ? AND provider = ? AND is_active = ?", userID, provider, true).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListActiveByProvider retrieves all active links for one provider
func (r *connectedAccountRepository) ListActiveByProvider(provider string) ([]models.ConnectedAccount, error) {
	var accounts []models.ConnectedAccount
	err := r.db.Where("provider = ? AND is_active = ?", provider, true).Find(&accounts).Error
	return accounts, err
}

// Deactivate disables the provider link for a user
func (r *connectedAccountRepository) Deactivate(userID uint, provider string) error {
	return r.db.Model(&models.ConnectedAccount{}).
		Where("user_id = ? AND provider = ?", userID, provider).
		Update("is_active", false).Error
}
