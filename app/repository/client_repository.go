package repository

import (
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

// clientRepository implements the ClientRepository interface
type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository instance
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

// Create creates a new client in the database
func (r *clientRepository) Create(client *models.Client) error {
	return r.db.Create(client).Error
}

// GetByID retrieves a client by ID
func (r *clientRepository) GetByID(id uint) (*models.Client, error) {
	var client models.Client
	if err := r.db.First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByUserID retrieves all clients belonging to a photographer
func (r *clientRepository) GetByUserID(userID uint) ([]models.Client, error) {
	var clients []models.Client
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&clients).Error
	return clients, err
}

// Update updates an existing client
func (r *clientRepository) Update(client *models.Client) error {
	return r.db.Save(client).Error
}

// Delete soft deletes a client by ID
func (r *clientRepository) Delete(id uint) error {
	return r.db.Delete(&models.Client{}, id).Error
}

// CountByUserID returns the number of clients for a photographer
func (r *clientRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Client{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Search finds a photographer's clients by name or email
func (r *clientRepository) Search(userID uint, query string) ([]models.Client, error) {
	var clients []models.Client
	like := "%" + query + "%"
	err := r.db.Where("user_id = ? AND (name LIKE ? OR email LIKE ?)", userID, like, like).
		Order("name ASC").Find(&clients).Error
	return clients, err
}
