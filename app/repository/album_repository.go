package repository

import (
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

// albumRepository implements the AlbumRepository interface
type albumRepository struct {
	db *gorm.DB
}

// NewAlbumRepository creates a new album repository instance
func NewAlbumRepository(db *gorm.DB) AlbumRepository {
	return &albumRepository{db: db}
}

// Create creates a new album in the database
func (r *albumRepository) Create(album *models.Album) error {
	return r.db.Create(album).Error
}

// GetByID retrieves an album with its photos by ID
func (r *albumRepository) GetByID(id uint) (*models.Album, error) {
	var album models.Album
	err := r.db.Preload("Photos").First(&album, id).Error
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// GetByShareToken retrieves an album by its public share token
func (r *albumRepository) GetByShareToken(token string) (*models.Album, error) {
	var album models.Album
	err := r.db.Preload("Photos").Where("share_token = ?", token).First(&album).Error
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// GetByEventID retrieves all albums attached to a session event
func (r *albumRepository) GetByEventID(eventID uint) ([]models.Album, error) {
	var albums []models.Album
	err := r.db.Where("event_id = ?", eventID).Order("created_at DESC").Find(&albums).Error
	return albums, err
}

// GetByUserID retrieves all albums belonging to a photographer
func (r *albumRepository) GetByUserID(userID uint) ([]models.Album, error) {
	var albums []models.Album
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&albums).Error
	return albums, err
}

// Update updates an existing album
func (r *albumRepository) Update(album *models.Album) error {
	return r.db.Save(album).Error
}

// Delete soft deletes an album by ID
func (r *albumRepository) Delete(id uint) error {
	return r.db.Delete(&models.Album{}, id).Error
}

// CountActiveByUserID returns the number of published albums for a photographer
func (r *albumRepository) CountActiveByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Album{}).
		Where("user_id = ? AND is_active = ?", userID, true).Count(&count).Error
	return count, err
}
