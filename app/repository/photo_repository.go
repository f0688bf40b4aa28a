package repository

import (
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

// photoRepository implements the PhotoRepository interface
type photoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new photo repository instance
func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepository{db: db}
}

// Create creates a new photo in the database
func (r *photoRepository) Create(photo *models.Photo) error {
	return r.db.Create(photo).Error
}

// GetByID retrieves a photo by ID
func (r *photoRepository) GetByID(id uint) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.First(&photo, id).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

// GetByAlbumID retrieves all photos in an album
func (r *photoRepository) GetByAlbumID(albumID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.Where("album_id = ?", albumID).Order("file_name ASC").Find(&photos).Error
	return photos, err
}

// GetSelectedByAlbumID retrieves the client-selected photos in an album
func (r *photoRepository) GetSelectedByAlbumID(albumID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.Where("album_id = ? AND is_selected = ?", albumID, true).
		Order("file_name ASC").Find(&photos).Error
	return photos, err
}

// GetByIDs retrieves photos by primary key
func (r *photoRepository) GetByIDs(ids []uint) ([]models.Photo, error) {
	var photos []models.Photo
	if len(ids) == 0 {
		return photos, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&photos).Error
	return photos, err
}

// Exists reports whether an album already holds a photo with the filename
func (r *photoRepository) Exists(albumID uint, fileName string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Photo{}).
		Where("album_id = ? AND file_name = ?", albumID, fileName).Count(&count).Error
	return count > 0, err
}

// Update updates an existing photo
func (r *photoRepository) Update(photo *models.Photo) error {
	return r.db.Save(photo).Error
}

// Delete soft deletes a photo by ID
func (r *photoRepository) Delete(id uint) error {
	return r.db.Delete(&models.Photo{}, id).Error
}

// CountByAlbumID returns the number of photos in an album
func (r *photoRepository) CountByAlbumID(albumID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Photo{}).Where("album_id = ?", albumID).Count(&count).Error
	return count, err
}
