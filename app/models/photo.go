package models

import (
	"time"

	"gorm.io/gorm"
)

// Photo belongs to exactly one album. The original, thumbnail and watermark
// paths are written separately but currently point at the same object; no
// image processing happens on import.
type Photo struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	AlbumID       uint           `gorm:"index;not null" json:"album_id"`
	FileName      string         `gorm:"type:varchar(255);not null" json:"file_name"`
	FileSize      int64          `gorm:"type:bigint" json:"file_size"`
	OriginalPath  string         `gorm:"type:varchar(512);not null" json:"original_path"`
	ThumbnailPath string         `gorm:"type:varchar(512)" json:"thumbnail_path"`
	WatermarkPath string         `gorm:"type:varchar(512)" json:"watermark_path"`
	UnitPrice     float64        `gorm:"type:decimal(10,2);default:0" json:"unit_price"`
	IsSelected    bool           `gorm:"default:false;index" json:"is_selected"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// ToggleSelected flips the client selection state.
func (p *Photo) ToggleSelected(db *gorm.DB) error {
	p.IsSelected = !p.IsSelected
	return db.Model(p).Update("is_selected", p.IsSelected).Error
}
