package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/sharetoken"
)

// Album is a named container of photos for one session event. The share
// token grants unauthenticated client access while the album is active.
type Album struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventID     uint           `gorm:"index;not null" json:"event_id"`
	Event       SessionEvent   `gorm:"foreignKey:EventID" json:"event,omitempty"`
	UserID      uint           `gorm:"index" json:"user_id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=3,max=255"`
	Description string         `gorm:"type:text" json:"description"`
	ShareToken  string         `gorm:"type:varchar(64) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex" json:"share_token"`
	IsActive    bool           `gorm:"default:false;index" json:"is_active"`
	IsPaid      bool           `gorm:"default:false" json:"is_paid"`
	PaidAt      *time.Time     `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	ViewCount   int            `gorm:"default:0" json:"view_count"`
	Photos      []Photo        `gorm:"foreignKey:AlbumID" json:"photos,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates the opaque share token.
func (a *Album) BeforeCreate(tx *gorm.DB) error {
	if a.ShareToken == "" {
		token, err := sharetoken.Generate(sharetoken.DefaultLength)
		if err != nil {
			return err
		}
		a.ShareToken = token
	}
	return nil
}

// MarkPaid persists payment completion on the album.
func (a *Album) MarkPaid(db *gorm.DB) error {
	now := time.Now()
	a.IsPaid = true
	a.PaidAt = &now
	return db.Model(a).Updates(map[string]interface{}{
		"is_paid": true,
		"paid_at": &now,
	}).Error
}

// ToggleActive flips public visibility of the album.
func (a *Album) ToggleActive(db *gorm.DB) error {
	a.IsActive = !a.IsActive
	return db.Model(a).Update("is_active", a.IsActive).Error
}

// IncrementViewCount bumps the album view counter.
func (a *Album) IncrementViewCount(db *gorm.DB) error {
	return db.Model(a).Update("view_count", a.ViewCount+1).Error
}
