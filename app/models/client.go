package models

import (
	"time"

	"gorm.io/gorm"
)

// Client is a studio customer who books sessions and buys photos.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name      string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email     string         `gorm:"type:varchar(200);index" json:"email" validate:"omitempty,email"`
	Phone     string         `gorm:"type:varchar(30)" json:"phone" validate:"max=30"`
	Notes     string         `gorm:"type:text" json:"notes"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
