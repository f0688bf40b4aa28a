package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	EventStatusScheduled = "scheduled"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// SessionEvent is a scheduled photo session for one client.
type SessionEvent struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"index;not null" json:"user_id"`
	User            User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ClientID        uint           `gorm:"index" json:"client_id"`
	Client          Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Title           string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=3,max=255"`
	Description     string         `gorm:"type:text" json:"description"`
	Location        string         `gorm:"type:varchar(255)" json:"location"`
	StartTime       time.Time      `gorm:"not null;index" json:"start_time"`
	EndTime         time.Time      `gorm:"not null" json:"end_time"`
	Status          string         `gorm:"type:varchar(32);not null;default:'scheduled';index" json:"status"`
	CalendarEventID string         `gorm:"type:varchar(191)" json:"calendar_event_id"`
	Albums          []Album        `gorm:"foreignKey:EventID" json:"albums,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsCancelled reports whether the session has been cancelled.
func (e *SessionEvent) IsCancelled() bool {
	return e.Status == EventStatusCancelled
}
