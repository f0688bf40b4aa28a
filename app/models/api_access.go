package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ApiAccess is a machine credential for the studio integration API. Only
// the SHA-256 hash of the key is stored.
type ApiAccess struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Label      string     `gorm:"type:varchar(100)" json:"label"`
	KeyHash    string     `gorm:"type:char(64);uniqueIndex;not null" json:"-"`
	IsActive   bool       `gorm:"default:true;index" json:"is_active"`
	LastUsedAt *time.Time `gorm:"type:timestamp;default:null" json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// HashAPIKey returns the hex SHA-256 of a plaintext API key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// GenerateAPIKey creates a new plaintext API key. The caller shows it once
// and stores only the hash.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "sf_" + hex.EncodeToString(b), nil
}
