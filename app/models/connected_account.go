package models

import "time"

const (
	ProviderGoogle      = "google"
	ProviderMercadoPago = "mercadopago"
	ProviderWhatsApp    = "whatsapp"
)

// ConnectedAccount links a photographer to an external provider account and
// carries the credentials the sync adapters use. Mercado Pago rows hold the
// per-studio access token the payment webhook resolves.
type ConnectedAccount struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"not null;index:ux_connected_accounts_user_provider,unique,priority:1" json:"user_id"`
	Provider          string     `gorm:"type:varchar(20);not null;index:ux_connected_accounts_user_provider,unique,priority:2;index" json:"provider"`
	ExternalAccountID string     `gorm:"type:varchar(191)" json:"external_account_id"`
	AccessToken       string     `gorm:"type:text" json:"-"`
	RefreshToken      string     `gorm:"type:text" json:"-"`
	TokenExpiresAt    *time.Time `gorm:"type:timestamp;default:null" json:"token_expires_at,omitempty"`
	IsActive          bool       `gorm:"default:true;index" json:"is_active"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
