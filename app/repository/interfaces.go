package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

// UserRepository defines the interface for photographer account operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.ApiAccess, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ClientRepository defines the interface for studio client operations
type ClientRepository interface {
	Create(client *models.Client) error
	GetByID(id uint) (*models.Client, error)
	GetByUserID(userID uint) ([]models.Client, error)
	Update(client *models.Client) error
	Delete(id uint) error
	CountByUserID(userID uint) (int64, error)
	Search(userID uint, query string) ([]models.Client, error)
}

// EventRepository defines the interface for session event operations
type EventRepository interface {
	Create(event *models.SessionEvent) error
	GetByID(id uint) (*models.SessionEvent, error)
	GetByUserID(userID uint, from, to time.Time) ([]models.SessionEvent, error)
	GetUpcoming(userID uint, limit int) ([]models.SessionEvent, error)
	Update(event *models.SessionEvent) error
	Delete(id uint) error
}

// AlbumRepository defines the interface for album operations
type AlbumRepository interface {
	Create(album *models.Album) error
	GetByID(id uint) (*models.Album, error)
	GetByShareToken(token string) (*models.Album, error)
	GetByEventID(eventID uint) ([]models.Album, error)
	GetByUserID(userID uint) ([]models.Album, error)
	Update(album *models.Album) error
	Delete(id uint) error
	CountActiveByUserID(userID uint) (int64, error)
}

// PhotoRepository defines the interface for photo operations
type PhotoRepository interface {
	Create(photo *models.Photo) error
	GetByID(id uint) (*models.Photo, error)
	GetByAlbumID(albumID uint) ([]models.Photo, error)
	GetSelectedByAlbumID(albumID uint) ([]models.Photo, error)
	GetByIDs(ids []uint) ([]models.Photo, error)
	Exists(albumID uint, fileName string) (bool, error)
	Update(photo *models.Photo) error
	Delete(id uint) error
	CountByAlbumID(albumID uint) (int64, error)
}

// OrderRepository defines the interface for photo-purchase order operations
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetByEventID(eventID uint) ([]models.Order, error)
	GetByPaymentIntentID(paymentIntentID string) (*models.Order, error)
	ListByUserID(userID uint, offset, limit int) ([]models.Order, error)
	Update(order *models.Order) error
}

// SubscriptionRepository defines the interface for billing subscription operations
type SubscriptionRepository interface {
	GetByUserID(userID uint) (*models.Subscription, error)
	GetOrCreateTrial(userID uint) (*models.Subscription, error)
	Save(subscription *models.Subscription) error
}

// WebhookLogRepository defines the interface for the webhook audit trail
type WebhookLogRepository interface {
	Append(entry *models.WebhookLog) error
	List(offset, limit int) ([]models.WebhookLog, error)
	ListByEventType(eventType string, offset, limit int) ([]models.WebhookLog, error)
	CountByStatus(status string) (int64, error)
}

// ApiAccessRepository defines the interface for machine API credentials
type ApiAccessRepository interface {
	Create(access *models.ApiAccess) error
	GetByKeyHash(hash string) (*models.ApiAccess, error)
	ListByUserID(userID uint) ([]models.ApiAccess, error)
	Deactivate(id uint, userID uint) error
	TouchLastUsed(id uint) error
}

// ConnectedAccountRepository defines the interface for external provider links
type ConnectedAccountRepository interface {
	Upsert(account *models.ConnectedAccount) error
	GetByUserAndProvider(userID uint, provider string) (*models.ConnectedAccount, error)
	ListActiveByProvider(provider string) ([]models.ConnectedAccount, error)
	Deactivate(userID uint, provider string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User             UserRepository
	Client           ClientRepository
	Event            EventRepository
	Album            AlbumRepository
	Photo            PhotoRepository
	Order            OrderRepository
	Subscription     SubscriptionRepository
	WebhookLog       WebhookLogRepository
	ApiAccess        ApiAccessRepository
	ConnectedAccount ConnectedAccountRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:             NewUserRepository(db),
		Client:           NewClientRepository(db),
		Event:            NewEventRepository(db),
		Album:            NewAlbumRepository(db),
		Photo:            NewPhotoRepository(db),
		Order:            NewOrderRepository(db),
		Subscription:     NewSubscriptionRepository(db),
		WebhookLog:       NewWebhookLogRepository(db),
		ApiAccess:        NewApiAccessRepository(db),
		ConnectedAccount: NewConnectedAccountRepository(db),
	}
}
