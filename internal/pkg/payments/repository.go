package payments

import (
	"time"

	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

// Repository provides the DB operations the reconciliation flow needs.
type Repository interface {
	GetOrderByPaymentIntentID(paymentIntentID string) (*models.Order, error)
	GetOrderByExternalReference(ref string) (*models.Order, error)
	UpdateOrderPayment(orderID string, updates map[string]interface{}) error
	GetFirstAlbumByEventID(eventID uint) (*models.Album, error)
	MarkAlbumPaid(albumID uint) error
	GetSubscriptionByID(id uint) (*models.Subscription, error)
	SaveSubscription(sub *models.Subscription) error
	GetTransactionByPaymentIntentID(paymentIntentID string) (*models.PaymentTransaction, error)
	UpdateTransactionStatus(id uint, status string) error
	GetMercadoPagoAccountByUserID(userID uint) (*models.ConnectedAccount, error)
	ListActiveMercadoPagoAccounts() ([]models.ConnectedAccount, error)
	AppendWebhookLog(entry *models.WebhookLog) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetOrderByPaymentIntentID(paymentIntentID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("payment_intent_id = ?", paymentIntentID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) GetOrderByExternalReference(ref string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("external_reference = ?", models.NormalizeExternalReference(ref)).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) UpdateOrderPayment(orderID string, updates map[string]interface{}) error {
	return r.db.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates).Error
}

func (r *gormRepository) GetFirstAlbumByEventID(eventID uint) (*models.Album, error) {
	var album models.Album
	err := r.db.Where("event_id = ?", eventID).Order("created_at ASC").First(&album).Error
	if err != nil {
		return nil, err
	}
	return &album, nil
}

func (r *gormRepository) MarkAlbumPaid(albumID uint) error {
	now := time.Now()
	return r.db.Model(&models.Album{}).Where("id = ?", albumID).Updates(map[string]interface{}{
		"is_paid": true,
		"paid_at": &now,
	}).Error
}

func (r *gormRepository) GetSubscriptionByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) SaveSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) GetTransactionByPaymentIntentID(paymentIntentID string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	err := r.db.Where("payment_intent_id = ?", paymentIntentID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *gormRepository) UpdateTransactionStatus(id uint, status string) error {
	return r.db.Model(&models.PaymentTransaction{}).Where("id = ?", id).Update("status", status).Error
}

func (r *gormRepository) GetMercadoPagoAccountByUserID(userID uint) (*models.ConnectedAccount, error) {
	var account models.ConnectedAccount
	err := r.db.
		Where("user_id = ? AND provider = ? AND is_active = ?", userID, models.ProviderMercadoPago, true).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) ListActiveMercadoPagoAccounts() ([]models.ConnectedAccount, error) {
	var accounts []models.ConnectedAccount
	err := r.db.
		Where("provider = ? AND is_active = ?", models.ProviderMercadoPago, true).
		Find(&accounts).Error
	return accounts, err
}

func (r *gormRepository) AppendWebhookLog(entry *models.WebhookLog) error {
	return r.db.Create(entry).Error
}
