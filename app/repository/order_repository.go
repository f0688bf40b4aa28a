package repository

import (
	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create creates a new order in the database
func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByID retrieves an order by its UUID
func (r *orderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByEventID retrieves all orders for a session event
func (r *orderRepository) GetByEventID(eventID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Where("event_id = ?", eventID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// GetByPaymentIntentID retrieves the order for a provider payment id
func (r *orderRepository) GetByPaymentIntentID(paymentIntentID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Where("payment_intent_id = ?", paymentIntentID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUserID retrieves a photographer's orders across all their sessions
func (r *orderRepository) ListByUserID(userID uint, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Joins("JOIN session_events ON session_events.id = orders.event_id").
		Where("session_events.user_id = ?", userID).
		Order("orders.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, err
}

// Update updates an existing order
func (r *orderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}
