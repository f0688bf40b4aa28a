package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/plans"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetByUserID retrieves a photographer's subscription
func (r *subscriptionRepository) GetByUserID(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetOrCreateTrial returns the subscription, creating a fresh trial row for
// first-time users.
func (r *subscriptionRepository) GetOrCreateTrial(userID uint) (*models.Subscription, error) {
	sub, err := r.GetByUserID(userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	trialEnd := now.Add(plans.TrialDuration)
	sub = &models.Subscription{
		UserID:        userID,
		Plan:          models.PlanTrial,
		Status:        models.SubscriptionStatusActive,
		TrialStartsAt: &now,
		TrialEndsAt:   &trialEnd,
	}
	if err := r.db.Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// Save persists subscription changes
func (r *subscriptionRepository) Save(subscription *models.Subscription) error {
	return r.db.Save(subscription).Error
}
