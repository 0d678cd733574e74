package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/infrastructure/persistence/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Save(ctx context.Context, sub *domain.Subscription) error {
	subscription := model.ToSubscriptionModel(sub)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "plan_id", "cancel_at_period_end",
			"current_period_start", "current_period_end", "updated_at",
		}),
	}).Create(subscription).Error
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	var subscriptionModel model.SubscriptionModel
	if err := r.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).First(&subscriptionModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return subscriptionModel.ToDomain(), nil
}

func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, subscriptionID, status string, cancelAtPeriodEnd bool) error {
	err := r.db.WithContext(ctx).Model(&model.SubscriptionModel{}).
		Where("subscription_id = ?", subscriptionID).
		Updates(map[string]any{
			"status":               status,
			"cancel_at_period_end": cancelAtPeriodEnd,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}
