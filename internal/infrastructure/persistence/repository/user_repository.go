package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/infrastructure/persistence/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	user := model.ToUserModel(u)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", id).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return userModel.ToDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return userModel.ToDomain(), nil
}

func (r *UserRepository) UpdateTier(ctx context.Context, userID string, tier domain.Tier, status string) error {
	err := r.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"tier":                tier.String(),
			"subscription_status": status,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update tier: %w", err)
	}
	return nil
}

func (r *UserRepository) SetSubscription(ctx context.Context, userID string, tier domain.Tier, status, subscriptionID, provider string) error {
	err := r.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"tier":                tier.String(),
			"subscription_status": status,
			"subscription_id":     subscriptionID,
			"payment_provider":    provider,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set subscription: %w", err)
	}
	return nil
}

func (r *UserRepository) IncrementUsage(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Model(&model.UserModel{}).
		Where("user_id = ?", userID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}
