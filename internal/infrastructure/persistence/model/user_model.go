package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

type UserModel struct {
	ID                 uint           `gorm:"primaryKey;autoIncrement;column:id"`
	UserID             string         `gorm:"uniqueIndex:idx_users_user_id;size:36;not null;column:user_id"`
	Email              string         `gorm:"uniqueIndex:idx_users_email;size:255;not null;column:email"`
	Username           string         `gorm:"size:100;not null;column:username"`
	PasswordHash       string         `gorm:"size:100;not null;column:password_hash"`
	Tier               string         `gorm:"size:20;not null;default:free;column:tier"`
	SubscriptionStatus string         `gorm:"size:30;column:subscription_status"`
	SubscriptionID     string         `gorm:"index:idx_users_subscription_id;size:64;column:subscription_id"`
	PaymentProvider    string         `gorm:"size:20;column:payment_provider"`
	UsageCount         int64          `gorm:"not null;default:0;column:usage_count"`
	CreatedAt          time.Time      `gorm:"autoCreateTime;not null;column:created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index;column:deleted_at"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:                 m.UserID,
		Email:              m.Email,
		Username:           m.Username,
		PasswordHash:       m.PasswordHash,
		Tier:               domain.Tier(m.Tier),
		SubscriptionStatus: m.SubscriptionStatus,
		SubscriptionID:     m.SubscriptionID,
		PaymentProvider:    m.PaymentProvider,
		UsageCount:         m.UsageCount,
		CreatedAt:          m.CreatedAt,
	}
}

func ToUserModel(d *domain.User) *UserModel {
	return &UserModel{
		UserID:             d.ID,
		Email:              d.Email,
		Username:           d.Username,
		PasswordHash:       d.PasswordHash,
		Tier:               d.Tier.String(),
		SubscriptionStatus: d.SubscriptionStatus,
		SubscriptionID:     d.SubscriptionID,
		PaymentProvider:    d.PaymentProvider,
		UsageCount:         d.UsageCount,
		CreatedAt:          d.CreatedAt,
	}
}
