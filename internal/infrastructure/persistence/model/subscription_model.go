package model

import (
	"time"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

type SubscriptionModel struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement;column:id"`
	RecordID           string    `gorm:"uniqueIndex:idx_subscriptions_record_id;size:36;not null;column:record_id"`
	UserID             string    `gorm:"index:idx_subscriptions_user_id;size:36;not null;column:user_id"`
	SubscriptionID     string    `gorm:"uniqueIndex:idx_subscriptions_subscription_id;size:64;not null;column:subscription_id"`
	Provider           string    `gorm:"size:20;not null;column:provider"`
	Status             string    `gorm:"size:30;not null;column:status"`
	PlanID             string    `gorm:"size:64;column:plan_id"`
	CancelAtPeriodEnd  bool      `gorm:"not null;default:false;column:cancel_at_period_end"`
	CurrentPeriodStart time.Time `gorm:"column:current_period_start"`
	CurrentPeriodEnd   time.Time `gorm:"column:current_period_end"`
	CreatedAt          time.Time `gorm:"autoCreateTime;not null;column:created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime;column:updated_at"`
}

func (SubscriptionModel) TableName() string { return "subscriptions" }

func (m *SubscriptionModel) ToDomain() *domain.Subscription {
	return &domain.Subscription{
		ID:                 m.RecordID,
		UserID:             m.UserID,
		SubscriptionID:     m.SubscriptionID,
		Provider:           m.Provider,
		Status:             m.Status,
		PlanID:             m.PlanID,
		CancelAtPeriodEnd:  m.CancelAtPeriodEnd,
		CurrentPeriodStart: m.CurrentPeriodStart,
		CurrentPeriodEnd:   m.CurrentPeriodEnd,
	}
}

func ToSubscriptionModel(d *domain.Subscription) *SubscriptionModel {
	return &SubscriptionModel{
		RecordID:           d.ID,
		UserID:             d.UserID,
		SubscriptionID:     d.SubscriptionID,
		Provider:           d.Provider,
		Status:             d.Status,
		PlanID:             d.PlanID,
		CancelAtPeriodEnd:  d.CancelAtPeriodEnd,
		CurrentPeriodStart: d.CurrentPeriodStart,
		CurrentPeriodEnd:   d.CurrentPeriodEnd,
	}
}
