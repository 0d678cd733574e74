package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateTier(ctx context.Context, userID string, tier Tier, status string) error
	SetSubscription(ctx context.Context, userID string, tier Tier, status, subscriptionID, provider string) error
	IncrementUsage(ctx context.Context, userID string) error
}

type ConversationRepository interface {
	Save(ctx context.Context, conv *Conversation) error
	FindByID(ctx context.Context, id string) (*Conversation, error)
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*Conversation, error)
	Delete(ctx context.Context, id string) error
}

type MessageRepository interface {
	Save(ctx context.Context, msg *Message) error
	// FindByConversationID returns the newest messages first.
	FindByConversationID(ctx context.Context, conversationID string, limit, offset int) ([]*Message, error)
	// CountUserMessagesBetween counts user-role messages across all of the
	// user's conversations inside [from, to).
	CountUserMessagesBetween(ctx context.Context, userID string, from, to time.Time) (int64, error)
	DeleteByConversationID(ctx context.Context, conversationID string) error
}

type UsageLogRepository interface {
	Save(ctx context.Context, entry *UsageLog) error
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*UsageLog, error)
}

type ErrorLogRepository interface {
	Save(ctx context.Context, entry *ErrorLog) error
}

type SubscriptionRepository interface {
	Save(ctx context.Context, sub *Subscription) error
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*Subscription, error)
	UpdateStatus(ctx context.Context, subscriptionID, status string, cancelAtPeriodEnd bool) error
}
