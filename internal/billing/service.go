package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

const ProviderPayPal = "paypal"

// SubscriptionGateway is the slice of the payment provider the service needs.
// The real implementation is PayPalClient.
type SubscriptionGateway interface {
	VerifyWebhookSignature(ctx context.Context, headers WebhookHeaders, rawEvent []byte) (bool, error)
	CancelSubscription(ctx context.Context, subscriptionID, reason string) error
}

// planTiers maps checkout plan keys to tiers. Unknown plans are rejected.
var planTiers = map[string]domain.Tier{
	"pro":      domain.TierPro,
	"engineer": domain.TierEngineer,
}

type Service struct {
	users         domain.UserRepository
	subscriptions domain.SubscriptionRepository
	gateway       SubscriptionGateway
	log           *zap.SugaredLogger
}

func NewService(
	users domain.UserRepository,
	subscriptions domain.SubscriptionRepository,
	gateway SubscriptionGateway,
	log *zap.SugaredLogger,
) *Service {
	return &Service{
		users:         users,
		subscriptions: subscriptions,
		gateway:       gateway,
		log:           log,
	}
}

// Activate records an approved checkout: a subscription row plus the user's
// tier upgrade. Called after the client completes the provider's approval
// flow.
func (s *Service) Activate(ctx context.Context, userID, subscriptionID, planID, planKey string) error {
	tier, ok := planTiers[planKey]
	if !ok {
		return fmt.Errorf("%w: unknown plan %q", domain.ErrInvalidRequest, planKey)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}

	now := time.Now().UTC()
	sub := &domain.Subscription{
		ID:                 uuid.New().String(),
		UserID:             userID,
		SubscriptionID:     subscriptionID,
		Provider:           ProviderPayPal,
		Status:             "active",
		PlanID:             planID,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(30 * 24 * time.Hour),
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}

	if err := s.users.SetSubscription(ctx, userID, tier, "active", subscriptionID, ProviderPayPal); err != nil {
		return fmt.Errorf("upgrade user: %w", err)
	}

	s.log.Infow("subscription activated", "user_id", userID, "subscription_id", subscriptionID, "tier", tier)
	return nil
}

// Cancel flags the subscription to lapse at period end. The tier stays until
// the provider reports expiry via webhook.
func (s *Service) Cancel(ctx context.Context, userID, subscriptionID string) error {
	sub, err := s.subscriptions.FindBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		return domain.ErrNotFound
	}
	if sub.UserID != userID {
		return domain.ErrPermissionDenied
	}

	if err := s.gateway.CancelSubscription(ctx, subscriptionID, "user requested cancellation"); err != nil {
		return err
	}

	if err := s.subscriptions.UpdateStatus(ctx, subscriptionID, "cancelling", true); err != nil {
		return err
	}
	if err := s.users.UpdateTier(ctx, sub.UserID, userTier(ctx, s.users, sub.UserID), "cancelling"); err != nil {
		return err
	}

	s.log.Infow("subscription cancellation requested", "user_id", userID, "subscription_id", subscriptionID)
	return nil
}

func userTier(ctx context.Context, users domain.UserRepository, userID string) domain.Tier {
	user, err := users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return domain.TierFree
	}
	return user.Tier
}

// WebhookEvent is the subset of the provider's event envelope the service
// reads.
type WebhookEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID string `json:"id"`
	} `json:"resource"`
}

// HandleWebhook verifies and applies one provider event. Unknown event types
// are acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, headers WebhookHeaders, rawEvent []byte) error {
	ok, err := s.gateway.VerifyWebhookSignature(ctx, headers, rawEvent)
	if err != nil {
		return fmt.Errorf("verify webhook: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: webhook signature rejected", domain.ErrPermissionDenied)
	}

	var event WebhookEvent
	if err := json.Unmarshal(rawEvent, &event); err != nil {
		return fmt.Errorf("%w: malformed webhook payload", domain.ErrInvalidRequest)
	}

	switch event.EventType {
	case "BILLING.SUBSCRIPTION.CANCELLED":
		return s.applyCancelled(ctx, event.Resource.ID)
	case "BILLING.SUBSCRIPTION.EXPIRED":
		return s.applyExpired(ctx, event.Resource.ID)
	default:
		s.log.Debugw("ignoring webhook event", "event_type", event.EventType)
		return nil
	}
}

func (s *Service) applyCancelled(ctx context.Context, subscriptionID string) error {
	sub, err := s.subscriptions.FindBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		s.log.Warnw("webhook for unknown subscription", "subscription_id", subscriptionID)
		return domain.ErrNotFound
	}

	if err := s.subscriptions.UpdateStatus(ctx, subscriptionID, "cancelled", true); err != nil {
		return err
	}
	// Access remains until the period lapses, only the status flips.
	return s.users.UpdateTier(ctx, sub.UserID, userTier(ctx, s.users, sub.UserID), "cancelled")
}

func (s *Service) applyExpired(ctx context.Context, subscriptionID string) error {
	sub, err := s.subscriptions.FindBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		s.log.Warnw("webhook for unknown subscription", "subscription_id", subscriptionID)
		return domain.ErrNotFound
	}

	if err := s.subscriptions.UpdateStatus(ctx, subscriptionID, "expired", false); err != nil {
		return err
	}
	// Expiry is the hard downgrade back to free.
	return s.users.UpdateTier(ctx, sub.UserID, domain.TierFree, "inactive")
}
