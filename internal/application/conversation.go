package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

type ConversationService struct {
	conversations domain.ConversationRepository
	messages      domain.MessageRepository
	usageLogs     domain.UsageLogRepository
}

func NewConversationService(
	conversations domain.ConversationRepository,
	messages domain.MessageRepository,
	usageLogs domain.UsageLogRepository,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		usageLogs:     usageLogs,
	}
}

func (s *ConversationService) Create(ctx context.Context, userID, title string) (*domain.Conversation, error) {
	conv := &domain.Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if title == "" {
		title = "New Chat"
	}
	conv.SetTitle(title)

	if err := s.conversations.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	return conv, nil
}

func (s *ConversationService) List(ctx context.Context, userID string, limit, offset int) ([]*domain.Conversation, error) {
	return s.conversations.FindByUserID(ctx, userID, limit, offset)
}

// Messages returns a page of the conversation's messages, oldest first.
// Ownership is enforced here as well as by the store's access rules.
func (s *ConversationService) Messages(ctx context.Context, userID, conversationID string, limit, offset int) ([]*domain.Message, error) {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, domain.ErrNotFound
	}
	if conv.UserID != userID {
		return nil, domain.ErrPermissionDenied
	}

	msgs, err := s.messages.FindByConversationID(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	// Newest-first from the repository; flip for display order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Owns reports whether userID owns conversationID.
func (s *ConversationService) Owns(ctx context.Context, userID, conversationID string) (bool, error) {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return false, err
	}
	if conv == nil {
		return false, domain.ErrNotFound
	}
	return conv.UserID == userID, nil
}

func (s *ConversationService) Delete(ctx context.Context, userID, conversationID string) error {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return nil // already gone
	}
	if conv.UserID != userID {
		return domain.ErrPermissionDenied
	}

	if err := s.messages.DeleteByConversationID(ctx, conversationID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return s.conversations.Delete(ctx, conversationID)
}

func (s *ConversationService) UsageHistory(ctx context.Context, userID string, limit, offset int) ([]*domain.UsageLog, error) {
	return s.usageLogs.FindByUserID(ctx, userID, limit, offset)
}
