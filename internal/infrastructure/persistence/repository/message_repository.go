package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/infrastructure/persistence/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Save(ctx context.Context, m *domain.Message) error {
	message := model.ToMessageModel(m)
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *MessageRepository) FindByConversationID(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error) {
	var models []*model.MessageModel
	if err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	messages := make([]*domain.Message, len(models))
	for i, m := range models {
		messages[i] = m.ToDomain()
	}
	return messages, nil
}

// CountUserMessagesBetween is the recount path for quota checks when the
// counter cache is unavailable, so it goes off user_id directly rather than
// walking conversations.
func (r *MessageRepository) CountUserMessagesBetween(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.MessageModel{}).
		Where("user_id = ? AND role = ? AND created_at >= ? AND created_at < ?",
			userID, domain.RoleUser.String(), from, to).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (r *MessageRepository) DeleteByConversationID(ctx context.Context, conversationID string) error {
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&model.MessageModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}
