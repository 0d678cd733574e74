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

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Save(ctx context.Context, conv *domain.Conversation) error {
	conversation := model.ToConversationModel(conv)
	// Create or update keyed on the external id.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "updated_at"}),
	}).Create(conversation).Error
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) FindByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var conversationModel model.ConversationModel
	if err := r.db.WithContext(ctx).Where("conversation_id = ?", id).First(&conversationModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return conversationModel.ToDomain(), nil
}

func (r *ConversationRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Conversation, error) {
	var models []*model.ConversationModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("updated_at desc").
		Limit(limit).
		Offset(offset).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find conversations: %w", err)
	}
	conversations := make([]*domain.Conversation, len(models))
	for i, m := range models {
		conversations[i] = m.ToDomain()
	}
	return conversations, nil
}

func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("conversation_id = ?", id).Delete(&model.ConversationModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}
