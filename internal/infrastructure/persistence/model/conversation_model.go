package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

type ConversationModel struct {
	ID             uint           `gorm:"primaryKey;autoIncrement;column:id"`
	ConversationID string         `gorm:"uniqueIndex:idx_conversations_conversation_id;size:36;not null;column:conversation_id"`
	UserID         string         `gorm:"index:idx_conversations_user_id;size:36;not null;column:user_id"`
	Title          string         `gorm:"size:100;not null;column:title"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;not null;column:created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime;column:updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index;column:deleted_at"`
}

func (ConversationModel) TableName() string { return "conversations" }

func (m *ConversationModel) ToDomain() *domain.Conversation {
	return &domain.Conversation{
		ID:        m.ConversationID,
		UserID:    m.UserID,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToConversationModel(d *domain.Conversation) *ConversationModel {
	return &ConversationModel{
		ConversationID: d.ID,
		UserID:         d.UserID,
		Title:          d.Title,
		CreatedAt:      d.CreatedAt,
	}
}
