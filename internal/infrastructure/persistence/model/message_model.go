package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

type MessageModel struct {
	ID             uint           `gorm:"primaryKey;autoIncrement;column:id"`
	MessageID      string         `gorm:"uniqueIndex:idx_messages_message_id;size:36;not null;column:message_id"`
	ConversationID string         `gorm:"index:idx_messages_conversation_id;size:36;not null;column:conversation_id"`
	UserID         string         `gorm:"index:idx_messages_user_id;size:36;not null;column:user_id"`
	Role           string         `gorm:"size:20;not null;column:role"`
	Content        string         `gorm:"type:text;not null;column:content"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index:idx_messages_created_at;not null;column:created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index;column:deleted_at"`
}

func (MessageModel) TableName() string { return "messages" }

func (m *MessageModel) ToDomain() *domain.Message {
	return &domain.Message{
		ID:             m.MessageID,
		ConversationID: m.ConversationID,
		UserID:         m.UserID,
		Role:           domain.Role(m.Role),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func ToMessageModel(d *domain.Message) *MessageModel {
	return &MessageModel{
		MessageID:      d.ID,
		ConversationID: d.ConversationID,
		UserID:         d.UserID,
		Role:           d.Role.String(),
		Content:        d.Content,
		CreatedAt:      d.CreatedAt,
	}
}
