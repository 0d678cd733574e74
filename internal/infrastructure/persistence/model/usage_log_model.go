package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

type UsageLogModel struct {
	ID         uint              `gorm:"primaryKey;autoIncrement;column:id"`
	LogID      string            `gorm:"uniqueIndex:idx_usage_logs_log_id;size:36;not null;column:log_id"`
	UserID     string            `gorm:"index:idx_usage_logs_user_id;size:36;not null;column:user_id"`
	ActionType string            `gorm:"size:30;not null;column:action_type"`
	Model      string            `gorm:"size:50;column:model"`
	Provider   string            `gorm:"size:20;column:provider"`
	Tier       string            `gorm:"size:20;column:tier"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata"`
	CreatedAt  time.Time         `gorm:"autoCreateTime;index:idx_usage_logs_created_at;not null;column:created_at"`
}

func (UsageLogModel) TableName() string { return "usage_logs" }

func (m *UsageLogModel) ToDomain() *domain.UsageLog {
	return &domain.UsageLog{
		ID:         m.LogID,
		UserID:     m.UserID,
		ActionType: m.ActionType,
		Model:      m.Model,
		Provider:   m.Provider,
		Tier:       domain.Tier(m.Tier),
		Metadata:   map[string]any(m.Metadata),
		CreatedAt:  m.CreatedAt,
	}
}

func ToUsageLogModel(d *domain.UsageLog) *UsageLogModel {
	return &UsageLogModel{
		LogID:      d.ID,
		UserID:     d.UserID,
		ActionType: d.ActionType,
		Model:      d.Model,
		Provider:   d.Provider,
		Tier:       d.Tier.String(),
		Metadata:   datatypes.JSONMap(d.Metadata),
		CreatedAt:  d.CreatedAt,
	}
}
