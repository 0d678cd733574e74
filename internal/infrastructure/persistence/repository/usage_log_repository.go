package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/infrastructure/persistence/model"
)

type UsageLogRepository struct {
	db *gorm.DB
}

func NewUsageLogRepository(db *gorm.DB) *UsageLogRepository {
	return &UsageLogRepository{db: db}
}

func (r *UsageLogRepository) Save(ctx context.Context, entry *domain.UsageLog) error {
	logModel := model.ToUsageLogModel(entry)
	if err := r.db.WithContext(ctx).Create(logModel).Error; err != nil {
		return fmt.Errorf("failed to create usage log: %w", err)
	}
	return nil
}

func (r *UsageLogRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.UsageLog, error) {
	var models []*model.UsageLogModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to get usage logs: %w", err)
	}
	entries := make([]*domain.UsageLog, len(models))
	for i, m := range models {
		entries[i] = m.ToDomain()
	}
	return entries, nil
}
