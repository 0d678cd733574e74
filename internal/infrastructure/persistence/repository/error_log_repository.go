package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/infrastructure/persistence/model"
)

type ErrorLogRepository struct {
	db *gorm.DB
}

func NewErrorLogRepository(db *gorm.DB) *ErrorLogRepository {
	return &ErrorLogRepository{db: db}
}

func (r *ErrorLogRepository) Save(ctx context.Context, entry *domain.ErrorLog) error {
	logModel := model.ToErrorLogModel(entry)
	if err := r.db.WithContext(ctx).Create(logModel).Error; err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	return nil
}
