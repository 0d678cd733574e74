package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

type ErrorLogModel struct {
	ID         uint              `gorm:"primaryKey;autoIncrement;column:id"`
	LogID      string            `gorm:"uniqueIndex:idx_error_logs_log_id;size:36;not null;column:log_id"`
	UserID     string            `gorm:"index:idx_error_logs_user_id;size:36;column:user_id"`
	Message    string            `gorm:"type:text;not null;column:message"`
	Path       string            `gorm:"size:255;column:path"`
	Component  string            `gorm:"size:100;column:component"`
	Severity   string            `gorm:"size:20;index:idx_error_logs_severity;not null;column:severity"`
	StackTrace string            `gorm:"type:text;column:stack_trace"`
	Context    datatypes.JSONMap `gorm:"column:context"`
	OccurredAt time.Time         `gorm:"index:idx_error_logs_occurred_at;not null;column:occurred_at"`
	CreatedAt  time.Time         `gorm:"autoCreateTime;not null;column:created_at"`
}

func (ErrorLogModel) TableName() string { return "error_logs" }

func ToErrorLogModel(d *domain.ErrorLog) *ErrorLogModel {
	return &ErrorLogModel{
		LogID:      d.ID,
		UserID:     d.UserID,
		Message:    d.Message,
		Path:       d.Path,
		Component:  d.Component,
		Severity:   d.Severity,
		StackTrace: d.StackTrace,
		Context:    datatypes.JSONMap(d.Context),
		OccurredAt: d.OccurredAt,
		CreatedAt:  d.CreatedAt,
	}
}
