package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Tattzy25/real-code-homie/internal/infrastructure/persistence/model"
)

func InitGorm(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(
		&model.UserModel{},
		&model.ConversationModel{},
		&model.MessageModel{},
		&model.UsageLogModel{},
		&model.SubscriptionModel{},
		&model.ErrorLogModel{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}
