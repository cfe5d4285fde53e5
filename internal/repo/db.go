package repo

import (
	"log"

	"quickearn-admin/internal/config"
	"quickearn-admin/internal/model"
	"quickearn-admin/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := config.GlobalConfig.Database.DSN
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Log.Fatal("Failed to connect to database",
			zap.Error(err),
		)
	}

	models := []interface{}{
		&model.Admin{},
		&model.User{},
		&model.Transaction{},
		&model.Task{},
		&model.AdConfig{},
		&model.VPNConfig{},
		&model.WalletConfig{},
		&model.PaymentMethod{},
		&model.AppConfig{},
		&model.BotSetting{},
	}

	err = DB.AutoMigrate(models...)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}
