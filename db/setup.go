package db

import (
	"github.com/craftdesk-dev/craftdesk/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Board{},
		&models.DynamicField{},
		&models.DynamicItem{},
		&models.DynamicFieldValue{},
		&models.Task{},
		&models.Booking{},
		&models.Invoice{},
		&models.Proposal{},
		&models.AutomationRule{},
		&models.AutomationLog{},
		&models.AgentNotificationLog{},
		&models.Notification{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
