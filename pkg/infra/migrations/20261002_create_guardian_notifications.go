package migrations

import (
	"github.com/NeuralTrust/SafeChat/pkg/domain/notification"
	"github.com/NeuralTrust/SafeChat/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20261002_create_guardian_notifications",
		Name: "Create guardian_notifications table",

		Up: func(db *gorm.DB) error {
			if db.Migrator().HasTable(&notification.Notification{}) {
				return nil
			}
			return db.Migrator().CreateTable(&notification.Notification{})
		},

		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(&notification.Notification{})
		},
	})
}
