package migrations

import (
	"github.com/NeuralTrust/SafeChat/pkg/domain/conversation"
	"github.com/NeuralTrust/SafeChat/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20261001_create_conversation_turns",
		Name: "Create conversation_turns table for the moderated chat log",

		Up: func(db *gorm.DB) error {
			if !db.Migrator().HasTable(&conversation.Turn{}) {
				if err := db.Migrator().CreateTable(&conversation.Turn{}); err != nil {
					return err
				}
			}

			// Dashboard reads a child's history newest first.
			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_conversation_turns_child_created
				ON conversation_turns (child_id, created_at);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(&conversation.Turn{})
		},
	})
}
