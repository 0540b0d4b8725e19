package repository_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/NeuralTrust/SafeChat/pkg/domain/conversation"
	"github.com/NeuralTrust/SafeChat/pkg/domain/notification"
	"github.com/NeuralTrust/SafeChat/pkg/infra/database"
	_ "github.com/NeuralTrust/SafeChat/pkg/infra/migrations"
	"github.com/NeuralTrust/SafeChat/pkg/infra/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := database.NewDB(logger, &database.Config{
		Driver: database.DriverSQLite,
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestConversationRepository_SaveAndList(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewConversationRepository(db.DB)
	ctx := context.Background()

	child, err := conversation.NewTurn("child-1", conversation.SenderChild, "aku mau pukul dia", 60, true, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, child))

	system, err := conversation.NewTurn("child-1", conversation.SenderSystem, "Kekerasan bisa menyakiti orang lain.", 100, true, "violence")
	require.NoError(t, err)
	system.CreatedAt = child.CreatedAt.Add(time.Millisecond)
	require.NoError(t, repo.Save(ctx, system))

	other, err := conversation.NewTurn("child-2", conversation.SenderChild, "halo", 100, false, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	turns, err := repo.ListByChild(ctx, "child-1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)

	assert.Equal(t, system.ID, turns[0].ID)
	assert.Equal(t, conversation.SenderSystem, turns[0].Sender)
	require.NotNil(t, turns[0].FilterReason)
	assert.Equal(t, "violence", *turns[0].FilterReason)
	assert.True(t, turns[0].Flagged)

	assert.Equal(t, child.ID, turns[1].ID)
	assert.Equal(t, 60, turns[1].SafetyScore)
	assert.Nil(t, turns[1].FilterReason)

	limited, err := repo.ListByChild(ctx, "child-1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestConversationRepository_DuplicateID(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewConversationRepository(db.DB)

	turn, err := conversation.NewTurn("child-1", conversation.SenderChild, "halo", 100, false, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), turn))
	assert.Error(t, repo.Save(context.Background(), turn))
}

func TestNotificationRepository_Save(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewNotificationRepository(db.DB)

	n, err := notification.NewNotification("child-1", "high", "HIGH concern (violence) in child message")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), n))

	var stored notification.Notification
	require.NoError(t, db.First(&stored, "id = ?", n.ID).Error)
	assert.Equal(t, "child-1", stored.ChildID)
	assert.Equal(t, "high", stored.Severity)
	assert.False(t, stored.Read)
}

func TestMigrations_AreIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, database.NewMigrationsManager(db.DB).ApplyPending())
	assert.True(t, db.Migrator().HasTable("conversation_turns"))
	assert.True(t, db.Migrator().HasTable("guardian_notifications"))
	assert.True(t, db.Migrator().HasIndex("conversation_turns", "idx_conversation_turns_child_created"))
}
