package repository

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/SafeChat/pkg/domain/conversation"
	"gorm.io/gorm"
)

const maxListLimit = 500

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) conversation.Repository {
	return &ConversationRepository{
		db: db,
	}
}

func (r *ConversationRepository) Save(ctx context.Context, turn *conversation.Turn) error {
	if err := r.db.WithContext(ctx).Create(turn).Error; err != nil {
		return fmt.Errorf("failed to save conversation turn: %w", err)
	}
	return nil
}

// ListByChild returns the child's most recent turns, newest first.
func (r *ConversationRepository) ListByChild(ctx context.Context, childID string, limit int) ([]conversation.Turn, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	var turns []conversation.Turn
	if err := r.db.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("created_at DESC").
		Limit(limit).
		Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversation turns: %w", err)
	}
	return turns, nil
}
