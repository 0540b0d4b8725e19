package conversation

import (
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderChild  Sender = "child"
	SenderSystem Sender = "system"
)

type Turn struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ChildID      string    `json:"child_id" gorm:"index;not null"`
	Sender       Sender    `json:"sender" gorm:"type:varchar(16);not null"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	SafetyScore  int       `json:"safety_score" gorm:"not null"`
	Flagged      bool      `json:"flagged" gorm:"not null;default:false"`
	FilterReason *string   `json:"filter_reason,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

func (Turn) TableName() string {
	return "conversation_turns"
}

func NewTurn(childID string, sender Sender, content string, score int, flagged bool, reason string) (*Turn, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	turn := &Turn{
		ID:          id,
		ChildID:     childID,
		Sender:      sender,
		Content:     content,
		SafetyScore: score,
		Flagged:     flagged,
		CreatedAt:   time.Now().UTC(),
	}
	if reason != "" {
		turn.FilterReason = &reason
	}
	return turn, nil
}
