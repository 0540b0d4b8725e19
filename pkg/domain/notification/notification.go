package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a guardian escalation. Read is owned by the dashboard and is only
// ever inserted as false here.
type Notification struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ChildID   string    `json:"child_id" gorm:"index;not null"`
	Severity  string    `json:"severity" gorm:"type:varchar(16);not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "guardian_notifications"
}

func NewNotification(childID, severity, message string) (*Notification, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &Notification{
		ID:        id,
		ChildID:   childID,
		Severity:  severity,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}, nil
}
