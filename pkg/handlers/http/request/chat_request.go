package request

import (
	"strings"
	"unicode/utf8"

	"github.com/NeuralTrust/SafeChat/pkg/domain"
)

const (
	MaxMessageLength = 2000
	maxChildIDLength = 64
)

type ChatRequest struct {
	Message  string                 `json:"message"`
	ChildID  string                 `json:"childId,omitempty"`
	Locale   string                 `json:"locale,omitempty"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return domain.NewValidationError("message", "is required")
	}
	if utf8.RuneCountInString(r.Message) > MaxMessageLength {
		return domain.NewValidationError("message", "is too long")
	}
	r.ChildID = strings.TrimSpace(r.ChildID)
	if len(r.ChildID) > maxChildIDLength {
		return domain.NewValidationError("childId", "is too long")
	}
	r.Locale = strings.ToLower(strings.TrimSpace(r.Locale))
	return nil
}
