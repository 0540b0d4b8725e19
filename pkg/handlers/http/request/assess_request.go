package request

import (
	"strings"
	"unicode/utf8"

	"github.com/NeuralTrust/SafeChat/pkg/domain"
)

type AssessRequest struct {
	Text     string                 `json:"text"`
	Locale   string                 `json:"locale,omitempty"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

func (r *AssessRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return domain.NewValidationError("text", "is required")
	}
	if utf8.RuneCountInString(r.Text) > MaxMessageLength {
		return domain.NewValidationError("text", "is too long")
	}
	r.Locale = strings.ToLower(strings.TrimSpace(r.Locale))
	return nil
}
