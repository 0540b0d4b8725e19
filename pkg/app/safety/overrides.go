package safety

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/SafeChat/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Overrides carries per-family customization. It is passed to Assess explicitly and is
// never stored in the registry.
type Overrides struct {
	BlockedWords []string
	Severity     Severity
	matcher      Matcher
}

type overridesSettings struct {
	BlockedWords []string `mapstructure:"blocked_words"`
	Severity     string   `mapstructure:"severity"`
}

func NewOverrides(words []string, severity Severity) (*Overrides, error) {
	cleaned := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			return nil, domain.NewValidationError("settings.blocked_words", "words must not be empty")
		}
		if seen[w] {
			continue
		}
		seen[w] = true
		cleaned = append(cleaned, w)
	}
	if len(cleaned) == 0 {
		return nil, nil
	}
	m, err := NewWordsMatcher(cleaned)
	if err != nil {
		return nil, domain.NewValidationError("settings.blocked_words", err.Error())
	}
	return &Overrides{
		BlockedWords: cleaned,
		Severity:     severity,
		matcher:      m,
	}, nil
}

// DecodeOverrides reads the free-form settings object of a request. A nil or empty object
// yields nil overrides.
func DecodeOverrides(settings map[string]interface{}) (*Overrides, error) {
	if len(settings) == 0 {
		return nil, nil
	}
	var raw overridesSettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &raw,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create settings decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, domain.NewValidationError("settings", err.Error())
	}
	severity := SeverityMedium
	if raw.Severity != "" {
		severity, err = ParseSeverity(raw.Severity)
		if err != nil {
			return nil, domain.NewValidationError("settings.severity", err.Error())
		}
	}
	return NewOverrides(raw.BlockedWords, severity)
}

func (o *Overrides) matches(text string) bool {
	if o == nil || o.matcher == nil {
		return false
	}
	return o.matcher.Matches(text)
}
