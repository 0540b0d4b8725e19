package safety

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "low"
	}
}

// Penalty is the score deduction applied when a concern category of this severity matches.
func (s Severity) Penalty() int {
	switch s {
	case SeverityHigh:
		return 40
	case SeverityMedium:
		return 25
	default:
		return 15
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseSeverity(value string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return SeverityLow, fmt.Errorf("unknown severity %q", value)
	}
}

type Kind string

const (
	KindConcern  Kind = "concern"
	KindCultural Kind = "cultural"
	KindPositive Kind = "positive"
)

const (
	CulturalFlagPrefix = "cultural_"
	PositiveFlagPrefix = "positive_"

	ProfanityCategory     = "inappropriate_language"
	CustomBlockedCategory = "custom_blocked"

	ProfanityPenalty = 30
	PositiveBoost    = 5
	BlockThreshold   = 60
	MaxScore         = 100
)

// Category is an immutable catalog entry. Matchers are either shared by every locale or,
// for per-locale categories, keyed by locale code.
type Category struct {
	Name           string
	Kind           Kind
	Severity       Severity
	Priority       int
	Penalty        int
	matchers       []Matcher
	localeMatchers map[string][]Matcher
	responses      map[string]string
}

func (c *Category) PerLocale() bool {
	return len(c.localeMatchers) > 0
}

// Deduction returns the score penalty for a concern match.
func (c *Category) Deduction() int {
	if c.Penalty > 0 {
		return c.Penalty
	}
	return c.Severity.Penalty()
}

func (c *Category) Flag() string {
	switch c.Kind {
	case KindCultural:
		return CulturalFlagPrefix + c.Name
	case KindPositive:
		return PositiveFlagPrefix + c.Name
	default:
		return c.Name
	}
}

func (c *Category) matches(locale, defaultLocale, text string) bool {
	matchers := c.matchers
	if c.PerLocale() {
		var ok bool
		matchers, ok = c.localeMatchers[locale]
		if !ok {
			matchers = c.localeMatchers[defaultLocale]
		}
	}
	for _, m := range matchers {
		if m.Matches(text) {
			return true
		}
	}
	return false
}

// Assessment is the per-message result of scoring. It is a value type; slices are copied
// when the assessment is built and must not be modified by callers.
type Assessment struct {
	Score             int      `json:"score"`
	Flags             []string `json:"flags"`
	ConcernFlags      []string `json:"concern_flags"`
	Severity          Severity `json:"severity"`
	ShouldBlock       bool     `json:"should_block"`
	SuggestedResponse string   `json:"suggested_response,omitempty"`
	ResponseCategory  string   `json:"response_category,omitempty"`
}

func (a Assessment) HasConcern() bool {
	return len(a.ConcernFlags) > 0
}

// CategoryInfo is the read-only summary exposed to the introspection endpoint.
type CategoryInfo struct {
	Name     string   `json:"name"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Priority int      `json:"priority"`
	Penalty  int      `json:"penalty"`
	Locales  []string `json:"locales"`
}
