package safety

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/NeuralTrust/SafeChat/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/default.yaml
var defaultCatalog []byte

type catalogDocument struct {
	DefaultLocale string                       `yaml:"default_locale"`
	Locales       []string                     `yaml:"locales"`
	Defaults      map[string]map[string]string `yaml:"defaults"`
	Categories    []categoryDocument           `yaml:"categories"`
}

type categoryDocument struct {
	Name           string              `yaml:"name"`
	Kind           Kind                `yaml:"kind"`
	Severity       string              `yaml:"severity"`
	Priority       int                 `yaml:"priority"`
	Penalty        int                 `yaml:"penalty"`
	Patterns       []string            `yaml:"patterns"`
	LocalePatterns map[string][]string `yaml:"locale_patterns"`
	Exceptions     []string            `yaml:"exceptions"`
	Responses      map[string]string   `yaml:"responses"`
}

// DefaultCatalog returns the catalog bundled with the binary.
func DefaultCatalog() []byte {
	out := make([]byte, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

// LoadRegistry builds a registry from the bundled catalog, or from path when it is set.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return ParseRegistry(defaultCatalog, "embedded")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewConfigurationError(path, fmt.Errorf("failed to read catalog: %w", err))
	}
	return ParseRegistry(data, path)
}

// ParseRegistry validates a YAML catalog document and compiles it. Every failure is a
// ConfigurationError naming source.
func ParseRegistry(data []byte, source string) (*Registry, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewConfigurationError(source, fmt.Errorf("failed to parse catalog: %w", err))
	}
	reg, err := buildRegistry(&doc)
	if err != nil {
		return nil, domain.NewConfigurationError(source, err)
	}
	return reg, nil
}

func buildRegistry(doc *catalogDocument) (*Registry, error) {
	if doc.DefaultLocale == "" {
		return nil, fmt.Errorf("default_locale is required")
	}
	locales := make([]string, 0, len(doc.Locales))
	seenLocale := make(map[string]bool)
	for _, l := range doc.Locales {
		l = normalizeLocale(l)
		if l == "" || seenLocale[l] {
			continue
		}
		seenLocale[l] = true
		locales = append(locales, l)
	}
	defaultLocale := normalizeLocale(doc.DefaultLocale)
	if !seenLocale[defaultLocale] {
		return nil, fmt.Errorf("default locale %q is not listed in locales", doc.DefaultLocale)
	}

	defaults := make(map[Severity]map[string]string, len(doc.Defaults))
	for key, texts := range doc.Defaults {
		sev, err := ParseSeverity(key)
		if err != nil {
			return nil, fmt.Errorf("defaults: %w", err)
		}
		defaults[sev] = normalizeTexts(texts)
	}
	for _, sev := range []Severity{SeverityLow, SeverityMedium, SeverityHigh} {
		if defaults[sev][defaultLocale] == "" {
			return nil, fmt.Errorf("defaults: missing %s message for default locale %q", sev, defaultLocale)
		}
	}

	categories := make([]*Category, 0, len(doc.Categories))
	seenName := make(map[string]bool)
	for i := range doc.Categories {
		cat, err := buildCategory(&doc.Categories[i], locales, defaultLocale)
		if err != nil {
			return nil, err
		}
		key := string(cat.Kind) + "/" + cat.Name
		if seenName[key] {
			return nil, fmt.Errorf("category %q declared twice", cat.Name)
		}
		seenName[key] = true
		categories = append(categories, cat)
	}

	return newRegistry(defaultLocale, locales, defaults, categories), nil
}

func buildCategory(doc *categoryDocument, locales []string, defaultLocale string) (*Category, error) {
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		return nil, fmt.Errorf("category without name")
	}
	if name == CustomBlockedCategory {
		return nil, fmt.Errorf("category name %q is reserved", name)
	}
	cat := &Category{
		Name:      name,
		Kind:      doc.Kind,
		Priority:  doc.Priority,
		Penalty:   doc.Penalty,
		responses: normalizeTexts(doc.Responses),
	}

	switch doc.Kind {
	case KindConcern:
		sev, err := ParseSeverity(doc.Severity)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		cat.Severity = sev
	case KindCultural, KindPositive:
		if doc.Severity != "" {
			return nil, fmt.Errorf("category %q: severity is only valid for concern categories", name)
		}
		if doc.Penalty != 0 {
			return nil, fmt.Errorf("category %q: penalty is only valid for concern categories", name)
		}
	default:
		return nil, fmt.Errorf("category %q: unknown kind %q", name, doc.Kind)
	}
	if doc.Penalty < 0 {
		return nil, fmt.Errorf("category %q: penalty must not be negative", name)
	}
	// The flat profanity penalty always counts as the highest tier.
	if name == ProfanityCategory {
		if cat.Severity != SeverityHigh {
			return nil, fmt.Errorf("category %q must be high severity", name)
		}
		if cat.Penalty == 0 {
			cat.Penalty = ProfanityPenalty
		}
	}

	if len(doc.Patterns) > 0 && len(doc.LocalePatterns) > 0 {
		return nil, fmt.Errorf("category %q: patterns and locale_patterns are mutually exclusive", name)
	}
	for _, p := range doc.Patterns {
		m, err := newCategoryMatcher(p, doc.Exceptions)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		cat.matchers = append(cat.matchers, m)
	}
	if len(doc.LocalePatterns) > 0 {
		cat.localeMatchers = make(map[string][]Matcher, len(doc.LocalePatterns))
		for locale, patterns := range doc.LocalePatterns {
			locale = normalizeLocale(locale)
			for _, p := range patterns {
				m, err := newCategoryMatcher(p, doc.Exceptions)
				if err != nil {
					return nil, fmt.Errorf("category %q (%s): %w", name, locale, err)
				}
				cat.localeMatchers[locale] = append(cat.localeMatchers[locale], m)
			}
		}
		if len(cat.localeMatchers[defaultLocale]) == 0 {
			return nil, fmt.Errorf("category %q: locale_patterns must include the default locale %q", name, defaultLocale)
		}
	}
	if len(cat.matchers) == 0 && len(cat.localeMatchers) == 0 {
		return nil, fmt.Errorf("category %q has no patterns", name)
	}

	if cat.Kind == KindConcern && cat.Severity == SeverityHigh {
		for _, l := range locales {
			if cat.responses[l] == "" {
				return nil, fmt.Errorf("high severity category %q has no response for locale %q", name, l)
			}
		}
	}
	if cat.Kind == KindCultural && cat.responses[defaultLocale] == "" {
		return nil, fmt.Errorf("cultural category %q has no response for default locale %q", name, defaultLocale)
	}
	return cat, nil
}

func newCategoryMatcher(pattern string, exceptions []string) (Matcher, error) {
	m, err := NewRegexMatcher(pattern)
	if err != nil {
		return nil, err
	}
	return NewExceptMatcher(m, exceptions)
}

func normalizeTexts(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out[normalizeLocale(k)] = v
	}
	return out
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.TrimSpace(locale))
}
