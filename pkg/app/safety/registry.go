package safety

import (
	"sort"
	"strings"
)

// Registry is the compiled category catalog. It is built once at startup and only read
// afterwards, so a single instance is shared by every request.
type Registry struct {
	defaultLocale string
	locales       []string
	supported     map[string]bool
	defaults      map[Severity]map[string]string
	concerns      []*Category
	cultural      []*Category
	positive      []*Category
	byName        map[string]*Category
}

func newRegistry(
	defaultLocale string,
	locales []string,
	defaults map[Severity]map[string]string,
	categories []*Category,
) *Registry {
	r := &Registry{
		defaultLocale: defaultLocale,
		locales:       locales,
		supported:     make(map[string]bool, len(locales)),
		defaults:      defaults,
		byName:        make(map[string]*Category, len(categories)),
	}
	for _, l := range locales {
		r.supported[l] = true
	}
	for _, c := range categories {
		switch c.Kind {
		case KindConcern:
			r.concerns = append(r.concerns, c)
		case KindCultural:
			r.cultural = append(r.cultural, c)
		case KindPositive:
			r.positive = append(r.positive, c)
		}
		if _, ok := r.byName[c.Name]; !ok {
			r.byName[c.Name] = c
		}
	}
	// Declaration order breaks priority ties.
	for _, group := range [][]*Category{r.concerns, r.cultural, r.positive} {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Priority < group[j].Priority
		})
	}
	return r
}

func (r *Registry) DefaultLocale() string {
	return r.defaultLocale
}

func (r *Registry) Locales() []string {
	out := make([]string, len(r.locales))
	copy(out, r.locales)
	return out
}

// ResolveLocale maps a requested locale onto a supported one. Region tags such as "en-US"
// fall back to their language, anything else unknown to the default locale.
func (r *Registry) ResolveLocale(locale string) string {
	locale = normalizeLocale(locale)
	if r.supported[locale] {
		return locale
	}
	if i := strings.IndexAny(locale, "-_"); i > 0 && r.supported[locale[:i]] {
		return locale[:i]
	}
	return r.defaultLocale
}

// Match returns every category whose matchers fire on text: concerns first, then cultural,
// then positive categories, each group in priority order.
func (r *Registry) Match(locale, text string) []*Category {
	locale = r.ResolveLocale(locale)
	var matched []*Category
	for _, group := range [][]*Category{r.concerns, r.cultural, r.positive} {
		for _, c := range group {
			if c.matches(locale, r.defaultLocale, text) {
				matched = append(matched, c)
			}
		}
	}
	return matched
}

// Response returns the canned reply of a category, falling back to the default locale.
func (r *Registry) Response(category, locale string) string {
	c, ok := r.byName[category]
	if !ok {
		return ""
	}
	return r.localized(c.responses, locale)
}

// DefaultResponse is the severity-keyed reply used when no category response applies.
func (r *Registry) DefaultResponse(severity Severity, locale string) string {
	return r.localized(r.defaults[severity], locale)
}

func (r *Registry) localized(texts map[string]string, locale string) string {
	if text, ok := texts[r.ResolveLocale(locale)]; ok {
		return text
	}
	return texts[r.defaultLocale]
}

func (r *Registry) Category(name string) (*Category, bool) {
	c, ok := r.byName[name]
	return c, ok
}

func (r *Registry) Categories() []CategoryInfo {
	var infos []CategoryInfo
	for _, group := range [][]*Category{r.concerns, r.cultural, r.positive} {
		for _, c := range group {
			info := CategoryInfo{
				Name:     c.Name,
				Kind:     c.Kind,
				Severity: c.Severity,
				Priority: c.Priority,
			}
			if c.Kind == KindConcern {
				info.Penalty = c.Deduction()
			}
			if c.Kind == KindPositive {
				info.Penalty = -PositiveBoost
			}
			for _, l := range r.locales {
				if _, ok := c.responses[l]; ok {
					info.Locales = append(info.Locales, l)
				}
			}
			infos = append(infos, info)
		}
	}
	return infos
}
