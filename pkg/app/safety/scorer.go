package safety

// Scorer turns text into an Assessment. Assess is a pure function of its arguments and
// the registry, so the same text is always scored the same way.
type Scorer struct {
	registry *Registry
}

func NewScorer(registry *Registry) *Scorer {
	return &Scorer{registry: registry}
}

func (s *Scorer) Registry() *Registry {
	return s.registry
}

type assessmentBuilder struct {
	score            int
	flags            []string
	concernFlags     []string
	seen             map[string]bool
	severity         Severity
	response         string
	responseCategory string
	highRecorded     bool
}

func (b *assessmentBuilder) flag(name string, concern bool) {
	if b.seen[name] {
		return
	}
	b.seen[name] = true
	b.flags = append(b.flags, name)
	if concern {
		b.concernFlags = append(b.concernFlags, name)
	}
}

// record keeps the first high response, otherwise the first medium one.
func (b *assessmentBuilder) record(category string, severity Severity, response string) {
	if response == "" {
		return
	}
	switch severity {
	case SeverityHigh:
		if b.highRecorded {
			return
		}
		b.highRecorded = true
	case SeverityMedium:
		if b.response != "" {
			return
		}
	default:
		return
	}
	b.response = response
	b.responseCategory = category
}

func (s *Scorer) Assess(text, locale string, overrides *Overrides) Assessment {
	locale = s.registry.ResolveLocale(locale)
	b := &assessmentBuilder{
		score: MaxScore,
		seen:  make(map[string]bool),
	}
	var cultural, positive []*Category

	for _, c := range s.registry.Match(locale, text) {
		switch c.Kind {
		case KindConcern:
			b.score -= c.Deduction()
			b.flag(c.Name, true)
			if c.Severity > b.severity {
				b.severity = c.Severity
			}
			b.record(c.Name, c.Severity, s.registry.Response(c.Name, locale))
		case KindCultural:
			cultural = append(cultural, c)
		case KindPositive:
			positive = append(positive, c)
		}
	}

	if overrides.matches(text) {
		b.score -= overrides.Severity.Penalty()
		b.flag(CustomBlockedCategory, true)
		if overrides.Severity > b.severity {
			b.severity = overrides.Severity
		}
		b.record(CustomBlockedCategory, overrides.Severity, s.registry.DefaultResponse(overrides.Severity, locale))
	}

	for _, c := range cultural {
		b.flag(c.Flag(), false)
		if b.response == "" {
			b.response = s.registry.Response(c.Name, locale)
			b.responseCategory = c.Flag()
		}
	}

	for _, c := range positive {
		b.score += PositiveBoost
		b.flag(c.Flag(), false)
	}

	score := clamp(b.score, 0, MaxScore)
	return Assessment{
		Score:             score,
		Flags:             copyStrings(b.flags),
		ConcernFlags:      copyStrings(b.concernFlags),
		Severity:          b.severity,
		ShouldBlock:       score < BlockThreshold || b.severity == SeverityHigh,
		SuggestedResponse: b.response,
		ResponseCategory:  b.responseCategory,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
