package safety

import "strings"

const LowScoreReason = "low_safety_score"

type Verdict struct {
	Allow  bool   `json:"allow"`
	Reply  string `json:"reply,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Policy maps assessments to allow/block verdicts and picks the reply shown on a block.
//
// Generated replies are held to a stricter bar than children's messages: any concern at or
// above outputSeverity discards the generated text even when the score alone would pass.
type Policy struct {
	registry       *Registry
	outputSeverity Severity
}

type PolicyOption func(*Policy)

func WithOutputBlockSeverity(s Severity) PolicyOption {
	return func(p *Policy) {
		p.outputSeverity = s
	}
}

func NewPolicy(registry *Registry, opts ...PolicyOption) *Policy {
	p := &Policy{
		registry:       registry,
		outputSeverity: SeverityMedium,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Decide applies the inbound blocking rule, which is the assessment's own ShouldBlock.
func (p *Policy) Decide(a Assessment, locale string) Verdict {
	if !a.ShouldBlock {
		return Verdict{Allow: true}
	}
	return p.block(a, locale)
}

// DecideOutput applies the rule for generated text.
func (p *Policy) DecideOutput(a Assessment, locale string) Verdict {
	if !a.ShouldBlock && !(a.HasConcern() && a.Severity >= p.outputSeverity) {
		return Verdict{Allow: true}
	}
	return p.block(a, locale)
}

func (p *Policy) block(a Assessment, locale string) Verdict {
	reply := a.SuggestedResponse
	if reply == "" {
		reply = p.registry.DefaultResponse(a.Severity, locale)
	}
	reason := LowScoreReason
	if len(a.ConcernFlags) > 0 {
		reason = strings.Join(a.ConcernFlags, ",")
	}
	return Verdict{
		Allow:  false,
		Reply:  reply,
		Reason: reason,
	}
}
