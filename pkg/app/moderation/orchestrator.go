package moderation

import (
	"context"
	"strconv"
	"strings"

	"github.com/NeuralTrust/SafeChat/pkg/app/audit"
	"github.com/NeuralTrust/SafeChat/pkg/app/generation"
	"github.com/NeuralTrust/SafeChat/pkg/app/safety"
	"github.com/NeuralTrust/SafeChat/pkg/domain"
	"github.com/NeuralTrust/SafeChat/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

type Stage string

const (
	StageReceived      Stage = "received"
	StageInputChecked  Stage = "input_checked"
	StageBlocked       Stage = "blocked"
	StageGenerating    Stage = "generating"
	StageOutputChecked Stage = "output_checked"
	StageReplied       Stage = "replied"
)

// Request is one inbound chat message.
type Request struct {
	Message   string
	ChildID   string
	Locale    string
	Overrides *safety.Overrides
}

// Reply is what the child sees, plus the assessments behind it.
type Reply struct {
	Response    string
	Filtered    bool
	SafetyScore int
	Source      generation.Source
	Stage       Stage
	Reason      string
	Input       safety.Assessment
	Output      *safety.Assessment
}

//go:generate mockery --name=Moderator --dir=. --output=./mocks --filename=moderator_mock.go --case=underscore --with-expecter
type Moderator interface {
	Handle(ctx context.Context, req Request) (*Reply, error)
}

type Orchestrator struct {
	logger    *logrus.Logger
	scorer    *safety.Scorer
	policy    *safety.Policy
	generator generation.Generator
	recorder  audit.Recorder
}

func NewOrchestrator(
	logger *logrus.Logger,
	scorer *safety.Scorer,
	policy *safety.Policy,
	generator generation.Generator,
	recorder audit.Recorder,
) *Orchestrator {
	return &Orchestrator{
		logger:    logger,
		scorer:    scorer,
		policy:    policy,
		generator: generator,
		recorder:  recorder,
	}
}

// Handle runs one message through input check, generation and output check. Content
// blocks are replies, not errors; errors are either validation failures or
// domain.ErrSafetyUnavailable.
func (o *Orchestrator) Handle(ctx context.Context, req Request) (*Reply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, domain.NewValidationError("message", "must not be empty")
	}
	if o.scorer == nil || o.policy == nil {
		return nil, domain.ErrSafetyUnavailable
	}

	locale := o.scorer.Registry().ResolveLocale(req.Locale)
	log := o.logger.WithFields(logrus.Fields{
		"child_id":       req.ChildID,
		"locale":         locale,
		"message_length": len(req.Message),
	})
	log.WithField("stage", StageReceived).Debug("moderating message")

	input := o.scorer.Assess(req.Message, locale, req.Overrides)
	o.observe("input", input)
	log.WithFields(logrus.Fields{
		"stage":    StageInputChecked,
		"score":    input.Score,
		"severity": input.Severity.String(),
		"flags":    input.Flags,
	}).Debug("input assessed")

	if verdict := o.policy.Decide(input, locale); !verdict.Allow {
		reply := &Reply{
			Response:    verdict.Reply,
			Filtered:    true,
			SafetyScore: input.Score,
			Source:      generation.SourceFallback,
			Stage:       StageBlocked,
			Reason:      verdict.Reason,
			Input:       input,
		}
		log.WithFields(logrus.Fields{"stage": StageBlocked, "reason": verdict.Reason}).Debug("input blocked")
		o.finish(ctx, req, reply, o.scorer.Assess(verdict.Reply, locale, nil), "")
		return reply, nil
	}

	if o.generator == nil {
		return nil, domain.ErrSafetyUnavailable
	}
	log.WithField("stage", StageGenerating).Debug("generating reply")
	result := o.generator.Generate(ctx, req.Message, locale)

	output := o.scorer.Assess(result.Text, locale, req.Overrides)
	o.observe("output", output)
	reply := &Reply{
		Response:    result.Text,
		SafetyScore: input.Score,
		Source:      result.Source,
		Stage:       StageOutputChecked,
		Input:       input,
		Output:      &output,
	}

	generated := ""
	if verdict := o.policy.DecideOutput(output, locale); !verdict.Allow {
		generated = result.Text
		reply.Response = verdict.Reply
		reply.Filtered = true
		reply.SafetyScore = output.Score
		reply.Reason = verdict.Reason
		log.WithFields(logrus.Fields{
			"stage":    StageOutputChecked,
			"source":   result.Source,
			"reason":   verdict.Reason,
			"severity": output.Severity.String(),
		}).Warn("generated reply failed the safety check, substituting")
	}

	o.finish(ctx, req, reply, output, generated)
	return reply, nil
}

func (o *Orchestrator) finish(ctx context.Context, req Request, reply *Reply, outbound safety.Assessment, generated string) {
	o.logger.WithFields(logrus.Fields{
		"stage":    StageReplied,
		"source":   reply.Source,
		"filtered": reply.Filtered,
		"score":    reply.SafetyScore,
	}).Debug("replied")
	prometheus.RepliesTotal.WithLabelValues(string(reply.Source), strconv.FormatBool(reply.Filtered)).Inc()

	if o.recorder == nil || req.ChildID == "" {
		return
	}
	err := o.recorder.Record(ctx, audit.Entry{
		ChildID:       req.ChildID,
		InboundText:   req.Message,
		Inbound:       reply.Input,
		OutboundText:  reply.Response,
		Outbound:      outbound,
		GeneratedText: generated,
		Filtered:      reply.Filtered,
		FilterReason:  reply.Reason,
	})
	if err != nil {
		o.logger.WithError(err).WithField("child_id", req.ChildID).Warn("conversation not recorded")
	}
}

func (o *Orchestrator) observe(stage string, a safety.Assessment) {
	prometheus.AssessmentsTotal.
		WithLabelValues(stage, a.Severity.String(), strconv.FormatBool(a.ShouldBlock)).
		Inc()
}
