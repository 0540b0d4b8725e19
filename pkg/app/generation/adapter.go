package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/SafeChat/pkg/domain"
	"github.com/NeuralTrust/SafeChat/pkg/infra/httpx"
	"github.com/NeuralTrust/SafeChat/pkg/infra/prometheus"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers"
	"github.com/sirupsen/logrus"
)

type Source string

const (
	SourceFallback  Source = "fallback"
	SourcePrimary   Source = "primary"
	SourceEmergency Source = "emergency_fallback"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxFailures = 5
	DefaultOpenTimeout = 30 * time.Second
)

var errEmptyCompletion = errors.New("empty completion")

type Result struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

//go:generate mockery --name=Generator --dir=. --output=./mocks --filename=generator_mock.go --case=underscore --with-expecter

// Generator produces a reply for an allowed message. It never fails: the result always
// carries non-empty text.
type Generator interface {
	Generate(ctx context.Context, message, locale string) Result
}

type Adapter struct {
	logger  *logrus.Logger
	catalog *StaticCatalog
	backend providers.Client
	config  providers.Config
	breaker httpx.CircuitBreaker
	timeout time.Duration
}

type Option func(*Adapter)

// WithBackend sets the generative model. Without one the adapter only serves the static
// catalog and the emergency reply.
func WithBackend(client providers.Client, config providers.Config) Option {
	return func(a *Adapter) {
		a.backend = client
		a.config = config
	}
}

func WithBreaker(breaker httpx.CircuitBreaker) Option {
	return func(a *Adapter) {
		a.breaker = breaker
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(a *Adapter) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

func NewAdapter(logger *logrus.Logger, catalog *StaticCatalog, opts ...Option) *Adapter {
	a := &Adapter{
		logger:  logger,
		catalog: catalog,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.breaker == nil {
		a.breaker = httpx.NewCircuitBreaker("generation", DefaultOpenTimeout, DefaultMaxFailures)
	}
	if a.backend == nil {
		logger.Warn("no generation backend configured, replies come from the static catalog only")
	}
	return a
}

func (a *Adapter) Generate(ctx context.Context, message, locale string) Result {
	start := time.Now()

	if text, ok := a.catalog.Lookup(message, locale); ok {
		return a.done(start, Result{Text: text, Source: SourceFallback})
	}

	text, err := a.ask(ctx, message, locale)
	if err == nil {
		return a.done(start, Result{Text: text, Source: SourcePrimary})
	}
	a.logger.WithError(err).WithFields(logrus.Fields{
		"locale":  locale,
		"breaker": a.breaker.State(),
	}).Warn("generation backend failed, using emergency reply")

	return a.done(start, Result{Text: a.catalog.Emergency(locale), Source: SourceEmergency})
}

func (a *Adapter) done(start time.Time, result Result) Result {
	if prometheus.Config.EnableLatency {
		prometheus.GenerationLatency.
			WithLabelValues(string(result.Source)).
			Observe(float64(time.Since(start).Milliseconds()))
	}
	return result
}

type askResult struct {
	text string
	err  error
}

func (a *Adapter) ask(ctx context.Context, message, locale string) (string, error) {
	if a.backend == nil {
		return "", fmt.Errorf("%w: no backend configured", domain.ErrGenerationBackend)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cfg := a.config
	cfg.SystemPrompt = SystemInstruction(locale)
	cfg.Instructions = Rules()

	var text string
	err := a.breaker.Execute(func() error {
		// A backend that ignores ctx must not hold the reply past the timeout.
		ch := make(chan askResult, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					ch <- askResult{err: fmt.Errorf("backend panic: %v", r)}
				}
			}()
			resp, err := a.backend.Ask(ctx, &cfg, message)
			if err != nil {
				ch <- askResult{err: err}
				return
			}
			ch <- askResult{text: resp.Text()}
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-ch:
			if res.err != nil {
				return res.err
			}
			if res.text == "" {
				return errEmptyCompletion
			}
			text = res.text
			return nil
		}
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationBackend, err)
	}
	return text, nil
}
