package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/NeuralTrust/SafeChat/pkg/app/safety"
	"github.com/NeuralTrust/SafeChat/pkg/domain"
	"github.com/NeuralTrust/SafeChat/pkg/domain/conversation"
	"github.com/NeuralTrust/SafeChat/pkg/domain/notification"
	"github.com/NeuralTrust/SafeChat/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWriteTimeout  = 5 * time.Second
	DefaultDedupWindow   = 10 * time.Minute
	DefaultFailureBuffer = 100
	ExcerptLength        = 100

	dedupKeyPrefix = "safechat:notification:"
)

// Entry is one moderated exchange.
type Entry struct {
	ChildID      string
	InboundText  string
	Inbound      safety.Assessment
	OutboundText string
	Outbound     safety.Assessment
	// GeneratedText is the backend text discarded by the output check, if any.
	GeneratedText string
	Filtered      bool
	FilterReason  string
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

//go:generate mockery --name=Notifier --dir=. --output=./mocks --filename=notifier_mock.go --case=underscore --with-expecter
type Notifier interface {
	Notify(ctx context.Context, n *notification.Notification) error
}

// Deduplicator reports whether key was not seen within window, marking it as seen.
//
//go:generate mockery --name=Deduplicator --dir=. --output=./mocks --filename=deduplicator_mock.go --case=underscore --with-expecter
type Deduplicator interface {
	FirstSeen(ctx context.Context, key string, window time.Duration) (bool, error)
}

type Sink struct {
	logger        *logrus.Logger
	turns         conversation.Repository
	notifications notification.Repository
	notifier      Notifier
	dedup         Deduplicator
	reporter      ErrorReporter
	worker        *worker
	failures      chan Failure
	reporterDone  chan struct{}
	mu            sync.RWMutex
	stopped       bool
	queueSize     int
	writeTimeout  time.Duration
	dedupWindow   time.Duration
}

type Option func(*Sink)

func WithNotifier(n Notifier) Option {
	return func(s *Sink) {
		s.notifier = n
	}
}

func WithDeduplicator(d Deduplicator, window time.Duration) Option {
	return func(s *Sink) {
		s.dedup = d
		if window > 0 {
			s.dedupWindow = window
		}
	}
}

func WithErrorReporter(r ErrorReporter) Option {
	return func(s *Sink) {
		s.reporter = r
	}
}

func WithQueueSize(size int) Option {
	return func(s *Sink) {
		s.queueSize = size
	}
}

func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Sink) {
		if timeout > 0 {
			s.writeTimeout = timeout
		}
	}
}

func NewSink(
	logger *logrus.Logger,
	turns conversation.Repository,
	notifications notification.Repository,
	opts ...Option,
) *Sink {
	s := &Sink{
		logger:        logger,
		turns:         turns,
		notifications: notifications,
		queueSize:     DefaultQueueSize,
		writeTimeout:  DefaultWriteTimeout,
		dedupWindow:   DefaultDedupWindow,
		failures:      make(chan Failure, DefaultFailureBuffer),
		reporterDone:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reporter == nil {
		s.reporter = NewLogReporter(logger)
	}
	s.worker = newWorker(logger, s.queueSize)

	go func() {
		defer close(s.reporterDone)
		for f := range s.failures {
			s.reporter.Report(context.Background(), f)
		}
	}()
	return s
}

// Start launches n writers.
func (s *Sink) Start(n int) {
	s.worker.StartWorkers(n)
}

// Shutdown drains queued entries and flushes pending failure reports.
func (s *Sink) Shutdown() {
	s.worker.Shutdown()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.failures)
	s.mu.Unlock()

	<-s.reporterDone
}

// Record queues the entry and returns at once. An entry without a child is not
// recorded. When the queue is full the entry is dropped, reported and
// domain.ErrAuditQueueFull is returned.
func (s *Sink) Record(ctx context.Context, entry Entry) error {
	if entry.ChildID == "" {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	err := s.worker.enqueue(func() { s.write(ctx, entry) })
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSinkClosed) {
		s.logger.WithField("child_id", entry.ChildID).Warn("audit sink is closed, entry not recorded")
		return err
	}
	prometheus.AuditEventsTotal.WithLabelValues("dropped").Inc()
	s.fail(entry.ChildID, "enqueue", domain.ErrAuditQueueFull)
	return domain.ErrAuditQueueFull
}

func (s *Sink) write(ctx context.Context, e Entry) {
	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		return s.saveTurn(ctx, e.ChildID, conversation.SenderChild, e.InboundText,
			e.Inbound.Score, e.Inbound.ShouldBlock, "")
	})
	g.Go(func() error {
		reason := ""
		if e.Filtered {
			reason = e.FilterReason
		}
		return s.saveTurn(ctx, e.ChildID, conversation.SenderSystem, e.OutboundText,
			e.Outbound.Score, e.Filtered, reason)
	})
	_ = g.Wait()

	s.escalate(ctx, e)
}

func (s *Sink) saveTurn(
	ctx context.Context,
	childID string,
	sender conversation.Sender,
	content string,
	score int,
	flagged bool,
	reason string,
) error {
	op := "save_" + string(sender) + "_turn"
	turn, err := conversation.NewTurn(childID, sender, content, score, flagged, reason)
	if err == nil {
		err = s.turns.Save(ctx, turn)
	}
	if err != nil {
		prometheus.AuditEventsTotal.WithLabelValues("failed").Inc()
		s.fail(childID, op, err)
		return err
	}
	prometheus.AuditEventsTotal.WithLabelValues("written").Inc()
	return nil
}

func (s *Sink) escalate(ctx context.Context, e Entry) {
	severity := max(e.Inbound.Severity, e.Outbound.Severity)
	if severity < safety.SeverityMedium {
		return
	}
	flags := concernFlags(e.Inbound, e.Outbound)

	if severity == safety.SeverityMedium && s.dedup != nil {
		key := dedupKeyPrefix + e.ChildID + ":" + strings.Join(flags, ",")
		first, err := s.dedup.FirstSeen(ctx, key, s.dedupWindow)
		if err != nil {
			s.logger.WithError(err).Warn("notification dedup check failed, notifying anyway")
		} else if !first {
			prometheus.AuditEventsTotal.WithLabelValues("deduplicated").Inc()
			s.logger.WithFields(logrus.Fields{
				"child_id": e.ChildID,
				"flags":    flags,
			}).Debug("medium notification suppressed")
			return
		}
	}

	n, err := notification.NewNotification(e.ChildID, severity.String(), notificationMessage(e, severity, flags))
	if err == nil {
		err = s.notifications.Save(ctx, n)
	}
	if err != nil {
		prometheus.AuditEventsTotal.WithLabelValues("failed").Inc()
		s.fail(e.ChildID, "save_notification", err)
		return
	}
	prometheus.AuditEventsTotal.WithLabelValues("notified").Inc()

	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.fail(e.ChildID, "notify", err)
	}
}

func (s *Sink) fail(childID, op string, err error) {
	f := Failure{
		ChildID: childID,
		Op:      op,
		Err:     domain.NewPersistenceError(op, err),
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		s.reporter.Report(context.Background(), f)
		return
	}
	select {
	case s.failures <- f:
	default:
		s.logger.WithError(err).WithField("op", op).Error("failure channel is full, audit failure not reported")
	}
}

func concernFlags(assessments ...safety.Assessment) []string {
	seen := make(map[string]struct{})
	var flags []string
	for _, a := range assessments {
		for _, f := range a.ConcernFlags {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			flags = append(flags, f)
		}
	}
	sort.Strings(flags)
	return flags
}

func notificationMessage(e Entry, severity safety.Severity, flags []string) string {
	where, text := "child message", e.InboundText
	if e.Outbound.Severity > e.Inbound.Severity {
		where, text = "generated reply", e.GeneratedText
		if text == "" {
			text = e.OutboundText
		}
	}
	return fmt.Sprintf("%s concern (%s) in %s: %q",
		strings.ToUpper(severity.String()), strings.Join(flags, ", "), where, Excerpt(text, ExcerptLength))
}

// Excerpt truncates text to at most n runes, marking the cut with an ellipsis.
func Excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}
