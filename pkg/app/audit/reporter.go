package audit

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Failure is an audit write that did not happen. It never reaches the child.
type Failure struct {
	ChildID string
	Op      string
	Err     error
}

//go:generate mockery --name=ErrorReporter --dir=. --output=./mocks --filename=error_reporter_mock.go --case=underscore --with-expecter
type ErrorReporter interface {
	Report(ctx context.Context, failure Failure)
}

type logReporter struct {
	logger *logrus.Logger
}

// NewLogReporter reports failures to the process log.
func NewLogReporter(logger *logrus.Logger) ErrorReporter {
	return &logReporter{logger: logger}
}

func (r *logReporter) Report(_ context.Context, failure Failure) {
	r.logger.WithError(failure.Err).WithFields(logrus.Fields{
		"child_id": failure.ChildID,
		"op":       failure.Op,
	}).Error("audit write failed")
}
