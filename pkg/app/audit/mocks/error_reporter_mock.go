package mocks

import (
	"context"

	"github.com/NeuralTrust/SafeChat/pkg/app/audit"
	"github.com/stretchr/testify/mock"
)

type ErrorReporter struct {
	mock.Mock
}

func (m *ErrorReporter) Report(ctx context.Context, failure audit.Failure) {
	m.Called(ctx, failure)
}

func NewErrorReporter(t interface {
	mock.TestingT
	Cleanup(func())
}) *ErrorReporter {
	m := &ErrorReporter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
