package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type Deduplicator struct {
	mock.Mock
}

func (m *Deduplicator) FirstSeen(ctx context.Context, key string, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, window)
	return args.Bool(0), args.Error(1)
}

func NewDeduplicator(t interface {
	mock.TestingT
	Cleanup(func())
}) *Deduplicator {
	m := &Deduplicator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
