package mocks

import (
	"context"

	"github.com/NeuralTrust/SafeChat/pkg/domain/conversation"
	"github.com/stretchr/testify/mock"
)

type Repository struct {
	mock.Mock
}

func (m *Repository) Save(ctx context.Context, turn *conversation.Turn) error {
	args := m.Called(ctx, turn)
	return args.Error(0)
}

func (m *Repository) ListByChild(ctx context.Context, childID string, limit int) ([]conversation.Turn, error) {
	args := m.Called(ctx, childID, limit)
	turns, _ := args.Get(0).([]conversation.Turn)
	return turns, args.Error(1)
}

func NewRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *Repository {
	m := &Repository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
