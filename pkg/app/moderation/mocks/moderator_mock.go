package mocks

import (
	context "context"

	moderation "github.com/NeuralTrust/SafeChat/pkg/app/moderation"
	mock "github.com/stretchr/testify/mock"
)

// Moderator is an autogenerated mock type for the Moderator type
type Moderator struct {
	mock.Mock
}

type Moderator_Expecter struct {
	mock *mock.Mock
}

func (_m *Moderator) EXPECT() *Moderator_Expecter {
	return &Moderator_Expecter{mock: &_m.Mock}
}

// Handle provides a mock function with given fields: ctx, req
func (_m *Moderator) Handle(ctx context.Context, req moderation.Request) (*moderation.Reply, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Handle")
	}

	var r0 *moderation.Reply
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, moderation.Request) (*moderation.Reply, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, moderation.Request) *moderation.Reply); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*moderation.Reply)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, moderation.Request) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Moderator_Handle_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Handle'
type Moderator_Handle_Call struct {
	*mock.Call
}

// Handle is a helper method to define mock.On call
//   - ctx context.Context
//   - req moderation.Request
func (_e *Moderator_Expecter) Handle(ctx interface{}, req interface{}) *Moderator_Handle_Call {
	return &Moderator_Handle_Call{Call: _e.mock.On("Handle", ctx, req)}
}

func (_c *Moderator_Handle_Call) Run(run func(ctx context.Context, req moderation.Request)) *Moderator_Handle_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(moderation.Request))
	})
	return _c
}

func (_c *Moderator_Handle_Call) Return(_a0 *moderation.Reply, _a1 error) *Moderator_Handle_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *Moderator_Handle_Call) RunAndReturn(run func(context.Context, moderation.Request) (*moderation.Reply, error)) *Moderator_Handle_Call {
	_c.Call.Return(run)
	return _c
}

// NewModerator creates a new instance of Moderator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewModerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *Moderator {
	mock := &Moderator{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
