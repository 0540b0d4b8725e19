package mocks

import (
	context "context"

	generation "github.com/NeuralTrust/SafeChat/pkg/app/generation"
	mock "github.com/stretchr/testify/mock"
)

// Generator is an autogenerated mock type for the Generator type
type Generator struct {
	mock.Mock
}

type Generator_Expecter struct {
	mock *mock.Mock
}

func (_m *Generator) EXPECT() *Generator_Expecter {
	return &Generator_Expecter{mock: &_m.Mock}
}

// Generate provides a mock function with given fields: ctx, message, locale
func (_m *Generator) Generate(ctx context.Context, message string, locale string) generation.Result {
	ret := _m.Called(ctx, message, locale)

	if len(ret) == 0 {
		panic("no return value specified for Generate")
	}

	var r0 generation.Result
	if rf, ok := ret.Get(0).(func(context.Context, string, string) generation.Result); ok {
		r0 = rf(ctx, message, locale)
	} else {
		r0 = ret.Get(0).(generation.Result)
	}

	return r0
}

// Generator_Generate_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Generate'
type Generator_Generate_Call struct {
	*mock.Call
}

// Generate is a helper method to define mock.On call
//   - ctx context.Context
//   - message string
//   - locale string
func (_e *Generator_Expecter) Generate(ctx interface{}, message interface{}, locale interface{}) *Generator_Generate_Call {
	return &Generator_Generate_Call{Call: _e.mock.On("Generate", ctx, message, locale)}
}

func (_c *Generator_Generate_Call) Run(run func(ctx context.Context, message string, locale string)) *Generator_Generate_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(string), args[2].(string))
	})
	return _c
}

func (_c *Generator_Generate_Call) Return(_a0 generation.Result) *Generator_Generate_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *Generator_Generate_Call) RunAndReturn(run func(context.Context, string, string) generation.Result) *Generator_Generate_Call {
	_c.Call.Return(run)
	return _c
}

// NewGenerator creates a new instance of Generator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *Generator {
	mock := &Generator{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
