package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSafetyUnavailable = errors.New("safety classification is not available")
	ErrGenerationBackend = errors.New("generation backend call failed")
	ErrAuditQueueFull    = errors.New("audit queue is full, entry dropped")
)

type validationError struct {
	Field  string
	Reason string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &validationError{
		Field:  field,
		Reason: reason,
	}
}

func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var validationError *validationError
	return errors.As(err, &validationError)
}

type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func NewConfigurationError(source string, err error) error {
	return &ConfigurationError{
		Source: source,
		Err:    err,
	}
}

func IsConfigurationError(err error) bool {
	var configurationError *ConfigurationError
	return errors.As(err, &configurationError)
}

// PersistenceError wraps a failed audit write. It is reported, never surfaced to the child.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(op string, err error) error {
	return &PersistenceError{
		Op:  op,
		Err: err,
	}
}

func IsPersistenceError(err error) bool {
	var persistenceError *PersistenceError
	return errors.As(err, &persistenceError)
}
