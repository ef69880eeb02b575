package binding

import (
	"errors"
	"fmt"
)

// Standard binding errors
var (
	// ErrNotInitialized is returned when a data operation runs against a
	// binding whose shared handle was never opened.
	ErrNotInitialized = errors.New("binding is not initialized")

	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrConnectionFailed is returned when a connection attempt fails.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidConfiguration is returned when the configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrBindingNotFound is returned when a binding is not registered.
	ErrBindingNotFound = errors.New("binding not found")
)

// BindingError wraps a binding-specific failure with the binding name and
// the operation that failed. It gives every binding a consistent error
// shape before the status-code shim collapses it to StatusError.
type BindingError struct {
	Binding   string
	Operation string
	Cause     error
}

// Error implements the error interface.
func (e *BindingError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Binding, e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *BindingError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error.
func (e *BindingError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// WrapError wraps an error with binding context. If the error is already a
// BindingError it is returned as-is.
func WrapError(bindingName, operation string, err error) error {
	if err == nil {
		return nil
	}

	var bErr *BindingError
	if errors.As(err, &bErr) {
		return err
	}

	return &BindingError{Binding: bindingName, Operation: operation, Cause: err}
}

// ConnectionError is returned when opening the shared handle fails.
type ConnectionError struct {
	Binding string
	Target  string
	Cause   error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect %s binding to %s: %v", e.Binding, e.Target, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is ErrConnectionFailed.
func (e *ConnectionError) Is(target error) bool {
	if errors.Is(target, ErrConnectionFailed) {
		return true
	}
	return errors.Is(e.Cause, target)
}

// NewConnectionError creates a new ConnectionError.
func NewConnectionError(bindingName, target string, cause error) *ConnectionError {
	return &ConnectionError{Binding: bindingName, Target: target, Cause: cause}
}

// ConfigurationError is returned when a binding's configuration cannot be
// used. These are fatal at init time: no per-call recovery is possible.
type ConfigurationError struct {
	Binding string
	Field   string
	Reason  string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration for %s binding: field '%s': %s", e.Binding, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration for %s binding: %s", e.Binding, e.Reason)
}

// Is checks if the error is ErrInvalidConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return errors.Is(target, ErrInvalidConfiguration)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(bindingName, field, reason string) *ConfigurationError {
	return &ConfigurationError{Binding: bindingName, Field: field, Reason: reason}
}

// IsConfigurationError checks if an error is a configuration error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsConnectionError checks if an error is a connection error.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}
