// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrTradeNotFound      = errors.New("trade not found")
	ErrTradeClosed        = errors.New("trade already closed")
	ErrPlanNotFound       = errors.New("exit plan not found")
	ErrCoinNotFound       = errors.New("coin not found")
	ErrRateLimited        = errors.New("rate limited")
	ErrTimeout            = errors.New("operation timed out")
	ErrDataNotFound       = errors.New("data not found")
	ErrDatabaseError      = errors.New("database error")
	ErrConfigInvalid      = errors.New("invalid configuration")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// AuthError represents an authentication or session error.
type AuthError struct {
	Operation string
	Err       error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth error [%s]: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("auth error [%s]", e.Operation)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a new AuthError.
func NewAuthError(operation string, err error) *AuthError {
	return &AuthError{
		Operation: operation,
		Err:       err,
	}
}

// RemoteError represents a failure talking to a remote collaborator
// (the persistent store or the market-data API).
type RemoteError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote error [%s] %s: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("remote error [%s] %s: %s", e.Service, e.Operation, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewRemoteError creates a new RemoteError.
func NewRemoteError(service, operation, message string, err error) *RemoteError {
	return &RemoteError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// MarketDataError represents a classified market-data API failure.
// Kind is one of "rate_limited", "timeout", "fetch" or "unexpected",
// and UserMessage carries the text shown to the user for that class.
type MarketDataError struct {
	Kind        string
	UserMessage string
	Err         error
}

func (e *MarketDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("market data error [%s]: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("market data error [%s]", e.Kind)
}

func (e *MarketDataError) Unwrap() error {
	return e.Err
}

// NewMarketDataError creates a new MarketDataError.
func NewMarketDataError(kind, userMessage string, err error) *MarketDataError {
	return &MarketDataError{
		Kind:        kind,
		UserMessage: userMessage,
		Err:         err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
