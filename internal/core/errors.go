package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrCacheMiss is returned by a ResponseCache when no live entry exists for a key
var ErrCacheMiss = errors.New("cache miss")

// ServiceError is a status-bearing failure reported by a generation provider.
// StatusCode 503 marks the distinguished transient overload.
type ServiceError struct {
	Provider   string
	Model      string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s model %s: status %d", e.Provider, e.Model, e.StatusCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Unavailable reports whether the error signals a transient overload
func (e *ServiceError) Unavailable() bool {
	return e.StatusCode == http.StatusServiceUnavailable
}

// IsServiceError checks if the error is a ServiceError
func IsServiceError(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr)
}

// IsUnavailable checks if the error is a transient overload from the provider
func IsUnavailable(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Unavailable()
}

// FatalError is a non-retryable generation failure that aborts the run
type FatalError struct {
	Reason string
	Err    error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fatal: %s: %v", e.Reason, e.Err)
	}
	return "fatal: " + e.Reason
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatalError checks if the error is a FatalError
func IsFatalError(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}

// ConfigError reports caller configuration problems detected before any network activity
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + strings.Join(e.Problems, "; ")
}

// IsConfigError checks if the error is a ConfigError
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// SourceError is a mail source connectivity or authentication failure
type SourceError struct {
	Server string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("mail source %s: %v", e.Server, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsSourceError checks if the error is a SourceError
func IsSourceError(err error) bool {
	var srcErr *SourceError
	return errors.As(err, &srcErr)
}

// FailureKind tells the generation driver how to react to a generator error
type FailureKind int

const (
	// FailureTransient is retried with backoff on the same model
	FailureTransient FailureKind = iota
	// FailureSkipModel abandons the current model and moves to the next candidate
	FailureSkipModel
	// FailureFatal aborts the batch and the run
	FailureFatal
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransient:
		return "transient"
	case FailureSkipModel:
		return "skip_model"
	case FailureFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ClassifyFailure maps a generator error onto a FailureKind
func ClassifyFailure(err error) FailureKind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FailureFatal
	}
	if IsFatalError(err) {
		return FailureFatal
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		switch {
		case svcErr.Unavailable():
			return FailureTransient
		case svcErr.StatusCode == http.StatusUnauthorized, svcErr.StatusCode == http.StatusForbidden:
			return FailureFatal
		case svcErr.StatusCode >= 500:
			return FailureFatal
		}
	}

	return FailureSkipModel
}
