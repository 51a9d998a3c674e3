package models

import (
	"errors"
	"fmt"
	"time"
)

// ElementNotFoundError reports a locator that matched no element.
type ElementNotFoundError struct {
	Selector string
	Err      error
}

func (e *ElementNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("element not found: %s: %v", e.Selector, e.Err)
	}
	return fmt.Sprintf("element not found: %s", e.Selector)
}

func (e *ElementNotFoundError) Unwrap() error { return e.Err }

// TimeoutError reports a wait or navigation that exceeded its deadline.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v: %s", e.Timeout, e.Operation)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// ConfigurationError reports a missing or invalid required setting.
type ConfigurationError struct {
	Name   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration value %s is not set", e.Name)
	}
	return fmt.Sprintf("configuration value %s: %s", e.Name, e.Reason)
}

// AssertionError reports observed page state that differs from the expected state.
type AssertionError struct {
	Subject  string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("expected %s %s", e.Subject, e.Expected)
	}
	return fmt.Sprintf("expected %s %s, got %s", e.Subject, e.Expected, e.Actual)
}

// IsAssertion reports whether err (or anything it wraps) is an AssertionError.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}

// IsTimeout reports whether err (or anything it wraps) is a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsConfiguration reports whether err (or anything it wraps) is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ClassifyError maps an attempt error to its report status.
func ClassifyError(err error) RunStatus {
	switch {
	case err == nil:
		return RunPassed
	case IsAssertion(err):
		return RunFailed
	default:
		return RunBroken
	}
}
