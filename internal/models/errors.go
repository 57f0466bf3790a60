package models

import (
	"errors"
	"fmt"
)

// ErrModelNotLoaded is returned when no classifier artifact is available.
var ErrModelNotLoaded = errors.New("model not loaded")

// ValidationError marks caller input that never reaches the model.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// PredictionError wraps a failure inside classifier invocation.
type PredictionError struct {
	Cause error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Cause)
}

func (e *PredictionError) Unwrap() error { return e.Cause }

// PersistenceError wraps a repository failure.
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }
