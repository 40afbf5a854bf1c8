package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// StoreError represents a storage-related error
type StoreError struct {
	Operation string
	Err       error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Operation, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}

// PipelineError represents a report-processing pipeline error
type PipelineError struct {
	Source string
	Stage  string
	Err    error
}

func (e PipelineError) Error() string {
	return fmt.Sprintf("pipeline error in %s at stage %s: %v", e.Source, e.Stage, e.Err)
}

func (e PipelineError) Unwrap() error {
	return e.Err
}

// ModelError represents a classification-model load or predict error.
// Callers treat it as advisory: classification always falls back to rules.
type ModelError struct {
	Path string
	Err  error
}

func (e ModelError) Error() string {
	return fmt.Sprintf("model error for %s: %v", e.Path, e.Err)
}

func (e ModelError) Unwrap() error {
	return e.Err
}
