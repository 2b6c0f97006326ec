package usecase

import (
	"errors"
	"fmt"
)

// Error definitions for the classification usecases
var (
	ErrModelNotReady   = errors.New("model not ready")
	ErrInferenceFailed = errors.New("inference failed")
)

// ErrTokenMissing is the configuration failure recorded when the model has to
// be downloaded but no hub credential is configured.
var ErrTokenMissing = &ConfigurationError{Message: "HF_TOKEN not set and model not cached"}

// ConfigurationError means the model cannot be loaded with the current configuration
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// LoadError wraps an I/O, network or runtime failure during model load
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
