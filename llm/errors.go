package llm

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("llm credentials missing")
	ErrTimeout            = errors.New("llm call timed out")
	ErrRateLimited        = errors.New("llm backend rate limited")
)

type ConfigurationError struct {
	Reason string
}

type TimeoutError struct {
	Operation string
}

type RateLimitError struct {
	Model string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("llm backend not configured: %s", e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrMissingCredentials
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("llm call timed out during %s", e.Operation)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("llm backend rate limited model %s", e.Model)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
