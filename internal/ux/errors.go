package ux

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/pscapp/psc/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds recovery hints. API failures become coded errors with
// suggestions chosen by status; coded errors pass through untouched.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var pscErr *errors.PscError
	if stderrors.As(err, &pscErr) {
		return err
	}

	var sc errors.StatusCoder
	if stderrors.As(err, &sc) {
		return errors.FromAPI(err)
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check the permissions of ~/.psc and the configured credentials.path")
	}

	if strings.Contains(errMsg, "no such file or directory") && strings.Contains(errMsg, ".yaml") {
		return NewErrorWithSuggestion(err,
			"Check the --config path or unset PSC_CONFIG to use ~/.psc/config.yaml")
	}

	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host") {
		return NewErrorWithSuggestion(err,
			"Check that the backend is running and api.base_url points at it")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
