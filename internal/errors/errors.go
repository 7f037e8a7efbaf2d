package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-002"
	ErrCodeConfigKey      ErrorCode = "CONFIG-003"

	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeNotLoggedIn        ErrorCode = "AUTH-001"
	ErrCodeSessionExpired     ErrorCode = "AUTH-002"
	ErrCodeForbidden          ErrorCode = "AUTH-003"
	ErrCodeCredentialsMissing ErrorCode = "AUTH-004"
	ErrCodeCredentialsStore   ErrorCode = "AUTH-005"

	// API errors (API-001 to API-099)
	ErrCodeAPINetwork    ErrorCode = "API-001"
	ErrCodeAPIRequest    ErrorCode = "API-002"
	ErrCodeAPINotFound   ErrorCode = "API-003"
	ErrCodeAPIServer     ErrorCode = "API-004"
	ErrCodeAPIRateLimit  ErrorCode = "API-005"
	ErrCodeAPIValidation ErrorCode = "API-006"
	ErrCodeAPISchema     ErrorCode = "API-007"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound   ErrorCode = "IO-001"
	ErrCodeFileReadFailed ErrorCode = "IO-002"
	ErrCodeFileUnmarshal  ErrorCode = "IO-005"
)

const docsBase = "https://github.com/pscapp/psc"

// PscError represents an enhanced error with code, suggestions, and documentation
type PscError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *PscError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil && e.Cause.Error() != e.Message {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PscError) Unwrap() error {
	return e.Cause
}

// New creates a new PscError
func New(code ErrorCode, message string) *PscError {
	return &PscError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PscError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *PscError {
	return &PscError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PscError) WithSuggestion(suggestion string) *PscError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PscError) WithSuggestions(suggestions ...string) *PscError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *PscError) WithDocs(url string) *PscError {
	e.DocsURL = url
	return e
}

// StatusCoder is implemented by errors that carry an HTTP status.
// A zero status means the request never produced a response.
type StatusCoder interface {
	error
	HTTPStatus() int
}

// NewNotLoggedInError creates an error for commands that need a session
func NewNotLoggedInError() *PscError {
	return New(ErrCodeNotLoggedIn, "not logged in").
		WithSuggestion("Run 'psc auth login' to sign in with email and password").
		WithSuggestion("Run 'psc auth dev-login --email <email>' against a development backend").
		WithDocs(docsBase + "#authentication")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *PscError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'psc config view' to inspect the effective configuration").
		WithSuggestion("Fix the value with 'psc config set <key> <value>'").
		WithDocs(docsBase + "#configuration")
}

// NewConfigKeyError creates an unknown configuration key error
func NewConfigKeyError(key string) *PscError {
	return New(ErrCodeConfigKey, fmt.Sprintf("unknown configuration key: %s", key)).
		WithSuggestion("Run 'psc config view' to list the supported keys")
}

// NewCredentialsStoreError creates an error for credential persistence failures
func NewCredentialsStoreError(path string, cause error) *PscError {
	return Wrap(ErrCodeCredentialsStore, fmt.Sprintf("cannot access stored credentials: %s", path), cause).
		WithSuggestion("Check the credentials.passphrase setting or PSC_CREDENTIALS_PASSPHRASE").
		WithSuggestion("Run 'psc auth logout' to discard the stored credentials and log in again")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *PscError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *PscError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

// FromAPI decorates an API failure with suggestions chosen by status class.
// Errors that do not carry a status are returned unchanged.
func FromAPI(err error) error {
	if err == nil {
		return nil
	}

	var sc StatusCoder
	if !stderrors.As(err, &sc) {
		return err
	}

	status := sc.HTTPStatus()
	msg := err.Error()

	switch {
	case status == 0:
		return Wrap(ErrCodeAPINetwork, msg, err).
			WithSuggestion("Check that the backend is running and reachable").
			WithSuggestion("Verify api.base_url with 'psc config get api.base_url'")
	case status == http.StatusUnauthorized:
		return Wrap(ErrCodeSessionExpired, msg, err).
			WithSuggestion("Your session has expired or was revoked").
			WithSuggestion("Run 'psc auth login' to sign in again").
			WithDocs(docsBase + "#authentication")
	case status == http.StatusForbidden:
		return Wrap(ErrCodeForbidden, msg, err).
			WithSuggestion("Your account does not have permission for this action")
	case status == http.StatusNotFound:
		return Wrap(ErrCodeAPINotFound, msg, err).
			WithSuggestion("Check the identifier you passed")
	case status == http.StatusTooManyRequests:
		return Wrap(ErrCodeAPIRateLimit, msg, err).
			WithSuggestion("Wait before retrying the request")
	case status == http.StatusBadRequest:
		return Wrap(ErrCodeAPIValidation, msg, err).
			WithSuggestion("Review the values you supplied")
	case status >= 500:
		return Wrap(ErrCodeAPIServer, msg, err).
			WithSuggestion("The server failed to handle the request; try again later")
	default:
		return Wrap(ErrCodeAPIRequest, msg, err)
	}
}
