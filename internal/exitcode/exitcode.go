package exitcode

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"strings"

	"github.com/pscapp/psc/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConfigError indicates an unreadable or invalid configuration
	ConfigError = 3

	// NotFound indicates the backend has no such resource
	NotFound = 4

	// AuthError indicates an authentication or authorization failure
	AuthError = 5

	// NetworkError indicates the backend could not be reached or answered
	// with something unreadable
	NetworkError = 6

	// Interrupted indicates the user cancelled the command
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// usageMarkers are fragments of cobra's argument and flag errors.
var usageMarkers = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"required flag",
	"invalid argument",
	"accepts ",
	"requires at least",
	"flag needs an argument",
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if stderrors.Is(err, context.Canceled) {
		return Interrupted
	}

	var sc errors.StatusCoder
	if stderrors.As(err, &sc) {
		switch status := sc.HTTPStatus(); {
		case status == 0:
			return NetworkError
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return AuthError
		case status == http.StatusNotFound:
			return NotFound
		default:
			return GeneralError
		}
	}

	var pscErr *errors.PscError
	if stderrors.As(err, &pscErr) {
		code := string(pscErr.Code)
		switch {
		case strings.HasPrefix(code, "AUTH-"):
			return AuthError
		case strings.HasPrefix(code, "CONFIG-"):
			return ConfigError
		case pscErr.Code == errors.ErrCodeAPINetwork:
			return NetworkError
		}
	}

	errMsg := strings.ToLower(err.Error())
	for _, marker := range usageMarkers {
		if strings.Contains(errMsg, marker) {
			return UsageError
		}
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ConfigError:
		return "Configuration error"
	case NotFound:
		return "Resource not found"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
