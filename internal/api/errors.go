package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies how a request failed.
type Kind int

const (
	// KindHTTP is a non-2xx response.
	KindHTTP Kind = iota
	// KindNetwork means the transport could not complete the exchange.
	KindNetwork
	// KindParse is a 2xx response whose body is not valid JSON.
	KindParse
	// KindInvalid is a request that could not be built.
	KindInvalid
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

const (
	msgNetwork   = "Network request failed"
	msgMalformed = "Malformed response from server"
)

// Error is the single error type returned by every failure path of the client.
type Error struct {
	// Message is safe to show to the user verbatim.
	Message string
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Details is the decoded error payload, if the server sent one.
	Details any
	Kind    Kind
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the transport or decoding error behind e, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the response status, 0 if there was none.
func (e *Error) HTTPStatus() int {
	return e.StatusCode
}

// IsUnauthorized reports whether the server rejected the credential.
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsNetwork reports whether e belongs to the network-failure class.
// Malformed success bodies count as network failures.
func (e *Error) IsNetwork() bool {
	return e.Kind == KindNetwork || e.Kind == KindParse
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err carries a 401 response.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.IsUnauthorized()
}

// IsNetwork reports whether err is a network-class failure.
func IsNetwork(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.IsNetwork()
}

// messageRule extracts a message from a decoded error object.
// An empty result passes to the next rule.
type messageRule func(obj map[string]any) string

// messageRules are tried in order; the first non-empty message wins.
var messageRules = []messageRule{
	stringField("detail"),
	stringField("message"),
	nonFieldErrors,
	fieldErrors,
}

func stringField(key string) messageRule {
	return func(obj map[string]any) string {
		s, _ := obj[key].(string)
		return s
	}
}

func nonFieldErrors(obj map[string]any) string {
	items, ok := obj["non_field_errors"].([]any)
	if !ok {
		return ""
	}
	return strings.Join(flatten(items), " ")
}

// fieldErrors flattens {"field": ["msg", ...]} in sorted key order.
func fieldErrors(obj map[string]any) string {
	fields, ok := obj["errors"].(map[string]any)
	if !ok {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msgs []string
	for _, k := range keys {
		switch v := fields[k].(type) {
		case []any:
			msgs = append(msgs, flatten(v)...)
		case string:
			if v != "" {
				msgs = append(msgs, v)
			}
		}
	}
	return strings.Join(msgs, ", ")
}

func flatten(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
		case string:
			if v != "" {
				out = append(out, v)
			}
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}

// Normalize converts a decoded error payload and status into an *Error.
// It is pure: the same inputs always produce the same message.
func Normalize(payload any, status int) *Error {
	e := &Error{
		Message:    fmt.Sprintf("Request failed with status %d", status),
		StatusCode: status,
		Details:    payload,
		Kind:       KindHTTP,
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return e
	}

	for _, rule := range messageRules {
		if msg := rule(obj); msg != "" {
			e.Message = msg
			break
		}
	}
	return e
}

// NormalizeBody decodes raw as JSON and normalizes it. Empty or
// undecodable bodies fall back to the status-only message.
func NormalizeBody(raw []byte, status int) *Error {
	var payload any
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			payload = nil
		}
	}
	return Normalize(payload, status)
}

func networkError(cause error) *Error {
	return &Error{Message: msgNetwork, Kind: KindNetwork, Cause: cause}
}

func parseError(raw []byte, cause error) *Error {
	return &Error{Message: msgMalformed, Kind: KindParse, Details: string(raw), Cause: cause}
}

func invalidRequest(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Kind: KindInvalid}
}
