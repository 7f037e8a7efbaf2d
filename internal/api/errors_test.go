package api

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		status  int
		want    string
	}{
		{
			name: "detail wins over everything",
			payload: map[string]any{
				"detail":           "Authentication credentials were not provided.",
				"message":          "ignored",
				"non_field_errors": []any{"ignored"},
				"errors":           map[string]any{"email": []any{"ignored"}},
			},
			status: 401,
			want:   "Authentication credentials were not provided.",
		},
		{
			name:    "message when no detail",
			payload: map[string]any{"message": "Quota exceeded", "non_field_errors": []any{"ignored"}},
			status:  429,
			want:    "Quota exceeded",
		},
		{
			name:    "non_field_errors joined with a space",
			payload: map[string]any{"non_field_errors": []any{"Unable to log in.", "Check your password."}},
			status:  400,
			want:    "Unable to log in. Check your password.",
		},
		{
			name: "errors mapping flattened in key order",
			payload: map[string]any{"errors": map[string]any{
				"password": []any{"Too short."},
				"email":    []any{"Enter a valid email.", "Already taken."},
			}},
			status: 400,
			want:   "Enter a valid email., Already taken., Too short.",
		},
		{
			name:    "empty detail falls through",
			payload: map[string]any{"detail": "", "message": "fallback message"},
			status:  400,
			want:    "fallback message",
		},
		{
			name:    "non-string detail falls through",
			payload: map[string]any{"detail": []any{"x"}},
			status:  400,
			want:    "Request failed with status 400",
		},
		{
			name:    "empty non_field_errors falls through",
			payload: map[string]any{"non_field_errors": []any{}, "errors": map[string]any{"title": []any{"Required."}}},
			status:  400,
			want:    "Required.",
		},
		{
			name:    "unrecognised object",
			payload: map[string]any{"email": []any{"This field is required."}},
			status:  400,
			want:    "Request failed with status 400",
		},
		{
			name:    "array payload",
			payload: []any{"nope"},
			status:  500,
			want:    "Request failed with status 500",
		},
		{
			name:    "scalar payload",
			payload: "Bad Gateway",
			status:  502,
			want:    "Request failed with status 502",
		},
		{
			name:    "nil payload",
			payload: nil,
			status:  503,
			want:    "Request failed with status 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.payload, tt.status)

			assert.Equal(t, tt.want, got.Message)
			assert.Equal(t, tt.status, got.StatusCode)
			assert.Equal(t, KindHTTP, got.Kind)
			assert.Equal(t, tt.payload, got.Details)
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	payload := map[string]any{"errors": map[string]any{
		"c": []any{"third"},
		"a": []any{"first"},
		"b": []any{"second"},
	}}

	first := Normalize(payload, 400).Message
	for i := 0; i < 50; i++ {
		require.Equal(t, first, Normalize(payload, 400).Message)
	}
	assert.Equal(t, "first, second, third", first)
}

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		status int
		want   string
	}{
		{"json detail", `{"detail":"Not found."}`, 404, "Not found."},
		{"empty body", ``, 500, "Request failed with status 500"},
		{"whitespace body", "  \n", 502, "Request failed with status 502"},
		{"html body", `<html>Bad Gateway</html>`, 502, "Request failed with status 502"},
		{"truncated json", `{"detail":"x`, 500, "Request failed with status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeBody([]byte(tt.raw), tt.status)
			assert.Equal(t, tt.want, got.Message)
			assert.Equal(t, tt.status, got.StatusCode)
		})
	}
}

func TestError_Classification(t *testing.T) {
	unauthorized := Normalize(map[string]any{"detail": "expired"}, 401)
	assert.True(t, unauthorized.IsUnauthorized())
	assert.False(t, unauthorized.IsNetwork())
	assert.Equal(t, 401, unauthorized.HTTPStatus())

	network := networkError(fmt.Errorf("dial tcp: connection refused"))
	assert.True(t, network.IsNetwork())
	assert.Equal(t, 0, network.HTTPStatus())
	assert.Equal(t, "Network request failed", network.Error())
	assert.EqualError(t, network.Unwrap(), "dial tcp: connection refused")

	parse := parseError([]byte("<html>"), nil)
	assert.True(t, parse.IsNetwork(), "malformed bodies are network-class")
	assert.Equal(t, KindParse, parse.Kind)
	assert.Equal(t, 0, parse.StatusCode)
}

func TestErrorHelpers(t *testing.T) {
	wrapped := fmt.Errorf("load profile: %w", Normalize(nil, 401))

	apiErr, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.True(t, IsUnauthorized(wrapped))
	assert.False(t, IsNetwork(wrapped))

	assert.True(t, IsNetwork(fmt.Errorf("x: %w", networkError(nil))))

	_, ok = AsError(fmt.Errorf("plain"))
	assert.False(t, ok)
	assert.False(t, IsUnauthorized(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "http", KindHTTP.String())
	assert.Equal(t, "network", KindNetwork.String())
	assert.Equal(t, "parse", KindParse.String())
	assert.Equal(t, "invalid", KindInvalid.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
