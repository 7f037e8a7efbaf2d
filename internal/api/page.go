package api

import (
	"fmt"
	"net/url"
	"reflect"
)

// Page is the envelope returned by list endpoints.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Query holds list filters. Zero values are omitted; use a pointer to send
// an explicit zero, empty string or false.
type Query map[string]any

// BuildQuery encodes q as "?k=v&..." with keys sorted, or "" if nothing
// remains after dropping unset values.
func BuildQuery(q Query) string {
	values := url.Values{}
	for k, v := range q {
		s, ok := queryValue(v)
		if !ok {
			continue
		}
		values.Add(k, s)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func queryValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		return fmt.Sprint(rv.Elem().Interface()), true
	}
	if rv.IsZero() {
		return "", false
	}
	return fmt.Sprint(v), true
}

// WithQuery appends the encoded query to path.
func WithQuery(path string, q Query) string {
	return path + BuildQuery(q)
}
