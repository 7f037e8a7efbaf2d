// Package apitest runs an in-process fake of the PSC backend for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// Recorded is one request the server received.
type Recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Authorization returns the Authorization header of the request.
func (r Recorded) Authorization() string {
	return r.Header.Get("Authorization")
}

// JSON decodes the request body into v.
func (r Recorded) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Server is a chi-routed httptest server that records every request.
type Server struct {
	URL string

	t      testing.TB
	srv    *httptest.Server
	router chi.Router
	secret []byte

	mu       sync.Mutex
	requests []Recorded
}

// New starts a server bound to IPv4 loopback so tests work in sandboxes
// that forbid IPv6 listeners. It is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("unable to start test server: %v", err)
	}

	s := &Server{
		t:      t,
		router: chi.NewRouter(),
		secret: []byte("apitest-signing-key"),
	}
	s.router.Use(middleware.Recoverer, s.record)

	s.srv = &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: s.router},
	}
	s.srv.Start()
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// Handle registers h for method and a chi pattern such as /api/attempts/{id}/.
func (s *Server) Handle(method, pattern string, h http.HandlerFunc) {
	s.router.MethodFunc(method, pattern, h)
}

// JSON registers a handler that always answers status with body.
// A nil body sends an empty response.
func (s *Server) JSON(method, pattern string, status int, body any) {
	s.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Raw registers a handler that answers with a literal body.
func (s *Server) Raw(method, pattern string, status int, contentType, body string) {
	s.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// Sequence registers handlers that answer successive calls in order.
// Calls beyond the last handler reuse it.
func (s *Server) Sequence(method, pattern string, handlers ...http.HandlerFunc) {
	if len(handlers) == 0 {
		panic("apitest: Sequence needs at least one handler")
	}
	var mu sync.Mutex
	n := 0
	s.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		i := n
		if n < len(handlers)-1 {
			n++
		}
		mu.Unlock()
		handlers[i](w, r)
	})
}

// Requests returns every recorded request in arrival order.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the recorded requests matching method and path.
func (s *Server) RequestsTo(method, path string) []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	return len(s.RequestsTo(method, path))
}

// Last returns the most recent request, failing the test if there is none.
func (s *Server) Last() Recorded {
	s.t.Helper()
	reqs := s.Requests()
	if len(reqs) == 0 {
		s.t.Fatalf("apitest: no requests recorded")
	}
	return reqs[len(reqs)-1]
}

// IssueToken mints an HS256 JWT for subject that expires after ttl.
func (s *Server) IssueToken(subject string, ttl time.Duration) string {
	s.t.Helper()
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}).SignedString(s.secret)
	if err != nil {
		s.t.Fatalf("apitest: sign token: %v", err)
	}
	return token
}

// VerifyToken checks a token minted by IssueToken and returns its subject.
func (s *Server) VerifyToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// BearerToken extracts the bearer credential from r.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// WriteJSON writes v as a JSON response. A nil v writes no body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RequireBearer wraps h so requests without the expected token get 401
// with a DRF-style detail payload.
func RequireBearer(token string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if BearerToken(r) != token {
			WriteJSON(w, http.StatusUnauthorized, map[string]any{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}
		h(w, r)
	}
}
