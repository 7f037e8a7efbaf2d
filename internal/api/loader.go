package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// Status is the lifecycle of a loader.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	msgUnexpected = "An unexpected error occurred."
	msgNoEndpoint = "No endpoint provided."
)

// ErrNoEndpoint is returned by loaders built without a path.
var ErrNoEndpoint = errors.New(msgNoEndpoint)

// errorMessage is the user-facing text for err.
func errorMessage(err error) string {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Message
	}
	if errors.Is(err, ErrNoEndpoint) {
		return msgNoEndpoint
	}
	return msgUnexpected
}

// LoaderState is a snapshot of a Loader.
type LoaderState[T any] struct {
	Data   *T
	Status Status
	Error  string
}

// Loader runs one endpoint and remembers the outcome of the latest call.
type Loader[T any] struct {
	doer Doer
	path string

	mu    sync.RWMutex
	state LoaderState[T]
}

// NewLoader creates an idle loader for path.
func NewLoader[T any](d Doer, path string) *Loader[T] {
	return &Loader[T]{doer: d, path: path}
}

// Execute sends a POST with body when body is non-nil, a GET otherwise.
func (l *Loader[T]) Execute(ctx context.Context, body any) (*T, error) {
	if l.path == "" {
		l.set(LoaderState[T]{Status: StatusError, Error: msgNoEndpoint})
		return nil, ErrNoEndpoint
	}

	l.set(LoaderState[T]{Status: StatusLoading})

	req := &Request{Method: http.MethodGet, Path: l.path}
	if body != nil {
		req.Method = http.MethodPost
		req.Body = body
	}

	data, err := Fetch[T](ctx, l.doer, req)
	if err != nil {
		l.set(LoaderState[T]{Status: StatusError, Error: errorMessage(err)})
		return nil, err
	}

	l.set(LoaderState[T]{Data: data, Status: StatusSuccess})
	return data, nil
}

// State returns the current snapshot.
func (l *Loader[T]) State() LoaderState[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Loader[T]) set(s LoaderState[T]) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// PageState is a snapshot of a PageLoader. Only the results and the total
// count of the envelope are kept.
type PageState[T any] struct {
	Data   []T
	Count  int
	Status Status
	Error  string
}

// PageLoader runs a list endpoint and unwraps its Page envelope.
type PageLoader[T any] struct {
	doer Doer
	path string

	mu    sync.RWMutex
	state PageState[T]
}

// NewPageLoader creates an idle page loader for path.
func NewPageLoader[T any](d Doer, path string) *PageLoader[T] {
	return &PageLoader[T]{doer: d, path: path}
}

// Execute fetches path followed by query, which is either empty or a
// string produced by BuildQuery.
func (l *PageLoader[T]) Execute(ctx context.Context, query string) (*Page[T], error) {
	if l.path == "" {
		l.set(PageState[T]{Status: StatusError, Error: msgNoEndpoint})
		return nil, ErrNoEndpoint
	}

	l.set(PageState[T]{Status: StatusLoading})

	page, err := Fetch[Page[T]](ctx, l.doer, Get(l.path+query))
	if err != nil {
		l.set(PageState[T]{Status: StatusError, Error: errorMessage(err)})
		return nil, err
	}
	if page == nil {
		page = &Page[T]{}
	}

	l.set(PageState[T]{Data: page.Results, Count: page.Count, Status: StatusSuccess})
	return page, nil
}

// State returns the current snapshot.
func (l *PageLoader[T]) State() PageState[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *PageLoader[T]) set(s PageState[T]) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}
