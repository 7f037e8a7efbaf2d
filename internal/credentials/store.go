// Package credentials holds the access/refresh credential pair for the
// current session and optionally persists it to an encrypted file.
package credentials

import (
	"sync"
)

// Pair is the access/refresh credential pair issued by the backend.
//
// An empty Refresh means no refresh credential is held and silent renewal
// is not possible.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// HasRefresh reports whether the pair carries a refresh credential.
func (p Pair) HasRefresh() bool {
	return p.Refresh != ""
}

// Observer is notified after every change to a Store.
//
// live is false when the store was cleared. Observers run synchronously on
// the goroutine that mutated the store. Changes are delivered one at a time
// in the order they were applied, so the last notification always matches
// the pair in memory. Observers may read the store but must not write it.
type Observer func(pair Pair, live bool)

// Option configures a Store.
type Option func(*Store)

// WithObserver registers an observer for store changes.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithPair seeds the store with an existing pair, e.g. one loaded from disk.
// Observers are not notified for the seed.
func WithPair(p Pair) Option {
	return func(s *Store) {
		if p.Access != "" {
			pair := p
			s.pair = &pair
		}
	}
}

// Store holds the current credential pair in process memory.
//
// It is safe for concurrent use. Writes replace the pair under a single
// lock so readers never observe an access credential from one pair and a
// refresh credential from another.
type Store struct {
	// writeMu serialises a change with its notification.
	writeMu sync.Mutex

	mu        sync.RWMutex
	pair      *Pair
	observers []Observer
}

// NewStore creates an empty credential store.
func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set replaces the access credential and, when refresh is non-empty, the
// refresh credential. An empty refresh keeps the refresh credential already
// held, which matches backends that do not rotate refresh tokens.
func (s *Store) Set(access, refresh string) {
	if access == "" {
		s.Clear()
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := Pair{Access: access, Refresh: refresh}
	if refresh == "" && s.pair != nil {
		next.Refresh = s.pair.Refresh
	}
	s.pair = &next
	s.mu.Unlock()

	s.notify(next, true)
}

// Access returns the current access credential.
func (s *Store) Access() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pair == nil {
		return "", false
	}
	return s.pair.Access, true
}

// RefreshToken returns the current refresh credential.
func (s *Store) RefreshToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pair == nil || s.pair.Refresh == "" {
		return "", false
	}
	return s.pair.Refresh, true
}

// Pair returns a snapshot of both credentials taken under one read lock.
func (s *Store) Pair() (Pair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pair == nil {
		return Pair{}, false
	}
	return *s.pair, true
}

// Clear drops both credentials.
func (s *Store) Clear() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.pair = nil
	s.mu.Unlock()

	s.notify(Pair{}, false)
}

func (s *Store) notify(p Pair, live bool) {
	for _, o := range s.observers {
		o(p, live)
	}
}
