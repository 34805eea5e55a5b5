package store

import (
	"strings"
	"sync"
)

// SearchStore holds the current search query. It lives in memory only.
type SearchStore struct {
	mu        sync.RWMutex
	query     string
	listeners listeners[string]
}

// NewSearchStore returns a store with an empty query.
func NewSearchStore() *SearchStore {
	return &SearchStore{}
}

// Query returns the current query.
func (s *SearchStore) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.query
}

// SetQuery replaces the query. Subscribers are only notified when it actually changes.
func (s *SearchStore) SetQuery(query string) {
	s.set(strings.TrimSpace(query))
}

// Clear resets the query.
func (s *SearchStore) Clear() {
	s.set("")
}

// Subscribe registers fn to be called with the new query after every change.
func (s *SearchStore) Subscribe(fn func(string)) (unsubscribe func()) {
	return s.listeners.add(fn)
}

func (s *SearchStore) set(query string) {
	s.mu.Lock()
	changed := s.query != query
	s.query = query
	s.mu.Unlock()

	if changed {
		s.listeners.notify(query)
	}
}
