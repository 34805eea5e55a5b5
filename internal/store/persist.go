package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/Houeta/market-map/internal/repository"
)

// Storage is the durable local storage the persisted stores write through to.
type Storage interface {
	// LoadRecord returns the payload saved under name or repository.ErrRecordNotFound.
	LoadRecord(ctx context.Context, name string) ([]byte, error)
	// SaveRecord replaces the payload saved under name.
	SaveRecord(ctx context.Context, name string, payload []byte) error
}

// record binds a named storage entry to the Go type it holds.
type record[T any] struct {
	name    string
	storage Storage
	log     *slog.Logger
}

// load reads the record. ok is false when nothing usable was stored, in which
// case the caller starts from its defaults.
func (r record[T]) load(ctx context.Context) (T, bool) {
	var value T

	payload, err := r.storage.LoadRecord(ctx, r.name)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			r.log.ErrorContext(ctx, "Failed to load record", "record", r.name, "error", err)
		}
		return value, false
	}

	if err = json.Unmarshal(payload, &value); err != nil {
		r.log.ErrorContext(ctx, "Stored record is corrupted, starting fresh", "record", r.name, "error", err)
		return value, false
	}

	return value, true
}

// save serializes value and writes it. Failures are logged; the in-memory state stays authoritative.
func (r record[T]) save(ctx context.Context, value T) {
	payload, err := json.Marshal(value)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to encode record", "record", r.name, "error", err)
		return
	}

	if err = r.storage.SaveRecord(ctx, r.name, payload); err != nil {
		r.log.ErrorContext(ctx, "Failed to persist record", "record", r.name, "error", err)
	}
}

// listeners is a set of change callbacks.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

// add registers fn and returns a function that unregisters it.
func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

// notify calls every registered callback with v. It must be called without the store lock held.
func (l *listeners[T]) notify(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
