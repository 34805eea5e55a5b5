package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/Houeta/market-map/internal/models"
)

// WatchlistRecord is the storage record the watchlist is persisted under.
const WatchlistRecord = "market-map-watchlist"

// watchlistPayload is the persisted shape of the watchlist.
type watchlistPayload struct {
	Items []models.WatchlistItem `json:"items"`
}

// WatchlistStore holds the favourite products, newest first, at most one per id.
type WatchlistStore struct {
	mu        sync.RWMutex
	items     []models.WatchlistItem
	record    record[watchlistPayload]
	listeners listeners[[]models.WatchlistItem]
	log       *slog.Logger
}

// NewWatchlistStore restores the watchlist saved under recordName.
func NewWatchlistStore(ctx context.Context, log *slog.Logger, storage Storage, recordName string) *WatchlistStore {
	rec := record[watchlistPayload]{name: recordName, storage: storage, log: log}

	payload, _ := rec.load(ctx)

	return &WatchlistStore{items: dedupByID(payload.Items), record: rec, log: log}
}

// Items returns the watchlist newest first.
func (w *WatchlistStore) Items() []models.WatchlistItem {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return slices.Clone(w.items)
}

// Len returns the number of watched items.
func (w *WatchlistStore) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.items)
}

// Contains reports whether an item with id is watched.
func (w *WatchlistStore) Contains(id string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.indexOf(id) >= 0
}

// Toggle removes the item with the same id if present, otherwise prepends item.
// It reports whether the item is watched afterwards.
func (w *WatchlistStore) Toggle(ctx context.Context, item models.WatchlistItem) bool {
	var added bool

	w.update(ctx, func(items []models.WatchlistItem) []models.WatchlistItem {
		if idx := indexOf(items, item.ID); idx >= 0 {
			return slices.Delete(slices.Clone(items), idx, idx+1)
		}
		added = true

		return append([]models.WatchlistItem{item}, items...)
	})

	w.log.DebugContext(ctx, "Watchlist toggled", "id", item.ID, "added", added)

	return added
}

// Clear empties the watchlist.
func (w *WatchlistStore) Clear(ctx context.Context) {
	w.update(ctx, func([]models.WatchlistItem) []models.WatchlistItem {
		return []models.WatchlistItem{}
	})
}

// Subscribe registers fn to be called with the new item list after every change.
func (w *WatchlistStore) Subscribe(fn func([]models.WatchlistItem)) (unsubscribe func()) {
	return w.listeners.add(fn)
}

func (w *WatchlistStore) update(ctx context.Context, mutate func([]models.WatchlistItem) []models.WatchlistItem) {
	w.mu.Lock()
	w.items = mutate(w.items)
	snap := slices.Clone(w.items)
	w.record.save(ctx, watchlistPayload{Items: snap})
	w.mu.Unlock()

	w.listeners.notify(snap)
}

func (w *WatchlistStore) indexOf(id string) int {
	return indexOf(w.items, id)
}

func indexOf(items []models.WatchlistItem, id string) int {
	return slices.IndexFunc(items, func(i models.WatchlistItem) bool { return i.ID == id })
}

// dedupByID keeps the first (newest) entry for every id.
func dedupByID(items []models.WatchlistItem) []models.WatchlistItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.WatchlistItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}

	return out
}
