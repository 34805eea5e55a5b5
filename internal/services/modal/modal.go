package modal

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/Houeta/market-map/internal/models"
)

// DragThreshold is the horizontal distance a drag must cover to switch sub-views.
const DragThreshold = 50.0

// Subview is one of the two mutually exclusive panes of the overlay.
type Subview string

const (
	SubviewTrend Subview = "trend"
	SubviewStats Subview = "stats"
)

// Direction is the direction of the last sub-view transition.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionForward
	DirectionBackward
)

// StatsStatus describes where the market statistics of the open product are.
type StatsStatus string

const (
	StatsIdle        StatsStatus = "idle"
	StatsLoading     StatsStatus = "loading"
	StatsLoaded      StatsStatus = "loaded"
	StatsUnavailable StatsStatus = "unavailable"
)

// PricePoint is one point of the trend chart.
type PricePoint struct {
	Date  string
	Price int64
}

// trendSeries is illustrative; it is not derived from fetched statistics.
var trendSeries = []PricePoint{
	{Date: "Jan 15", Price: 450000},
	{Date: "Jan 30", Price: 420000},
	{Date: "Feb 15", Price: 480000},
	{Date: "Feb 28", Price: 460000},
	{Date: "Mar 15", Price: 520000},
	{Date: "Mar 30", Price: 490000},
}

// TrendSeries returns the price series drawn in the trend sub-view.
func TrendSeries() []PricePoint {
	return slices.Clone(trendSeries)
}

// StatsFetcher loads the market statistics of a product.
type StatsFetcher interface {
	ProductStats(ctx context.Context, id string) (models.MarketStats, error)
}

// Snapshot is the renderable state of the overlay.
type Snapshot struct {
	Open        bool
	Item        models.DisplayItem
	Subview     Subview
	Direction   Direction
	StatsStatus StatsStatus
	Stats       *models.MarketStats
}

// Modal is the price-detail overlay.
type Modal struct {
	log   *slog.Logger
	stats StatsFetcher

	mu        sync.Mutex
	open      bool
	item      models.DisplayItem
	subview   Subview
	direction Direction
	status    StatsStatus
	data      *models.MarketStats
	// token identifies the latest open; stats for any other token are stale.
	token uint64
}

// New creates a closed overlay.
func New(log *slog.Logger, stats StatsFetcher) *Modal {
	return &Modal{log: log, stats: stats, subview: SubviewTrend, status: StatsIdle}
}

// Open shows item on the trend sub-view and fetches its statistics once.
// If the fetch fails the overlay stays open without statistics.
func (m *Modal) Open(ctx context.Context, item models.DisplayItem) {
	const opn = "modal.Open"
	log := m.log.With("op", opn, "product_id", item.ID)

	m.mu.Lock()
	m.token++
	token := m.token
	m.open = true
	m.item = item
	m.resetLocked()
	m.status = StatsLoading
	m.mu.Unlock()

	stats, err := m.stats.ProductStats(ctx, item.ID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if token != m.token {
		log.DebugContext(ctx, "Discarding stats of a superseded open")
		return
	}

	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch market stats", "error", err)
		m.status = StatsUnavailable
		return
	}

	m.data = &stats
	m.status = StatsLoaded
}

// Close hides the overlay and discards its statistics.
func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token++
	m.open = false
	m.item = models.DisplayItem{}
	m.resetLocked()
}

// ShowStats switches to the stats sub-view. It reports whether anything changed.
func (m *Modal) ShowStats() bool {
	return m.switchTo(SubviewStats)
}

// ShowTrend switches to the trend sub-view. It reports whether anything changed.
func (m *Modal) ShowTrend() bool {
	return m.switchTo(SubviewTrend)
}

// Drag applies a horizontal drag of dx. Dragging left reveals the stats,
// dragging right goes back to the trend; there is no wraparound.
func (m *Modal) Drag(dx float64) bool {
	if math.Abs(dx) < DragThreshold {
		return false
	}

	if dx < 0 {
		return m.ShowStats()
	}

	return m.ShowTrend()
}

// Snapshot returns the current overlay state.
func (m *Modal) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Open:        m.open,
		Item:        m.item,
		Subview:     m.subview,
		Direction:   m.direction,
		StatsStatus: m.status,
	}
	if m.data != nil {
		stats := *m.data
		snap.Stats = &stats
	}

	return snap
}

func (m *Modal) switchTo(target Subview) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open || m.subview == target {
		return false
	}

	m.subview = target
	if target == SubviewStats {
		m.direction = DirectionForward
	} else {
		m.direction = DirectionBackward
	}

	return true
}

func (m *Modal) resetLocked() {
	m.subview = SubviewTrend
	m.direction = DirectionNone
	m.status = StatsIdle
	m.data = nil
}
