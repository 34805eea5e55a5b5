package modal_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Houeta/market-map/internal/models"
	"github.com/Houeta/market-map/internal/services/modal"
	"github.com/Houeta/market-map/test/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	rice  = models.DisplayItem{ID: "rice", Name: "Rice 50kg", Price: decimal.NewFromInt(110), Delta: decimal.NewFromInt(10)}
	beans = models.DisplayItem{ID: "beans", Name: "Beans", Price: decimal.NewFromInt(90), Delta: decimal.NewFromInt(-10)}

	riceStats = models.MarketStats{HighestPrice: 120, LowestPrice: 95, AveragePrice: 108, SimilarCount: 3}
)

func newModal(t *testing.T) (*modal.Modal, *mocks.StatsFetcher) {
	t.Helper()

	fetcher := mocks.NewStatsFetcher(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return modal.New(logger, fetcher), fetcher
}

func TestModal_Closed(t *testing.T) {
	m, _ := newModal(t)

	snap := m.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, modal.SubviewTrend, snap.Subview)
	assert.Equal(t, modal.StatsIdle, snap.StatsStatus)

	// Transitions need an open overlay.
	assert.False(t, m.ShowStats())
	assert.False(t, m.Drag(-200))
}

func TestModal_Open(t *testing.T) {
	t.Run("loads stats", func(t *testing.T) {
		m, fetcher := newModal(t)
		fetcher.On("ProductStats", mock.Anything, "rice").Return(riceStats, nil).Once()

		m.Open(context.Background(), rice)

		snap := m.Snapshot()
		assert.True(t, snap.Open)
		assert.Equal(t, rice, snap.Item)
		assert.Equal(t, modal.SubviewTrend, snap.Subview)
		assert.Equal(t, modal.StatsLoaded, snap.StatsStatus)
		require.NotNil(t, snap.Stats)
		assert.Equal(t, riceStats, *snap.Stats)
	})

	t.Run("shows loading while the fetch is in flight", func(t *testing.T) {
		m, fetcher := newModal(t)
		started := make(chan struct{})
		release := make(chan struct{})
		fetcher.On("ProductStats", mock.Anything, "rice").
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(riceStats, nil).Once()

		done := make(chan struct{})
		go func() {
			defer close(done)
			m.Open(context.Background(), rice)
		}()

		<-started
		assert.Equal(t, modal.StatsLoading, m.Snapshot().StatsStatus)
		close(release)
		<-done
		assert.Equal(t, modal.StatsLoaded, m.Snapshot().StatsStatus)
	})

	t.Run("fetch failure leaves no data", func(t *testing.T) {
		m, fetcher := newModal(t)
		fetcher.On("ProductStats", mock.Anything, "rice").Return(models.MarketStats{}, assert.AnError).Once()

		m.Open(context.Background(), rice)

		snap := m.Snapshot()
		assert.True(t, snap.Open)
		assert.Equal(t, modal.StatsUnavailable, snap.StatsStatus)
		assert.Nil(t, snap.Stats)
	})
}

func TestModal_OpenTwiceResetsAndFetchesOncePerOpen(t *testing.T) {
	m, fetcher := newModal(t)
	fetcher.On("ProductStats", mock.Anything, "rice").Return(riceStats, nil).Once()
	fetcher.On("ProductStats", mock.Anything, "beans").Return(models.MarketStats{}, assert.AnError).Once()

	m.Open(context.Background(), rice)
	require.True(t, m.ShowStats())
	require.Equal(t, modal.SubviewStats, m.Snapshot().Subview)

	m.Open(context.Background(), beans)

	snap := m.Snapshot()
	assert.Equal(t, beans, snap.Item)
	assert.Equal(t, modal.SubviewTrend, snap.Subview)
	assert.Equal(t, modal.DirectionNone, snap.Direction)
	assert.Nil(t, snap.Stats, "stats of the previous product are discarded")
	fetcher.AssertNumberOfCalls(t, "ProductStats", 2)
}

func TestModal_Close(t *testing.T) {
	m, fetcher := newModal(t)
	fetcher.On("ProductStats", mock.Anything, "rice").Return(riceStats, nil).Once()

	m.Open(context.Background(), rice)
	m.ShowStats()
	m.Close()

	snap := m.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, modal.SubviewTrend, snap.Subview)
	assert.Nil(t, snap.Stats)
	assert.Equal(t, modal.StatsIdle, snap.StatsStatus)
}

func TestModal_Transitions(t *testing.T) {
	testCases := []struct {
		name              string
		actions           func(m *modal.Modal) []bool
		expectedChanged   []bool
		expectedSubview   modal.Subview
		expectedDirection modal.Direction
	}{
		{
			name:              "button to stats",
			actions:           func(m *modal.Modal) []bool { return []bool{m.ShowStats()} },
			expectedChanged:   []bool{true},
			expectedSubview:   modal.SubviewStats,
			expectedDirection: modal.DirectionForward,
		},
		{
			name:              "button back to trend",
			actions:           func(m *modal.Modal) []bool { return []bool{m.ShowStats(), m.ShowTrend()} },
			expectedChanged:   []bool{true, true},
			expectedSubview:   modal.SubviewTrend,
			expectedDirection: modal.DirectionBackward,
		},
		{
			name:              "short drag is ignored",
			actions:           func(m *modal.Modal) []bool { return []bool{m.Drag(-modal.DragThreshold + 1)} },
			expectedChanged:   []bool{false},
			expectedSubview:   modal.SubviewTrend,
			expectedDirection: modal.DirectionNone,
		},
		{
			name:              "drag left reveals stats",
			actions:           func(m *modal.Modal) []bool { return []bool{m.Drag(-modal.DragThreshold)} },
			expectedChanged:   []bool{true},
			expectedSubview:   modal.SubviewStats,
			expectedDirection: modal.DirectionForward,
		},
		{
			name:              "drag left past stats does not wrap",
			actions:           func(m *modal.Modal) []bool { return []bool{m.Drag(-120), m.Drag(-120)} },
			expectedChanged:   []bool{true, false},
			expectedSubview:   modal.SubviewStats,
			expectedDirection: modal.DirectionForward,
		},
		{
			name:              "drag right on trend does not wrap",
			actions:           func(m *modal.Modal) []bool { return []bool{m.Drag(120)} },
			expectedChanged:   []bool{false},
			expectedSubview:   modal.SubviewTrend,
			expectedDirection: modal.DirectionNone,
		},
		{
			name:              "drag right returns to trend",
			actions:           func(m *modal.Modal) []bool { return []bool{m.Drag(-80), m.Drag(80)} },
			expectedChanged:   []bool{true, true},
			expectedSubview:   modal.SubviewTrend,
			expectedDirection: modal.DirectionBackward,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, fetcher := newModal(t)
			fetcher.On("ProductStats", mock.Anything, "rice").Return(riceStats, nil).Once()
			m.Open(context.Background(), rice)

			changed := tc.actions(m)

			snap := m.Snapshot()
			assert.Equal(t, tc.expectedChanged, changed)
			assert.Equal(t, tc.expectedSubview, snap.Subview)
			assert.Equal(t, tc.expectedDirection, snap.Direction)
		})
	}
}

func TestModal_StaleStatsAreDiscarded(t *testing.T) {
	m, fetcher := newModal(t)
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher.On("ProductStats", mock.Anything, "rice").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(riceStats, nil).Once()
	beansStats := models.MarketStats{HighestPrice: 100, LowestPrice: 80, AveragePrice: 90, SimilarCount: 2}
	fetcher.On("ProductStats", mock.Anything, "beans").Return(beansStats, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Open(context.Background(), rice)
	}()

	<-started
	m.Open(context.Background(), beans)
	close(release)
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, beans, snap.Item)
	require.NotNil(t, snap.Stats)
	assert.Equal(t, beansStats, *snap.Stats)
}

func TestModal_CloseDuringFetchDiscardsStats(t *testing.T) {
	m, fetcher := newModal(t)
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher.On("ProductStats", mock.Anything, "rice").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(riceStats, nil).Once()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Open(context.Background(), rice)
	}()

	<-started
	m.Close()
	close(release)
	<-done

	snap := m.Snapshot()
	assert.False(t, snap.Open)
	assert.Nil(t, snap.Stats)
}

func TestTrendSeries(t *testing.T) {
	series := modal.TrendSeries()
	require.Len(t, series, 6)
	assert.Equal(t, "Jan 15", series[0].Date)

	series[0].Price = 0
	assert.Equal(t, int64(450000), modal.TrendSeries()[0].Price)
}
