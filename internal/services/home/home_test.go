package home_test

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Houeta/market-map/internal/models"
	"github.com/Houeta/market-map/internal/repository/sqlite"
	"github.com/Houeta/market-map/internal/services/home"
	"github.com/Houeta/market-map/internal/store"
	"github.com/Houeta/market-map/test/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeOverlay records the items opened on it.
type fakeOverlay struct {
	opened []models.DisplayItem
}

func (f *fakeOverlay) Open(_ context.Context, item models.DisplayItem) {
	f.opened = append(f.opened, item)
}

type fixture struct {
	home      *home.Home
	lister    *mocks.ProductLister
	watchlist *store.WatchlistStore
	search    *store.SearchStore
	overlay   *fakeOverlay
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := sqlite.NewRepository(context.Background(), logger, filepath.Join(t.TempDir(), "home.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	f := &fixture{
		lister:    mocks.NewProductLister(t),
		watchlist: store.NewWatchlistStore(context.Background(), logger, repo, store.WatchlistRecord),
		search:    store.NewSearchStore(),
		overlay:   &fakeOverlay{},
	}
	f.home = home.New(logger, f.lister, f.watchlist, f.search, f.overlay)

	return f
}

func strPtr(s string) *string { return &s }

var (
	riceProduct = models.Product{
		ID: "p-rice", Name: "Rice 50kg", Category: "food",
		AvgPrice: "110.00", PreviousPrice: strPtr("100.00"), ImageURL: strPtr("https://img/rice.jpg"),
	}
	phoneProduct = models.Product{ID: "p-phone", Name: "Phone", Category: "gadgets", AvgPrice: "90", PreviousPrice: strPtr("100")}
)

func watchlistParams() url.Values {
	return url.Values{home.ParamView: {"watchlist"}}
}

func TestHome_MarketView(t *testing.T) {
	f := newFixture(t)
	f.lister.On("ListProducts", mock.Anything, "").Return([]models.Product{riceProduct, phoneProduct}, nil).Once()

	f.home.Navigate(context.Background(), url.Values{})

	snap := f.home.Snapshot()
	assert.Equal(t, home.ViewMarket, snap.View)
	assert.Equal(t, "Market Overview", snap.Title)
	assert.Equal(t, "Live market intelligence from Jumia Nigeria", snap.Subtitle)
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Empty)
	assert.False(t, snap.CanClear)
	require.Len(t, snap.Items, 2)

	assert.Equal(t, "p-rice", snap.Items[0].ID)
	assert.True(t, decimal.NewFromInt(110).Equal(snap.Items[0].Price))
	assert.True(t, decimal.NewFromInt(10).Equal(snap.Items[0].Delta))
	assert.Equal(t, "https://img/rice.jpg", snap.Items[0].Image)
	assert.True(t, decimal.NewFromInt(-10).Equal(snap.Items[1].Delta))
	assert.Equal(t, models.PlaceholderImage, snap.Items[1].Image)
}

func TestHome_NavigateFetchesOnlyWhenEnteringMarket(t *testing.T) {
	f := newFixture(t)
	f.lister.On("ListProducts", mock.Anything, "").Return([]models.Product{riceProduct}, nil).Twice()

	f.home.Navigate(context.Background(), url.Values{})
	// Category changes do not refetch.
	f.home.Navigate(context.Background(), url.Values{home.ParamCategory: {"food"}})
	f.home.Navigate(context.Background(), watchlistParams())
	f.home.Navigate(context.Background(), url.Values{})

	f.lister.AssertNumberOfCalls(t, "ListProducts", 2)
}

func TestHome_SearchRefetches(t *testing.T) {
	f := newFixture(t)
	f.lister.On("ListProducts", mock.Anything, "").Return([]models.Product{riceProduct, phoneProduct}, nil).Once()
	f.lister.On("ListProducts", mock.Anything, "phone").Return([]models.Product{phoneProduct}, nil).Once()

	f.home.Navigate(context.Background(), url.Values{})
	f.search.SetQuery("phone")
	f.home.SearchChanged(context.Background())

	snap := f.home.Snapshot()
	assert.Equal(t, `Results for "phone"`, snap.Subtitle)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "p-phone", snap.Items[0].ID)
}

func TestHome_SearchChangedIgnoredOutsideMarket(t *testing.T) {
	f := newFixture(t)

	f.home.SearchChanged(context.Background())
	f.home.Navigate(context.Background(), watchlistParams())
	f.search.SetQuery("rice")
	f.home.SearchChanged(context.Background())

	f.lister.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestHome_FetchFailureLeavesListEmpty(t *testing.T) {
	f := newFixture(t)
	f.lister.On("ListProducts", mock.Anything, "").Return([]models.Product{riceProduct}, nil).Once()
	f.lister.On("ListProducts", mock.Anything, "").Return(nil, assert.AnError).Once()

	f.home.Navigate(context.Background(), url.Values{})
	require.Len(t, f.home.Snapshot().Items, 1)

	f.home.Refresh(context.Background())

	snap := f.home.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Items)
	require.NotNil(t, snap.Empty)
	assert.Equal(t, "Try adjusting your search query or run your scraper.", snap.Empty.Message)
}

func TestHome_LoadingState(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})
	f.lister.On("ListProducts", mock.Anything, "").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]models.Product{riceProduct}, nil).Once()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.home.Navigate(context.Background(), url.Values{})
	}()

	<-started
	snap := f.home.Snapshot()
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Items)
	assert.Nil(t, snap.Empty, "no empty state while loading")

	close(release)
	<-done
	assert.False(t, f.home.Snapshot().Loading)
}

func TestHome_StaleResponseIsDiscarded(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})
	f.lister.On("ListProducts", mock.Anything, "rice").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]models.Product{riceProduct}, nil).Once()
	f.lister.On("ListProducts", mock.Anything, "phone").Return([]models.Product{phoneProduct}, nil).Once()

	f.search.SetQuery("rice")
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.home.Navigate(context.Background(), url.Values{})
	}()

	<-started
	f.search.SetQuery("phone")
	f.home.SearchChanged(context.Background())
	close(release)
	wg.Wait()

	snap := f.home.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "p-phone", snap.Items[0].ID)
	assert.False(t, snap.Loading)
}

func TestHome_EmptyStates(t *testing.T) {
	testCases := []struct {
		name            string
		params          url.Values
		query           string
		expectedHeading string
		expectedMessage string
	}{
		{
			name:            "empty watchlist",
			params:          watchlistParams(),
			expectedHeading: "Your watchlist is empty",
			expectedMessage: "Add products from the market overview to track their prices here.",
		},
		{
			name:            "watchlist search without matches",
			params:          watchlistParams(),
			query:           "tv",
			expectedHeading: "No items found",
			expectedMessage: `Nothing in your watchlist matches "tv".`,
		},
		{
			name:            "market search without matches",
			params:          url.Values{},
			query:           "tv",
			expectedHeading: "No items found",
			expectedMessage: `No products match "tv". Try adjusting your search query.`,
		},
		{
			name:            "market without products",
			params:          url.Values{},
			expectedHeading: "No items found",
			expectedMessage: "Try adjusting your search query or run your scraper.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.lister.On("ListProducts", mock.Anything, tc.query).Return([]models.Product{}, nil).Maybe()
			f.search.SetQuery(tc.query)

			f.home.Navigate(context.Background(), tc.params)

			snap := f.home.Snapshot()
			require.NotNil(t, snap.Empty)
			assert.Equal(t, tc.expectedHeading, snap.Empty.Heading)
			assert.Equal(t, tc.expectedMessage, snap.Empty.Message)
		})
	}
}

func TestHome_WatchlistView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.lister.On("ListProducts", mock.Anything, "").Return([]models.Product{riceProduct, phoneProduct}, nil).Once()

	f.home.Navigate(ctx, url.Values{})

	watched, ok := f.home.ToggleWatch(ctx, "p-rice")
	require.True(t, ok)
	assert.True(t, watched)
	f.home.ToggleWatch(ctx, "p-phone")

	_, ok = f.home.ToggleWatch(ctx, "unknown")
	assert.False(t, ok)

	f.home.Navigate(ctx, watchlistParams())

	snap := f.home.Snapshot()
	assert.Equal(t, "My Watchlist", snap.Title)
	assert.Equal(t, "Search your watchlist...", snap.Placeholder)
	assert.True(t, snap.CanClear)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "p-phone", snap.Items[0].ID, "newest first")
	assert.True(t, decimal.NewFromInt(-10).Equal(snap.Items[0].Delta))

	t.Run("query filters by name", func(t *testing.T) {
		f.search.SetQuery("RICE")
		defer f.search.Clear()

		items := f.home.Snapshot().Items
		require.Len(t, items, 1)
		assert.Equal(t, "p-rice", items[0].ID)
	})

	t.Run("toggle from the watchlist removes", func(t *testing.T) {
		watched, ok := f.home.ToggleWatch(ctx, "p-phone")
		require.True(t, ok)
		assert.False(t, watched)
		assert.Len(t, f.home.Snapshot().Items, 1)
	})

	t.Run("clear", func(t *testing.T) {
		assert.True(t, f.home.ClearWatchlist(ctx))
		snap := f.home.Snapshot()
		assert.Empty(t, snap.Items)
		assert.False(t, snap.CanClear)
		assert.False(t, f.home.ClearWatchlist(ctx))
	})
}

func TestHome_ClearWatchlistOnlyInWatchlistView(t *testing.T) {
	f := newFixture(t)
	f.lister.On("ListProducts", mock.Anything, "").Return([]models.Product{riceProduct}, nil).Once()
	f.home.Navigate(context.Background(), url.Values{})
	f.home.ToggleWatch(context.Background(), "p-rice")

	assert.False(t, f.home.ClearWatchlist(context.Background()))
	assert.Equal(t, 1, f.watchlist.Len())
}

func TestHome_Select(t *testing.T) {
	f := newFixture(t)
	f.lister.On("ListProducts", mock.Anything, "").Return([]models.Product{riceProduct}, nil).Once()
	f.home.Navigate(context.Background(), url.Values{})

	item, ok := f.home.Select(context.Background(), "p-rice")

	require.True(t, ok)
	assert.Equal(t, "Rice 50kg", item.Name)
	require.Len(t, f.overlay.opened, 1)
	assert.Equal(t, item, f.overlay.opened[0])

	_, ok = f.home.Select(context.Background(), "missing")
	assert.False(t, ok)
	assert.Len(t, f.overlay.opened, 1)
}

func TestPlaceholder(t *testing.T) {
	testCases := []struct {
		view     home.View
		category string
		expected string
	}{
		{home.ViewWatchlist, "food", "Search your watchlist..."},
		{home.ViewMarket, "food", "Search groceries, snacks, drinks..."},
		{home.ViewMarket, "gadgets", "Search phones, laptops, tech..."},
		{home.ViewMarket, "education", "Search courses, books, tools..."},
		{home.ViewMarket, "automotive", "Search cars, parts, accessories..."},
		{home.ViewMarket, "trending", "Search trending deals..."},
		{home.ViewMarket, "drops", "Search price drops..."},
		{home.ViewMarket, "", "Search for items, food, cars..."},
	}

	for _, tc := range testCases {
		t.Run(string(tc.view)+"/"+tc.category, func(t *testing.T) {
			assert.Equal(t, tc.expected, home.Placeholder(tc.view, tc.category))
		})
	}
}
