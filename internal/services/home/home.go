package home

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/Houeta/market-map/internal/models"
)

// View selects where the listing comes from.
type View string

const (
	// ViewMarket lists products fetched from the price service.
	ViewMarket View = "market"
	// ViewWatchlist lists the locally persisted watchlist.
	ViewWatchlist View = "watchlist"
)

// Query parameters understood by the home page.
const (
	ParamView     = "view"
	ParamCategory = "category"
)

const defaultSubtitle = "Live market intelligence from Jumia Nigeria"

// ProductLister fetches the products matching a search query.
type ProductLister interface {
	ListProducts(ctx context.Context, search string) ([]models.Product, error)
}

// Watchlist is the persisted set of favourite products.
type Watchlist interface {
	Items() []models.WatchlistItem
	Toggle(ctx context.Context, item models.WatchlistItem) bool
	Clear(ctx context.Context)
}

// QuerySource provides the active search query.
type QuerySource interface {
	Query() string
}

// Overlay is the detail view opened for a selected item.
type Overlay interface {
	Open(ctx context.Context, item models.DisplayItem)
}

// EmptyState is the affordance shown instead of an empty grid.
type EmptyState struct {
	Heading string
	Message string
}

// Snapshot is everything needed to render the home page.
type Snapshot struct {
	View        View
	Category    string
	Query       string
	Title       string
	Subtitle    string
	Placeholder string
	Loading     bool
	Items       []models.DisplayItem
	Empty       *EmptyState
	CanClear    bool
}

// Home derives the displayed listing from query parameters, the search query,
// the watchlist and the last product fetch.
type Home struct {
	log       *slog.Logger
	products  ProductLister
	watchlist Watchlist
	search    QuerySource
	overlay   Overlay

	mu       sync.Mutex
	entered  bool
	view     View
	category string
	loading  bool
	market   []models.DisplayItem
	// token is the latest issued fetch; only its response is applied.
	token uint64
}

// New creates the home page in market view. Nothing is fetched until it is navigated to.
func New(log *slog.Logger, products ProductLister, watchlist Watchlist, search QuerySource, overlay Overlay) *Home {
	return &Home{
		log:       log,
		products:  products,
		watchlist: watchlist,
		search:    search,
		overlay:   overlay,
		view:      ViewMarket,
	}
}

// Navigate applies the page's query parameters. Entering the market view fetches products.
func (h *Home) Navigate(ctx context.Context, params url.Values) {
	view := ViewMarket
	if params.Get(ParamView) == string(ViewWatchlist) {
		view = ViewWatchlist
	}

	h.mu.Lock()
	entering := !h.entered || h.view != view
	h.entered = true
	h.view = view
	h.category = params.Get(ParamCategory)
	h.mu.Unlock()

	if entering && view == ViewMarket {
		h.Refresh(ctx)
	}
}

// SearchChanged re-runs the market fetch for the new query.
func (h *Home) SearchChanged(ctx context.Context) {
	h.mu.Lock()
	active := h.entered && h.view == ViewMarket
	h.mu.Unlock()

	if active {
		h.Refresh(ctx)
	}
}

// Refresh fetches the market listing for the current search query. A failed
// fetch is logged and leaves the listing empty. Responses of superseded
// fetches are dropped.
func (h *Home) Refresh(ctx context.Context) {
	const opn = "home.Refresh"

	h.mu.Lock()
	if h.view != ViewMarket {
		h.mu.Unlock()
		return
	}
	h.token++
	token := h.token
	h.loading = true
	query := h.search.Query()
	h.mu.Unlock()

	log := h.log.With("op", opn, "search", query, "token", token)
	log.DebugContext(ctx, "Fetching market listing")

	products, err := h.products.ListProducts(ctx, query)

	h.mu.Lock()
	defer h.mu.Unlock()

	if token != h.token {
		log.DebugContext(ctx, "Discarding stale market listing", "latest", h.token)
		return
	}
	h.loading = false

	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch market listing", "error", err)
		h.market = nil
		return
	}

	items := make([]models.DisplayItem, 0, len(products))
	for _, p := range products {
		items = append(items, p.ToDisplayItem())
	}
	h.market = items

	log.InfoContext(ctx, "Market listing updated", "count", len(items))
}

// Snapshot derives the page as it should be rendered now.
func (h *Home) Snapshot() Snapshot {
	query := h.search.Query()

	h.mu.Lock()
	view, category, loading := h.view, h.category, h.loading
	market := slices.Clone(h.market)
	h.mu.Unlock()

	snap := Snapshot{
		View:        view,
		Category:    category,
		Query:       query,
		Title:       title(view),
		Subtitle:    subtitle(query),
		Placeholder: Placeholder(view, category),
	}

	if view == ViewWatchlist {
		snap.Items = watchlistItems(h.watchlist.Items(), query)
		snap.CanClear = len(h.watchlist.Items()) > 0
	} else {
		snap.Loading = loading
		if !loading {
			snap.Items = market
		}
	}

	if !snap.Loading && len(snap.Items) == 0 {
		empty := emptyState(view, query)
		snap.Empty = &empty
	}

	return snap
}

// Select opens the overlay for the displayed item with id.
func (h *Home) Select(ctx context.Context, id string) (models.DisplayItem, bool) {
	item, ok := h.find(id)
	if !ok {
		return models.DisplayItem{}, false
	}

	h.overlay.Open(ctx, item)

	return item, true
}

// ToggleWatch adds or removes the displayed item with id from the watchlist.
// watched reports the membership afterwards; ok is false if no such item is displayed.
func (h *Home) ToggleWatch(ctx context.Context, id string) (watched, ok bool) {
	item, ok := h.find(id)
	if !ok {
		return false, false
	}

	return h.watchlist.Toggle(ctx, item.ToWatchlistItem()), true
}

// ClearWatchlist empties the watchlist. It only acts in the watchlist view.
func (h *Home) ClearWatchlist(ctx context.Context) bool {
	if !h.Snapshot().CanClear {
		return false
	}
	h.watchlist.Clear(ctx)

	return true
}

func (h *Home) find(id string) (models.DisplayItem, bool) {
	items := h.Snapshot().Items
	idx := slices.IndexFunc(items, func(i models.DisplayItem) bool { return i.ID == id })
	if idx < 0 {
		return models.DisplayItem{}, false
	}

	return items[idx], true
}

// watchlistItems filters the watchlist by name when a query is active.
func watchlistItems(items []models.WatchlistItem, query string) []models.DisplayItem {
	needle := strings.ToLower(query)
	out := make([]models.DisplayItem, 0, len(items))
	for _, item := range items {
		if needle != "" && !strings.Contains(strings.ToLower(item.Name), needle) {
			continue
		}
		out = append(out, item.ToDisplayItem())
	}

	return out
}

func title(view View) string {
	if view == ViewWatchlist {
		return "My Watchlist"
	}

	return "Market Overview"
}

func subtitle(query string) string {
	if query != "" {
		return fmt.Sprintf("Results for %q", query)
	}

	return defaultSubtitle
}

func emptyState(view View, query string) EmptyState {
	switch {
	case view == ViewWatchlist && query != "":
		return EmptyState{
			Heading: "No items found",
			Message: fmt.Sprintf("Nothing in your watchlist matches %q.", query),
		}
	case view == ViewWatchlist:
		return EmptyState{
			Heading: "Your watchlist is empty",
			Message: "Add products from the market overview to track their prices here.",
		}
	case query != "":
		return EmptyState{
			Heading: "No items found",
			Message: fmt.Sprintf("No products match %q. Try adjusting your search query.", query),
		}
	default:
		return EmptyState{
			Heading: "No items found",
			Message: "Try adjusting your search query or run your scraper.",
		}
	}
}

// Placeholder returns the search box hint for the view and category.
func Placeholder(view View, category string) string {
	if view == ViewWatchlist {
		return "Search your watchlist..."
	}

	switch category {
	case "food":
		return "Search groceries, snacks, drinks..."
	case "gadgets":
		return "Search phones, laptops, tech..."
	case "education":
		return "Search courses, books, tools..."
	case "automotive":
		return "Search cars, parts, accessories..."
	case "trending":
		return "Search trending deals..."
	case "drops":
		return "Search price drops..."
	default:
		return "Search for items, food, cars..."
	}
}
