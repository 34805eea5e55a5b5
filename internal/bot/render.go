package bot

import (
	"fmt"
	"strings"

	"github.com/Houeta/market-map/internal/models"
	"github.com/Houeta/market-map/internal/services/home"
	"github.com/Houeta/market-map/internal/services/modal"
	"github.com/Houeta/market-map/internal/store"
	"github.com/shopspring/decimal"
)

// category is one sidebar entry.
type category struct {
	slug string
	name string
}

var categories = []category{
	{slug: "trending", name: "Trending"},
	{slug: "drops", name: "Price Drops"},
	{slug: "food", name: "Food & Groceries"},
	{slug: "gadgets", name: "Gadgets & Tech"},
	{slug: "education", name: "Education"},
	{slug: "automotive", name: "Automotive"},
}

const helpText = `Commands:
/market [query] - market overview
/category <name> - browse a category
/watchlist - your watchlist
/search <query> - search the current view
/clearsearch - reset the search
/watch <n> - add or remove item n from the watchlist
/clearwatchlist - empty the watchlist
/open <n> - price details of item n
/profile [image-url] - your profile, send a photo to use it as your picture
/menu - categories
/logout - sign out
/reset - forget everything stored for this chat`

// formatNaira renders a price with thousands separators, e.g. ₦1,250,000.
func formatNaira(price decimal.Decimal) string {
	return "₦" + groupThousands(price)
}

func groupThousands(d decimal.Decimal) string {
	s := d.Round(2).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}

	return out
}

// formatDelta renders the percentage change with its direction.
func formatDelta(item models.DisplayItem) string {
	arrow := "▲"
	if item.IsDown() {
		arrow = "▼"
	}

	return fmt.Sprintf("%s %s%%", arrow, item.Delta.Abs().StringFixed(2))
}

// renderHome renders the listing as a numbered list; /watch and /open address items by number.
func renderHome(snap home.Snapshot, watched func(id string) bool) string {
	var b strings.Builder

	b.WriteString(snap.Title + "\n")
	b.WriteString(snap.Subtitle + "\n")

	switch {
	case snap.Loading:
		b.WriteString("\nLoading products...")
		return b.String()
	case snap.Empty != nil:
		fmt.Fprintf(&b, "\n%s\n%s", snap.Empty.Heading, snap.Empty.Message)
		return b.String()
	}

	for i, item := range snap.Items {
		heart := ""
		if watched(item.ID) {
			heart = " ♥"
		}
		fmt.Fprintf(&b, "\n%d. %s%s\n   %s  %s", i+1, item.Name, heart, formatNaira(item.Price), formatDelta(item))
	}

	b.WriteString("\n\n/open <n> for details, /watch <n> to track.")
	if snap.CanClear {
		b.WriteString("\n/clearwatchlist removes every item.")
	}
	fmt.Fprintf(&b, "\n%s", snap.Placeholder)

	return b.String()
}

// renderModal renders the open overlay with its active sub-view.
func renderModal(snap modal.Snapshot) string {
	if !snap.Open {
		return "Nothing is open. Use /open <n> on a listing."
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s  %s\n", snap.Item.Name, formatNaira(snap.Item.Price), formatDelta(snap.Item))
	if snap.Item.Image != "" {
		fmt.Fprintf(&b, "Image: %s\n", snap.Item.Image)
	}
	b.WriteString("\n")

	if snap.Subview == modal.SubviewStats {
		b.WriteString("Trend | [Stats]\n\n")
		b.WriteString(renderStats(snap))
	} else {
		b.WriteString("[Trend] | Stats\n\n")
		for _, p := range modal.TrendSeries() {
			fmt.Fprintf(&b, "%s  %s\n", p.Date, formatNaira(decimal.NewFromInt(p.Price)))
		}
	}

	b.WriteString("\nPrice performance over last 90 days")
	b.WriteString("\n/trend, /stats or /swipe <dx> to switch, /close to close.")

	return b.String()
}

func renderStats(snap modal.Snapshot) string {
	switch {
	case snap.StatsStatus == modal.StatsLoading:
		return "Loading market data...\n"
	case snap.Stats == nil:
		return "No market data available for this product.\n"
	}

	stats := snap.Stats

	return fmt.Sprintf(
		"Highest: %s\nLowest: %s\nAverage: %s\nSimilar listings: %d\n",
		formatNaira(decimal.NewFromFloat(stats.HighestPrice)),
		formatNaira(decimal.NewFromFloat(stats.LowestPrice)),
		formatNaira(decimal.NewFromFloat(stats.AveragePrice)),
		stats.SimilarCount,
	)
}

// renderMenu renders the sidebar.
func renderMenu(auth store.AuthState) string {
	var b strings.Builder

	b.WriteString("MarketMap\n\n")
	b.WriteString("All Items - /market\n")
	b.WriteString("Watchlist - /watchlist\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "%s - /category %s\n", c.name, c.slug)
	}

	if auth.IsAuthenticated && auth.User != nil {
		fmt.Fprintf(&b, "\nLogged in as %s", auth.User.Name)
	} else {
		b.WriteString("\n/login or /signup to get started")
	}

	return b.String()
}

// telegramPhotoPrefix marks a profile picture uploaded as a Telegram photo; the file id follows.
const telegramPhotoPrefix = "telegram-photo:"

// renderProfile renders the profile settings page.
func renderProfile(auth store.AuthState) string {
	if auth.User == nil {
		return loginRequiredText
	}

	picture := auth.ProfileImage
	if strings.HasPrefix(picture, telegramPhotoPrefix) {
		picture = "uploaded photo"
	}

	return fmt.Sprintf(
		"Profile\nName: %s\nEmail: %s\nPicture: %s\n\n"+
			"Send a photo or /profile <image-url> to change your picture.",
		auth.User.Name, auth.User.Email, picture,
	)
}
