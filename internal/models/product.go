package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderImage is shown for products that come without an image.
const PlaceholderImage = "https://via.placeholder.com/400"

// deltaPlaces is the number of decimal places a delta is rounded to.
const deltaPlaces = 2

// Product is a single listing returned by the price service.
// Prices are transferred as numeric text.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	AvgPrice      string    `json:"avg_price"`
	MinPrice      string    `json:"min_price,omitempty"`
	MaxPrice      string    `json:"max_price,omitempty"`
	PreviousPrice *string   `json:"previous_price"`
	ImageURL      *string   `json:"image_url"`
	LastUpdated   time.Time `json:"last_updated"`
}

// MarketStats - aggregate prices of the products comparable to one product.
type MarketStats struct {
	HighestPrice float64 `json:"highest_price"`
	LowestPrice  float64 `json:"lowest_price"`
	AveragePrice float64 `json:"average_price"`
	SimilarCount int64   `json:"similar_count"`
}

// DisplayItem is the normalized shape shared by the listing and the detail overlay.
type DisplayItem struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Delta decimal.Decimal
	Image string
}

// IsDown reports whether the item is presented with the falling-price treatment.
func (d DisplayItem) IsDown() bool {
	return d.Delta.IsNegative()
}

// ToDisplayItem maps a remote product to a display item.
func (p Product) ToDisplayItem() DisplayItem {
	image := PlaceholderImage
	if p.ImageURL != nil && strings.TrimSpace(*p.ImageURL) != "" {
		image = *p.ImageURL
	}

	previous := ""
	if p.PreviousPrice != nil {
		previous = *p.PreviousPrice
	}

	return DisplayItem{
		ID:    p.ID,
		Name:  p.Name,
		Price: parsePrice(p.AvgPrice),
		Delta: Delta(p.AvgPrice, previous),
		Image: image,
	}
}

// Delta returns the percentage change from previous to current rounded to two places.
// It is zero when previous is empty, unparseable, zero or equal to current.
func Delta(current, previous string) decimal.Decimal {
	prev := parsePrice(previous)
	cur := parsePrice(current)

	if prev.IsZero() || cur.Equal(prev) {
		return decimal.Zero
	}

	hundred := decimal.NewFromInt(100)

	return cur.Sub(prev).Div(prev).Mul(hundred).Round(deltaPlaces)
}

// parsePrice converts numeric text to a decimal, treating garbage as zero.
func parsePrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}

	return d
}
