package models

import "github.com/shopspring/decimal"

// WatchlistItem is a product the user marked as favourite.
type WatchlistItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Delta decimal.Decimal `json:"delta"`
	Img   string          `json:"img"`
}

// ToDisplayItem passes a watchlist entry through unchanged.
func (w WatchlistItem) ToDisplayItem() DisplayItem {
	return DisplayItem{ID: w.ID, Name: w.Name, Price: w.Price, Delta: w.Delta, Image: w.Img}
}

// ToWatchlistItem captures a display item as a watchlist entry.
func (d DisplayItem) ToWatchlistItem() WatchlistItem {
	return WatchlistItem{ID: d.ID, Name: d.Name, Price: d.Price, Delta: d.Delta, Img: d.Image}
}
