package models

import (
	"fmt"
	"strings"
	"time"
)

// WatchlistItem is one symbol the user is tracking without holding it.
type WatchlistItem struct {
	ID      string    `json:"id"`
	Symbol  string    `json:"symbol" badgerhold:"key"`
	Notes   string    `json:"notes,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// Watchlist is the ordered set of watched symbols.
type Watchlist struct {
	Items []WatchlistItem `json:"items"`
}

// FindBySymbol returns the item and index for a given symbol, or -1 if not found
func (w *Watchlist) FindBySymbol(symbol string) (*WatchlistItem, int) {
	for i, item := range w.Items {
		if strings.EqualFold(item.Symbol, symbol) {
			return &w.Items[i], i
		}
	}
	return nil, -1
}

// Symbols returns the watched symbols in order.
func (w *Watchlist) Symbols() []string {
	out := make([]string, len(w.Items))
	for i, item := range w.Items {
		out[i] = item.Symbol
	}
	return out
}

// ToMarkdown renders the watchlist with the latest quotes as a markdown table.
// Symbols missing from quotes render as N/A.
func (w *Watchlist) ToMarkdown(quotes map[string]Quote) string {
	var b strings.Builder

	b.WriteString("# Watchlist\n\n")

	if len(w.Items) == 0 {
		b.WriteString("No watchlist items.\n")
		return b.String()
	}

	b.WriteString("| Symbol | Price | Change | Notes |\n")
	b.WriteString("|---|---:|---:|---|\n")
	for _, item := range w.Items {
		price, change := "N/A", "N/A"
		if q, ok := quotes[item.Symbol]; ok && q.Valid() {
			price = fmt.Sprintf("%.2f", q.Price)
			change = fmt.Sprintf("%+.2f (%+.2f%%)", q.Change, q.PercentChange)
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", item.Symbol, price, change, item.Notes))
	}

	b.WriteString(fmt.Sprintf("\n%d items\n", len(w.Items)))
	return b.String()
}
