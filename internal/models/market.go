// Package models defines data structures for vire-tracker.
package models

import (
	"slices"
	"strings"
	"time"
)

// Quote is the normalized current price record for one symbol.
// A symbol the provider could not resolve carries Error instead of a price.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
	Error         string  `json:"error,omitempty"`
	Source        string  `json:"source,omitempty"` // provider name
}

// Valid reports whether the quote carries a usable price.
func (q Quote) Valid() bool {
	return q.Error == "" && q.Price > 0
}

// ErrorQuote builds a per-symbol unavailable quote.
func ErrorQuote(symbol, source, msg string) Quote {
	return Quote{Symbol: symbol, Source: source, Error: msg}
}

// HistoricalPoint is one daily value in a series. Series are newest-first.
type HistoricalPoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Value float64 `json:"value"`
}

// DateLayout is the ISO date layout used by HistoricalPoint.Date.
const DateLayout = "2006-01-02"

// SearchResult is one symbol search hit.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Exchange string `json:"exchange,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// NewsItem is a market news article, stored verbatim from the provider.
type NewsItem struct {
	ID       string    `json:"id"`
	Headline string    `json:"headline"`
	Summary  string    `json:"summary"`
	Source   string    `json:"source"`
	Datetime time.Time `json:"datetime"`
	URL      string    `json:"url"`
	Category string    `json:"category"`
}

// News categories accepted by FetchMarketNews.
const (
	NewsGeneral = "general"
	NewsForex   = "forex"
	NewsCrypto  = "crypto"
	NewsMerger  = "merger"
)

// ValidNewsCategory returns true if category is one of the supported news categories.
func ValidNewsCategory(category string) bool {
	switch category {
	case NewsGeneral, NewsForex, NewsCrypto, NewsMerger:
		return true
	}
	return false
}

// Range is a lookback window for series and portfolio history.
type Range string

const (
	Range1W  Range = "1W"
	Range1M  Range = "1M"
	Range3M  Range = "3M"
	Range6M  Range = "6M"
	Range1Y  Range = "1Y"
	RangeAll Range = "ALL"
)

// ParseRange normalizes s to a Range. Empty input yields Range1M.
func ParseRange(s string) (Range, bool) {
	if strings.TrimSpace(s) == "" {
		return Range1M, true
	}
	r := Range(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case Range1W, Range1M, Range3M, Range6M, Range1Y, RangeAll:
		return r, true
	}
	return "", false
}

// Since returns the earliest date included in the range relative to now.
// RangeAll returns the zero time.
// Series dates are UTC calendar days, so the cutoff is computed in UTC.
func (r Range) Since(now time.Time) time.Time {
	now = now.UTC()
	switch r {
	case Range1W:
		return now.AddDate(0, 0, -7)
	case Range1M:
		return now.AddDate(0, -1, 0)
	case Range3M:
		return now.AddDate(0, -3, 0)
	case Range6M:
		return now.AddDate(0, -6, 0)
	case Range1Y:
		return now.AddDate(-1, 0, 0)
	}
	return time.Time{}
}

// TrimSeries returns a new slice with the points of a newest-first series
// dated on or after since.
func TrimSeries(points []HistoricalPoint, since time.Time) []HistoricalPoint {
	if since.IsZero() {
		return slices.Clone(points)
	}
	cutoff := since.UTC().Format(DateLayout)
	out := make([]HistoricalPoint, 0, len(points))
	for _, p := range points {
		if p.Date >= cutoff {
			out = append(out, p)
		}
	}
	return out
}
