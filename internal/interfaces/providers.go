// Package interfaces defines service and storage contracts for vire-tracker
package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/vire-tracker/internal/models"
)

// ProviderClient wraps one external market-data API.
type ProviderClient interface {
	// Name identifies the provider in logs and aggregated errors.
	Name() string

	// FetchQuotes returns exactly one quote per requested symbol, in order.
	// Unresolvable symbols carry Quote.Error; an error return fails the whole batch.
	FetchQuotes(ctx context.Context, symbols []string) ([]models.Quote, error)

	// FetchSeries returns the daily close series for symbol, newest-first.
	FetchSeries(ctx context.Context, symbol string) ([]models.HistoricalPoint, error)

	// Search returns symbols matching query.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// NewsProvider wraps one external market-news API.
type NewsProvider interface {
	Name() string

	// FetchNews returns the latest articles for a news category.
	FetchNews(ctx context.Context, category string) ([]models.NewsItem, error)
}

// ErrUnsupported is returned by a provider that does not implement an operation.
// The resolver treats it like any other provider failure.
var ErrUnsupported = errors.New("operation not supported by provider")
