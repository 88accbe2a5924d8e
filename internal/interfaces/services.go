package interfaces

import (
	"context"

	"github.com/bobmcallan/vire-tracker/internal/models"
)

// MarketService serves cached market data through the provider fallback chain
type MarketService interface {
	// GetStockQuotes returns one quote per requested symbol, in order.
	// Per-symbol failures are carried in Quote.Error.
	GetStockQuotes(ctx context.Context, symbols []string) ([]models.Quote, error)

	// CachedQuotes reads the cache without touching any provider
	CachedQuotes(symbols []string) []models.Quote

	// GetSeries returns a daily series trimmed to rng, newest-first
	GetSeries(ctx context.Context, symbol string, rng models.Range) ([]models.HistoricalPoint, error)

	// Search returns symbols matching query
	Search(ctx context.Context, query string) ([]models.SearchResult, error)

	// FetchMarketNews returns articles for a news category
	FetchMarketNews(ctx context.Context, category string) ([]models.NewsItem, error)
}

// PortfolioService derives valuations from the stored holdings
type PortfolioService interface {
	// GetPortfolioValue values every stored holding at current quotes
	GetPortfolioValue(ctx context.Context) (*models.PortfolioSummary, error)

	// GetPortfolioHistory returns the daily portfolio value over rng, newest-first
	GetPortfolioHistory(ctx context.Context, rng models.Range) ([]models.HistoricalPoint, error)
}

// WatchlistService manages the watchlist
type WatchlistService interface {
	Get(ctx context.Context) (*models.Watchlist, []models.Quote, error)
	Add(ctx context.Context, symbol, notes string) (*models.WatchlistItem, error)
	Remove(ctx context.Context, symbol string) error
}

// RecommendationService produces BUY/HOLD/SELL suggestions
type RecommendationService interface {
	// Recommend rates the given symbols plus every held symbol.
	Recommend(ctx context.Context, symbols []string) ([]models.Recommendation, error)
}
