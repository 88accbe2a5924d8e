package interfaces

import (
	"context"

	"github.com/bobmcallan/vire-tracker/internal/models"
)

// StorageManager provides access to domain-specific storage interfaces.
type StorageManager interface {
	HoldingStorage() HoldingStorage
	WatchlistStorage() WatchlistStorage
	DB() interface{}
	Close() error
}

// HoldingStorage persists user-declared holdings keyed by symbol.
type HoldingStorage interface {
	ListHoldings(ctx context.Context) ([]models.Holding, error)
	SaveHolding(ctx context.Context, h models.Holding) error
	DeleteHolding(ctx context.Context, symbol string) error
}

// WatchlistStorage persists watchlist items keyed by symbol.
type WatchlistStorage interface {
	GetWatchlist(ctx context.Context) (*models.Watchlist, error)
	AddWatchlistItem(ctx context.Context, item models.WatchlistItem) error
	RemoveWatchlistItem(ctx context.Context, symbol string) error
}
