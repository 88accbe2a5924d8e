package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// WatchlistStorage implements interfaces.WatchlistStorage using BadgerDB.
type WatchlistStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

// NewWatchlistStorage creates a new watchlist storage backed by BadgerDB.
func NewWatchlistStorage(db *BadgerDB, logger *common.Logger) *WatchlistStorage {
	return &WatchlistStorage{
		db:     db,
		logger: logger,
	}
}

// GetWatchlist returns all items, oldest first.
func (s *WatchlistStorage) GetWatchlist(_ context.Context) (*models.Watchlist, error) {
	var items []models.WatchlistItem
	if err := s.db.Store().Find(&items, nil); err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].AddedAt.Before(items[j].AddedAt)
		}
		return items[i].Symbol < items[j].Symbol
	})
	if items == nil {
		items = []models.WatchlistItem{}
	}
	return &models.Watchlist{Items: items}, nil
}

// AddWatchlistItem upserts an item keyed by its normalized symbol.
func (s *WatchlistStorage) AddWatchlistItem(_ context.Context, item models.WatchlistItem) error {
	item.Symbol = models.NormalizeSymbol(item.Symbol)
	if item.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", models.ErrInvalidInput)
	}
	if err := s.db.Store().Upsert(item.Symbol, &item); err != nil {
		return fmt.Errorf("failed to save watchlist item %s: %w", item.Symbol, err)
	}
	return nil
}

// RemoveWatchlistItem removes the item for symbol.
func (s *WatchlistStorage) RemoveWatchlistItem(_ context.Context, symbol string) error {
	sym := models.NormalizeSymbol(symbol)
	err := s.db.Store().Delete(sym, models.WatchlistItem{})
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("watchlist item %s: %w", sym, models.ErrNotFound)
		}
		return fmt.Errorf("failed to remove watchlist item %s: %w", sym, err)
	}
	return nil
}
