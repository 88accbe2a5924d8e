// Package watchlist manages watched symbols and prices them through the market service.
package watchlist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// Service manages the watchlist.
type Service struct {
	store  interfaces.WatchlistStorage
	market interfaces.MarketService
	logger *common.Logger
	now    func() time.Time
}

// NewService creates a watchlist service.
func NewService(store interfaces.WatchlistStorage, market interfaces.MarketService, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		store:  store,
		market: market,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns the watchlist with one quote per item. When quotes cannot be
// fetched at all, cached quotes are returned instead.
func (s *Service) Get(ctx context.Context) (*models.Watchlist, []models.Quote, error) {
	wl, err := s.store.GetWatchlist(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(wl.Items) == 0 {
		return wl, []models.Quote{}, nil
	}

	quotes, err := s.market.GetStockQuotes(ctx, wl.Symbols())
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, err
		}
		s.logger.Warn().Err(err).Msg("Watchlist quotes unavailable, using cache")
		quotes = s.market.CachedQuotes(wl.Symbols())
	}
	return wl, quotes, nil
}

// Add watches symbol. Adding a symbol already on the list updates its notes.
func (s *Service) Add(ctx context.Context, symbol, notes string) (*models.WatchlistItem, error) {
	sym := models.NormalizeSymbol(symbol)
	if sym == "" {
		return nil, fmt.Errorf("%w: symbol is required", models.ErrInvalidInput)
	}

	wl, err := s.store.GetWatchlist(ctx)
	if err != nil {
		return nil, err
	}

	item := models.WatchlistItem{
		ID:      uuid.New().String(),
		Symbol:  sym,
		Notes:   notes,
		AddedAt: s.now().UTC(),
	}
	if existing, _ := wl.FindBySymbol(sym); existing != nil {
		item.ID = existing.ID
		item.AddedAt = existing.AddedAt
	}

	if err := s.store.AddWatchlistItem(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info().Str("symbol", sym).Msg("Watchlist item saved")
	return &item, nil
}

// Remove stops watching symbol.
func (s *Service) Remove(ctx context.Context, symbol string) error {
	sym := models.NormalizeSymbol(symbol)
	if sym == "" {
		return fmt.Errorf("%w: symbol is required", models.ErrInvalidInput)
	}
	return s.store.RemoveWatchlistItem(ctx, sym)
}
