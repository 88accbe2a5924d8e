package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// HoldingStorage implements interfaces.HoldingStorage using BadgerDB.
type HoldingStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

// NewHoldingStorage creates a new holding storage backed by BadgerDB.
func NewHoldingStorage(db *BadgerDB, logger *common.Logger) *HoldingStorage {
	return &HoldingStorage{
		db:     db,
		logger: logger,
	}
}

// ListHoldings returns all holdings sorted by symbol.
func (s *HoldingStorage) ListHoldings(_ context.Context) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Store().Find(&holdings, nil); err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })
	return holdings, nil
}

// SaveHolding validates and upserts a holding keyed by its normalized symbol.
func (s *HoldingStorage) SaveHolding(_ context.Context, h models.Holding) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if err := s.db.Store().Upsert(h.Symbol, &h); err != nil {
		return fmt.Errorf("failed to save holding %s: %w", h.Symbol, err)
	}
	s.logger.Debug().Str("symbol", h.Symbol).Float64("shares", h.Shares).Msg("Holding saved")
	return nil
}

// DeleteHolding removes the holding for symbol.
func (s *HoldingStorage) DeleteHolding(_ context.Context, symbol string) error {
	sym := models.NormalizeSymbol(symbol)
	err := s.db.Store().Delete(sym, models.Holding{})
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("holding %s: %w", sym, models.ErrNotFound)
		}
		return fmt.Errorf("failed to delete holding %s: %w", sym, err)
	}
	return nil
}
