package badger

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/config"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

func setupTestDB(t *testing.T) (*BadgerDB, func()) {
	t.Helper()

	dir := t.TempDir()
	logger := common.NewSilentLogger()

	cfg := &config.BadgerConfig{Path: dir}
	db, err := NewBadgerDB(logger, cfg)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, cleanup
}

func TestHoldingStorage_SaveAndList(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHoldingStorage(db, common.NewSilentLogger())
	ctx := context.Background()

	if err := store.SaveHolding(ctx, models.Holding{Symbol: " msft", Shares: 5, AvgCost: 400}); err != nil {
		t.Fatalf("SaveHolding failed: %v", err)
	}
	if err := store.SaveHolding(ctx, models.Holding{Symbol: "AAPL", Shares: 10, AvgCost: 150}); err != nil {
		t.Fatalf("SaveHolding failed: %v", err)
	}

	holdings, err := store.ListHoldings(ctx)
	if err != nil {
		t.Fatalf("ListHoldings failed: %v", err)
	}
	if len(holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(holdings))
	}
	if holdings[0].Symbol != "AAPL" || holdings[1].Symbol != "MSFT" {
		t.Errorf("expected sorted normalized symbols, got %s, %s", holdings[0].Symbol, holdings[1].Symbol)
	}
}

func TestHoldingStorage_Upsert(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHoldingStorage(db, common.NewSilentLogger())
	ctx := context.Background()

	store.SaveHolding(ctx, models.Holding{Symbol: "AAPL", Shares: 10, AvgCost: 150})
	// Overwrite
	if err := store.SaveHolding(ctx, models.Holding{Symbol: "aapl", Shares: 12, AvgCost: 155}); err != nil {
		t.Fatalf("SaveHolding (upsert) failed: %v", err)
	}

	holdings, _ := store.ListHoldings(ctx)
	if len(holdings) != 1 {
		t.Fatalf("expected 1 holding, got %d", len(holdings))
	}
	if holdings[0].Shares != 12 || holdings[0].AvgCost != 155 {
		t.Errorf("expected updated holding, got %+v", holdings[0])
	}
}

func TestHoldingStorage_RejectsInvalid(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHoldingStorage(db, common.NewSilentLogger())
	ctx := context.Background()

	err := store.SaveHolding(ctx, models.Holding{Symbol: "AAPL", Shares: 0, AvgCost: 150})
	if !errors.Is(err, models.ErrInvalidHolding) {
		t.Errorf("expected ErrInvalidHolding, got %v", err)
	}

	err = store.SaveHolding(ctx, models.Holding{Symbol: "AAPL", Shares: math.NaN(), AvgCost: 150})
	if !errors.Is(err, models.ErrInvalidHolding) {
		t.Errorf("expected ErrInvalidHolding for NaN shares, got %v", err)
	}

	holdings, _ := store.ListHoldings(ctx)
	if len(holdings) != 0 {
		t.Errorf("expected nothing stored, got %d", len(holdings))
	}
}

func TestHoldingStorage_Delete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewHoldingStorage(db, common.NewSilentLogger())
	ctx := context.Background()

	store.SaveHolding(ctx, models.Holding{Symbol: "AAPL", Shares: 10, AvgCost: 150})

	if err := store.DeleteHolding(ctx, "aapl"); err != nil {
		t.Fatalf("DeleteHolding failed: %v", err)
	}
	if err := store.DeleteHolding(ctx, "AAPL"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestWatchlistStorage_AddAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWatchlistStorage(db, common.NewSilentLogger())
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	store.AddWatchlistItem(ctx, models.WatchlistItem{ID: "2", Symbol: "TSLA", AddedAt: base.Add(time.Hour)})
	store.AddWatchlistItem(ctx, models.WatchlistItem{ID: "1", Symbol: "nvda", Notes: "earnings", AddedAt: base})

	wl, err := store.GetWatchlist(ctx)
	if err != nil {
		t.Fatalf("GetWatchlist failed: %v", err)
	}
	if len(wl.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(wl.Items))
	}
	if wl.Items[0].Symbol != "NVDA" || wl.Items[0].Notes != "earnings" {
		t.Errorf("expected NVDA first, got %+v", wl.Items[0])
	}
	if !wl.Items[0].AddedAt.Equal(base) {
		t.Errorf("expected AddedAt to round-trip, got %v", wl.Items[0].AddedAt)
	}
}

func TestWatchlistStorage_EmptyAndRemove(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWatchlistStorage(db, common.NewSilentLogger())
	ctx := context.Background()

	wl, err := store.GetWatchlist(ctx)
	if err != nil {
		t.Fatalf("GetWatchlist on empty store failed: %v", err)
	}
	if wl.Items == nil || len(wl.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %v", wl.Items)
	}

	if err := store.AddWatchlistItem(ctx, models.WatchlistItem{Symbol: " "}); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank symbol, got %v", err)
	}

	store.AddWatchlistItem(ctx, models.WatchlistItem{Symbol: "AMD"})
	if err := store.RemoveWatchlistItem(ctx, "amd"); err != nil {
		t.Fatalf("RemoveWatchlistItem failed: %v", err)
	}
	if err := store.RemoveWatchlistItem(ctx, "AMD"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNewManager(t *testing.T) {
	cfg := &config.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")}
	mgr, err := NewManager(common.NewSilentLogger(), cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer mgr.Close()

	if mgr.HoldingStorage() == nil || mgr.WatchlistStorage() == nil {
		t.Fatal("expected storages to be initialized")
	}
	if mgr.DB() == nil {
		t.Error("expected underlying store")
	}
}
