package badger

import (
	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/config"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger.
type Manager struct {
	db        *BadgerDB
	holdings  interfaces.HoldingStorage
	watchlist interfaces.WatchlistStorage
	logger    *common.Logger
}

// NewManager creates a new Badger storage manager.
func NewManager(logger *common.Logger, cfg *config.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, cfg)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		holdings:  NewHoldingStorage(db, logger),
		watchlist: NewWatchlistStorage(db, logger),
		logger:    logger,
	}

	logger.Debug().Msg("Badger storage manager initialized")

	return manager, nil
}

// HoldingStorage returns the holdings storage interface.
func (m *Manager) HoldingStorage() interfaces.HoldingStorage {
	return m.holdings
}

// WatchlistStorage returns the watchlist storage interface.
func (m *Manager) WatchlistStorage() interfaces.WatchlistStorage {
	return m.watchlist
}

// DB returns the underlying database connection.
func (m *Manager) DB() interface{} {
	if m.db != nil {
		return m.db.Store()
	}
	return nil
}

// Close closes the database connection.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
