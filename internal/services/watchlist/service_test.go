package watchlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bobmcallan/vire-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMarket is a mock implementation of MarketService for testing
type MockMarket struct {
	mock.Mock
}

func (m *MockMarket) GetStockQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	args := m.Called(ctx, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Quote), args.Error(1)
}

func (m *MockMarket) CachedQuotes(symbols []string) []models.Quote {
	args := m.Called(symbols)
	return args.Get(0).([]models.Quote)
}

func (m *MockMarket) GetSeries(context.Context, string, models.Range) ([]models.HistoricalPoint, error) {
	return nil, nil
}

func (m *MockMarket) Search(context.Context, string) ([]models.SearchResult, error) { return nil, nil }

func (m *MockMarket) FetchMarketNews(context.Context, string) ([]models.NewsItem, error) {
	return nil, nil
}

// memStore is an in-memory WatchlistStorage.
type memStore struct {
	items map[string]models.WatchlistItem
}

func newMemStore() *memStore { return &memStore{items: map[string]models.WatchlistItem{}} }

func (s *memStore) GetWatchlist(context.Context) (*models.Watchlist, error) {
	wl := &models.Watchlist{Items: []models.WatchlistItem{}}
	for _, it := range s.items {
		wl.Items = append(wl.Items, it)
	}
	return wl, nil
}

func (s *memStore) AddWatchlistItem(_ context.Context, item models.WatchlistItem) error {
	s.items[item.Symbol] = item
	return nil
}

func (s *memStore) RemoveWatchlistItem(_ context.Context, symbol string) error {
	if _, ok := s.items[symbol]; !ok {
		return models.ErrNotFound
	}
	delete(s.items, symbol)
	return nil
}

func TestAdd_KeepsIdentityOnUpdate(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &MockMarket{}, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	first, err := svc.Add(ctx, " nvda ", "earnings")
	require.NoError(t, err)
	assert.Equal(t, "NVDA", first.Symbol)
	assert.NotEmpty(t, first.ID)

	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	second, err := svc.Add(ctx, "NVDA", "after earnings")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.AddedAt, second.AddedAt)
	assert.Equal(t, "after earnings", store.items["NVDA"].Notes)
}

func TestAdd_Blank(t *testing.T) {
	svc := NewService(newMemStore(), &MockMarket{}, nil)

	_, err := svc.Add(context.Background(), "  ", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestGet_FallsBackToCache(t *testing.T) {
	store := newMemStore()
	store.items["AMD"] = models.WatchlistItem{Symbol: "AMD"}
	market := &MockMarket{}
	market.On("GetStockQuotes", mock.Anything, []string{"AMD"}).Return(nil, errors.New("all providers failed"))
	market.On("CachedQuotes", []string{"AMD"}).Return([]models.Quote{{Symbol: "AMD", Error: "not cached"}})
	svc := NewService(store, market, nil)

	wl, quotes, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, wl.Items, 1)
	require.Len(t, quotes, 1)
	assert.Equal(t, "not cached", quotes[0].Error)
}

func TestGet_Empty(t *testing.T) {
	market := &MockMarket{}
	svc := NewService(newMemStore(), market, nil)

	wl, quotes, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, wl.Items)
	assert.Empty(t, quotes)
	market.AssertNotCalled(t, "GetStockQuotes", mock.Anything, mock.Anything)
}

func TestRemove(t *testing.T) {
	store := newMemStore()
	store.items["AMD"] = models.WatchlistItem{Symbol: "AMD"}
	svc := NewService(store, &MockMarket{}, nil)

	require.NoError(t, svc.Remove(context.Background(), "amd"))
	assert.ErrorIs(t, svc.Remove(context.Background(), "amd"), models.ErrNotFound)
}
