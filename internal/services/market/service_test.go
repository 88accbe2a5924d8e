package market

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/models"
	"github.com/bobmcallan/vire-tracker/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProvider is a mock implementation of ProviderClient and NewsProvider for testing
type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) FetchQuotes(ctx context.Context, symbols []string) ([]models.Quote, error) {
	args := m.Called(ctx, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Quote), args.Error(1)
}

func (m *MockProvider) FetchSeries(ctx context.Context, symbol string) ([]models.HistoricalPoint, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoricalPoint), args.Error(1)
}

func (m *MockProvider) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchResult), args.Error(1)
}

func (m *MockProvider) FetchNews(ctx context.Context, category string) ([]models.NewsItem, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NewsItem), args.Error(1)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(providers ...*MockProvider) (*Service, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)}
	clients := make([]interfaces.ProviderClient, len(providers))
	news := make([]interfaces.NewsProvider, len(providers))
	for i, p := range providers {
		clients[i] = p
		news[i] = p
	}
	svc := NewService(
		resolver.New[interfaces.ProviderClient](nil, clients...),
		resolver.New[interfaces.NewsProvider](nil, news...),
		Options{TTL: 300 * time.Second, Clock: clock.Now},
		nil,
	)
	return svc, clock
}

var errDown = errors.New("connection refused")

func TestGetStockQuotes_CacheHitIsIdempotent(t *testing.T) {
	p := &MockProvider{name: "finnhub"}
	p.On("FetchQuotes", mock.Anything, []string{"AAPL", "MSFT"}).
		Return([]models.Quote{{Symbol: "AAPL", Price: 190}, {Symbol: "MSFT", Price: 410}}, nil).Once()
	svc, clock := newTestService(p)
	ctx := context.Background()

	first, err := svc.GetStockQuotes(ctx, []string{"aapl", " MSFT "})
	require.NoError(t, err)

	clock.Advance(299 * time.Second)
	second, err := svc.GetStockQuotes(ctx, []string{"AAPL", "MSFT"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "finnhub", second[0].Source)
	p.AssertNumberOfCalls(t, "FetchQuotes", 1)
}

func TestGetStockQuotes_RefetchesOnlyStaleSymbols(t *testing.T) {
	p := &MockProvider{name: "finnhub"}
	p.On("FetchQuotes", mock.Anything, []string{"AAPL"}).
		Return([]models.Quote{{Symbol: "AAPL", Price: 190}}, nil).Once()
	p.On("FetchQuotes", mock.Anything, []string{"MSFT"}).
		Return([]models.Quote{{Symbol: "MSFT", Price: 410}}, nil).Once()
	svc, clock := newTestService(p)
	ctx := context.Background()

	_, err := svc.GetStockQuotes(ctx, []string{"AAPL"})
	require.NoError(t, err)
	clock.Advance(10 * time.Second)

	quotes, err := svc.GetStockQuotes(ctx, []string{"AAPL", "MSFT", "AAPL"})
	require.NoError(t, err)
	require.Len(t, quotes, 3)
	assert.Equal(t, "AAPL", quotes[0].Symbol)
	assert.Equal(t, 410.0, quotes[1].Price)
	assert.Equal(t, "AAPL", quotes[2].Symbol)
	p.AssertExpectations(t)
}

func TestGetStockQuotes_TTLBoundaryRefetches(t *testing.T) {
	p := &MockProvider{name: "finnhub"}
	p.On("FetchQuotes", mock.Anything, []string{"AAPL"}).
		Return([]models.Quote{{Symbol: "AAPL", Price: 190}}, nil).Twice()
	svc, clock := newTestService(p)
	ctx := context.Background()

	_, err := svc.GetStockQuotes(ctx, []string{"AAPL"})
	require.NoError(t, err)

	clock.Advance(300 * time.Second)
	_, err = svc.GetStockQuotes(ctx, []string{"AAPL"})
	require.NoError(t, err)

	p.AssertNumberOfCalls(t, "FetchQuotes", 2)
}

func TestGetStockQuotes_FallbackToSecondary(t *testing.T) {
	a := &MockProvider{name: "finnhub"}
	b := &MockProvider{name: "yahoo"}
	a.On("FetchQuotes", mock.Anything, []string{"AAPL"}).Return(nil, errDown)
	b.On("FetchQuotes", mock.Anything, []string{"AAPL"}).
		Return([]models.Quote{{Symbol: "AAPL", Price: 191}}, nil)
	svc, _ := newTestService(a, b)

	quotes, err := svc.GetStockQuotes(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 191.0, quotes[0].Price)
	assert.Equal(t, "yahoo", quotes[0].Source)
}

func TestGetStockQuotes_ErrorQuoteNotCached(t *testing.T) {
	p := &MockProvider{name: "finnhub"}
	p.On("FetchQuotes", mock.Anything, []string{"ZZZZ"}).
		Return([]models.Quote{{Symbol: "ZZZZ", Error: "symbol not found"}}, nil).Twice()
	svc, _ := newTestService(p)
	ctx := context.Background()

	quotes, err := svc.GetStockQuotes(ctx, []string{"ZZZZ"})
	require.NoError(t, err)
	assert.Equal(t, "symbol not found", quotes[0].Error)

	_, err = svc.GetStockQuotes(ctx, []string{"ZZZZ"})
	require.NoError(t, err)
	p.AssertNumberOfCalls(t, "FetchQuotes", 2)
}

func TestGetStockQuotes_ErrorQuoteKeepsLastGood(t *testing.T) {
	p := &MockProvider{name: "finnhub"}
	p.On("FetchQuotes", mock.Anything, []string{"AAPL"}).
		Return([]models.Quote{{Symbol: "AAPL", Price: 190}}, nil).Once()
	p.On("FetchQuotes", mock.Anything, []string{"AAPL"}).
		Return([]models.Quote{{Symbol: "AAPL", Error: "no price available"}}, nil).Once()
	svc, clock := newTestService(p)
	ctx := context.Background()

	_, err := svc.GetStockQuotes(ctx, []string{"AAPL"})
	require.NoError(t, err)
	clock.Advance(301 * time.Second)

	quotes, err := svc.GetStockQuotes(ctx, []string{"AAPL"})
	require.NoError(t, err)
	assert.Empty(t, quotes[0].Error)
	assert.Equal(t, 190.0, quotes[0].Price)
}

func TestGetStockQuotes_AllFailedServesStale(t *testing.T) {
	a := &MockProvider{name: "finnhub"}
	b := &MockProvider{name: "yahoo"}
	a.On("FetchQuotes", mock.Anything, []string{"AAPL"}).
		Return([]models.Quote{{Symbol: "AAPL", Price: 190}}, nil).Once()
	a.On("FetchQuotes", mock.Anything, []string{"AAPL", "TSLA"}).Return(nil, errDown)
	b.On("FetchQuotes", mock.Anything, []string{"AAPL", "TSLA"}).Return(nil, errDown)
	svc, clock := newTestService(a, b)
	ctx := context.Background()

	_, err := svc.GetStockQuotes(ctx, []string{"AAPL"})
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)

	quotes, err := svc.GetStockQuotes(ctx, []string{"AAPL", "TSLA"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, 190.0, quotes[0].Price)
	assert.Equal(t, "TSLA", quotes[1].Symbol)
	assert.NotEmpty(t, quotes[1].Error)
}

func TestGetStockQuotes_AllFailedNoCache(t *testing.T) {
	a := &MockProvider{name: "finnhub"}
	b := &MockProvider{name: "yahoo"}
	a.On("FetchQuotes", mock.Anything, []string{"AAPL"}).Return(nil, errDown)
	b.On("FetchQuotes", mock.Anything, []string{"AAPL"}).Return(nil, errDown)
	svc, _ := newTestService(a, b)

	_, err := svc.GetStockQuotes(context.Background(), []string{"AAPL"})
	require.Error(t, err)

	var apf *resolver.AllProvidersFailedError
	require.ErrorAs(t, err, &apf)
	assert.Equal(t, []string{"finnhub", "yahoo"}, apf.Providers())
}

func TestGetStockQuotes_EmptyInput(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetStockQuotes(context.Background(), []string{" ", ""})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCachedQuotes(t *testing.T) {
	p := &MockProvider{name: "finnhub"}
	p.On("FetchQuotes", mock.Anything, []string{"AAPL"}).
		Return([]models.Quote{{Symbol: "AAPL", Price: 190}}, nil).Once()
	svc, clock := newTestService(p)

	_, err := svc.GetStockQuotes(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	clock.Advance(time.Hour)

	quotes := svc.CachedQuotes([]string{"aapl", "MSFT"})
	require.Len(t, quotes, 2)
	assert.Equal(t, 190.0, quotes[0].Price)
	assert.NotEmpty(t, quotes[1].Error)
	p.AssertNumberOfCalls(t, "FetchQuotes", 1)
}

func TestGetSeries_TrimsRangeAndCaches(t *testing.T) {
	p := &MockProvider{name: "finnhub"}
	p.On("FetchSeries", mock.Anything, "AAPL").Return([]models.HistoricalPoint{
		{Date: "2026-03-09", Value: 12},
		{Date: "2026-03-05", Value: 11},
		{Date: "2026-01-02", Value: 10},
	}, nil).Once()
	svc, _ := newTestService(p)
	ctx := context.Background()

	week, err := svc.GetSeries(ctx, "aapl", models.Range1W)
	require.NoError(t, err)
	assert.Len(t, week, 2)

	all, err := svc.GetSeries(ctx, "AAPL", models.RangeAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	p.AssertNumberOfCalls(t, "FetchSeries", 1)
}

func TestSearch_FallsPastUnsupported(t *testing.T) {
	a := &MockProvider{name: "alpaca"}
	b := &MockProvider{name: "yahoo"}
	a.On("Search", mock.Anything, "apple").Return(nil, interfaces.ErrUnsupported)
	b.On("Search", mock.Anything, "apple").Return([]models.SearchResult{{Symbol: "AAPL", Name: "Apple Inc."}}, nil)
	svc, _ := newTestService(a, b)

	results, err := svc.Search(context.Background(), " apple ")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].Symbol)
}

func TestFetchMarketNews(t *testing.T) {
	p := &MockProvider{name: "finnhub"}
	p.On("FetchNews", mock.Anything, "crypto").Return([]models.NewsItem{{ID: "1", Headline: "BTC rallies", Category: "crypto"}}, nil).Once()
	p.On("FetchNews", mock.Anything, "crypto").Return(nil, errDown)
	svc, clock := newTestService(p)
	ctx := context.Background()

	items, err := svc.FetchMarketNews(ctx, "Crypto")
	require.NoError(t, err)
	require.Len(t, items, 1)

	clock.Advance(time.Hour)
	stale, err := svc.FetchMarketNews(ctx, "crypto")
	require.NoError(t, err)
	assert.Equal(t, items, stale)
}

func TestFetchMarketNews_InvalidCategory(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.FetchMarketNews(context.Background(), "sports")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCachedSlicesAreCopied(t *testing.T) {
	p := &MockProvider{name: "finnhub"}
	p.On("FetchSeries", mock.Anything, "AAPL").Return([]models.HistoricalPoint{
		{Date: "2026-03-09", Value: 12},
		{Date: "2026-03-05", Value: 11},
	}, nil).Once()
	p.On("FetchNews", mock.Anything, "general").Return([]models.NewsItem{{ID: "1", Headline: "Markets open"}}, nil).Once()
	svc, _ := newTestService(p)
	ctx := context.Background()

	all, err := svc.GetSeries(ctx, "AAPL", models.RangeAll)
	require.NoError(t, err)
	all[0].Value = -1

	again, err := svc.GetSeries(ctx, "AAPL", models.RangeAll)
	require.NoError(t, err)
	assert.Equal(t, 12.0, again[0].Value)

	news, err := svc.FetchMarketNews(ctx, "")
	require.NoError(t, err)
	news[0].Headline = "rewritten"

	news, err = svc.FetchMarketNews(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, "Markets open", news[0].Headline)
	p.AssertNumberOfCalls(t, "FetchSeries", 1)
	p.AssertNumberOfCalls(t, "FetchNews", 1)
}
