package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

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

func (m *MockMarket) CachedQuotes(symbols []string) []models.Quote { return nil }

func (m *MockMarket) GetSeries(context.Context, string, models.Range) ([]models.HistoricalPoint, error) {
	return nil, nil
}

func (m *MockMarket) Search(context.Context, string) ([]models.SearchResult, error) { return nil, nil }

func (m *MockMarket) FetchMarketNews(context.Context, string) ([]models.NewsItem, error) {
	return nil, nil
}

type stubHoldings struct{ items []models.Holding }

func (s *stubHoldings) ListHoldings(context.Context) ([]models.Holding, error) { return s.items, nil }
func (s *stubHoldings) SaveHolding(context.Context, models.Holding) error     { return nil }
func (s *stubHoldings) DeleteHolding(context.Context, string) error           { return nil }

type stubNarrator struct {
	text string
	err  error
}

func (n *stubNarrator) Narrate(context.Context, models.Recommendation, *models.Holding) (string, error) {
	return n.text, n.err
}

func TestEvaluate_Thresholds(t *testing.T) {
	tests := []struct {
		pct  float64
		want models.Action
	}{
		{2.0, models.ActionBuy},
		{5.5, models.ActionBuy},
		{1.99, models.ActionHold},
		{0, models.ActionHold},
		{-1.99, models.ActionHold},
		{-2.0, models.ActionSell},
		{-7, models.ActionSell},
	}
	for _, tt := range tests {
		rec := Evaluate(models.Quote{Symbol: "AAPL", Price: 100, PercentChange: tt.pct}, nil)
		assert.Equal(t, tt.want, rec.Action, "pct %v", tt.pct)
	}
}

func TestEvaluate_LockInGains(t *testing.T) {
	h := &models.Holding{Symbol: "NVDA", Shares: 10, AvgCost: 80}

	rec := Evaluate(models.Quote{Symbol: "NVDA", Price: 100, PercentChange: -0.5}, h)
	assert.Equal(t, models.ActionSell, rec.Action)
	assert.True(t, rec.Held)

	up := Evaluate(models.Quote{Symbol: "NVDA", Price: 100, PercentChange: 0.5}, h)
	assert.Equal(t, models.ActionHold, up.Action)

	small := Evaluate(models.Quote{Symbol: "NVDA", Price: 90, PercentChange: -0.5}, h)
	assert.Equal(t, models.ActionHold, small.Action)
}

func TestConfidence(t *testing.T) {
	assert.InDelta(t, 0.5, Confidence(0), 1e-9)
	assert.InDelta(t, 0.75, Confidence(-2.5), 1e-9)
	assert.InDelta(t, 0.95, Confidence(4.5), 1e-9)
	assert.InDelta(t, 0.95, Confidence(12), 1e-9)
}

func TestRecommend_SortedAndMerged(t *testing.T) {
	market := &MockMarket{}
	market.On("GetStockQuotes", mock.Anything, []string{"TSLA", "AAPL", "MSFT"}).Return([]models.Quote{
		{Symbol: "TSLA", Price: 250, PercentChange: -3},
		{Symbol: "AAPL", Price: 190, PercentChange: 1},
		{Symbol: "MSFT", Error: "symbol not found"},
	}, nil)
	holdings := &stubHoldings{items: []models.Holding{
		{Symbol: "MSFT", Shares: 1, AvgCost: 300},
		{Symbol: "AAPL", Shares: 5, AvgCost: 180},
	}}
	svc := NewService(market, holdings, nil, "USD", nil)

	recs, err := svc.Recommend(context.Background(), []string{"tsla", "AAPL"})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "TSLA", recs[0].Symbol)
	assert.Equal(t, models.ActionSell, recs[0].Action)
	assert.False(t, recs[0].Held)
	assert.Equal(t, "AAPL", recs[1].Symbol)
	assert.True(t, recs[1].Held)
	assert.Contains(t, recs[1].Rationale, "$190.00")
	market.AssertExpectations(t)
}

func TestRecommend_NarratorFallback(t *testing.T) {
	market := &MockMarket{}
	market.On("GetStockQuotes", mock.Anything, []string{"AAPL"}).Return([]models.Quote{
		{Symbol: "AAPL", Price: 190, PercentChange: 2.5},
	}, nil)

	narrated := NewService(market, nil, &stubNarrator{text: "Momentum is strong."}, "", nil)
	recs, err := narrated.Recommend(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.Equal(t, "Momentum is strong.", recs[0].Rationale)

	failing := NewService(market, nil, &stubNarrator{err: errors.New("quota")}, "", nil)
	recs, err = failing.Recommend(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(recs[0].Rationale, "AAPL moved +2.50%"))
}

func TestRecommend_Empty(t *testing.T) {
	market := &MockMarket{}
	svc := NewService(market, nil, nil, "", nil)

	recs, err := svc.Recommend(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
	market.AssertNotCalled(t, "GetStockQuotes", mock.Anything, mock.Anything)
}

func TestRationale_LockIn(t *testing.T) {
	h := &models.Holding{Symbol: "NVDA", Shares: 10, AvgCost: 80}
	rec := Evaluate(models.Quote{Symbol: "NVDA", Price: 100, PercentChange: -0.5}, h)

	text := Rationale(rec, h, "USD")
	assert.Contains(t, text, "locking in gains")
	assert.Contains(t, text, "+25.00%")
	assert.Contains(t, text, "+$200.00")
}
