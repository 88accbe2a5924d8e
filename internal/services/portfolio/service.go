// Package portfolio derives portfolio valuations from holdings and market quotes.
package portfolio

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

const maxSeriesFetches = 4

// Service values holdings against live market data.
// Nothing derived here is cached; every call recomputes from the latest quotes.
type Service struct {
	market   interfaces.MarketService
	holdings interfaces.HoldingStorage
	sectors  SectorTable
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates a portfolio service. holdings may be nil when callers
// only use Summary and History with explicit holdings.
func NewService(market interfaces.MarketService, holdings interfaces.HoldingStorage, sectors SectorTable, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if sectors == nil {
		sectors = DefaultSectors()
	}
	return &Service{
		market:   market,
		holdings: holdings,
		sectors:  sectors,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) loadHoldings(ctx context.Context) ([]models.Holding, error) {
	if s.holdings == nil {
		return nil, nil
	}
	return s.holdings.ListHoldings(ctx)
}

// GetPortfolioValue values the stored holdings.
func (s *Service) GetPortfolioValue(ctx context.Context) (*models.PortfolioSummary, error) {
	holdings, err := s.loadHoldings(ctx)
	if err != nil {
		return nil, err
	}
	return s.Summary(ctx, holdings)
}

// GetPortfolioHistory returns the stored holdings' daily value over rng.
func (s *Service) GetPortfolioHistory(ctx context.Context, rng models.Range) ([]models.HistoricalPoint, error) {
	holdings, err := s.loadHoldings(ctx)
	if err != nil {
		return nil, err
	}
	return s.History(ctx, holdings, rng)
}

// Summary fetches current quotes for holdings and returns the full valuation.
// An empty holdings list yields a zero summary without touching the market.
func (s *Service) Summary(ctx context.Context, holdings []models.Holding) (*models.PortfolioSummary, error) {
	summary := &models.PortfolioSummary{
		Holdings:   []models.HoldingValuation{},
		Allocation: []models.SectorWeight{},
		AsOf:       s.now().UTC(),
	}
	if len(holdings) == 0 {
		return summary, nil
	}

	quotes, err := s.market.GetStockQuotes(ctx, models.Symbols(holdings))
	if err != nil {
		return nil, err
	}
	qm := QuoteMap(quotes)

	totalCost := decimal.Zero
	valuedCost := decimal.Zero
	gain := decimal.Zero

	for _, h := range holdings {
		sym := models.NormalizeSymbol(h.Symbol)
		q, ok := qm[sym]
		if !ok {
			q = models.ErrorQuote(sym, "", "quote unavailable")
		}

		cost := costBasis(h)
		totalCost = totalCost.Add(cost)

		v := models.HoldingValuation{
			Holding:   h,
			Quote:     q,
			Sector:    s.sectors.Lookup(sym),
			CostBasis: cost.InexactFloat64(),
		}
		if q.Valid() {
			mv := marketValue(h, q.Price)
			v.MarketValue = mv.InexactFloat64()
			v.Gain = Gain(h, q.Price)
			valuedCost = valuedCost.Add(cost)
			gain = gain.Add(mv.Sub(cost))
		}
		summary.Holdings = append(summary.Holdings, v)
	}

	summary.TotalValue = PortfolioValue(holdings, qm)
	summary.TotalCost = totalCost.InexactFloat64()
	summary.TotalGain.Absolute = gain.InexactFloat64()
	if !valuedCost.IsZero() {
		summary.TotalGain.Percent = gain.Div(valuedCost).Mul(hundred).InexactFloat64()
	}
	summary.Allocation = SectorAllocation(holdings, qm, s.sectors)

	s.logger.Debug().Int("holdings", len(holdings)).Float64("total_value", summary.TotalValue).Msg("Portfolio valued")
	return summary, nil
}

// History returns Σ close x shares per date over rng, newest-first.
// A symbol without a close on some date carries its last earlier close
// forward; before its first close it contributes 0. A symbol whose series
// cannot be fetched contributes 0 throughout; the error is returned only
// when no series could be fetched at all.
func (s *Service) History(ctx context.Context, holdings []models.Holding, rng models.Range) ([]models.HistoricalPoint, error) {
	if len(holdings) == 0 {
		return []models.HistoricalPoint{}, nil
	}

	shares := make(map[string]decimal.Decimal)
	var symbols []string
	for _, h := range holdings {
		sym := models.NormalizeSymbol(h.Symbol)
		if _, ok := shares[sym]; !ok {
			symbols = append(symbols, sym)
			shares[sym] = decimal.Zero
		}
		shares[sym] = shares[sym].Add(decimal.NewFromFloat(h.Shares))
	}

	var (
		mu       sync.Mutex
		series   = make(map[string][]models.HistoricalPoint, len(symbols))
		firstErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxSeriesFetches)
	for _, sym := range symbols {
		g.Go(func() error {
			points, err := s.market.GetSeries(gctx, sym, rng)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				s.logger.Warn().Str("symbol", sym).Err(err).Msg("Series unavailable, excluded from history")
				return nil
			}
			series[sym] = points
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(series) == 0 && firstErr != nil {
		return nil, firstErr
	}

	return combineSeries(series, shares), nil
}

// combineSeries merges newest-first per-symbol series into one newest-first
// value series over the union of their dates.
func combineSeries(series map[string][]models.HistoricalPoint, shares map[string]decimal.Decimal) []models.HistoricalPoint {
	closes := make(map[string]map[string]float64, len(series))
	dateSet := make(map[string]struct{})
	for sym, points := range series {
		byDate := make(map[string]float64, len(points))
		for _, p := range points {
			byDate[p.Date] = p.Value
			dateSet[p.Date] = struct{}{}
		}
		closes[sym] = byDate
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	last := make(map[string]decimal.Decimal, len(series))
	out := make([]models.HistoricalPoint, len(dates))
	for i, d := range dates {
		total := decimal.Zero
		for sym, byDate := range closes {
			if v, ok := byDate[d]; ok {
				last[sym] = decimal.NewFromFloat(v)
			}
			if c, ok := last[sym]; ok {
				total = total.Add(c.Mul(shares[sym]))
			}
		}
		// Oldest date fills the last slot.
		out[len(dates)-1-i] = models.HistoricalPoint{Date: d, Value: total.InexactFloat64()}
	}
	return out
}
