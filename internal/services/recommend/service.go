// Package recommend produces rule-based BUY/HOLD/SELL suggestions from daily
// price moves and held positions.
package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
	"github.com/bobmcallan/vire-tracker/internal/models"
	"github.com/bobmcallan/vire-tracker/internal/services/portfolio"
)

// Thresholds for the daily move rules.
const (
	MoveThreshold     = 2.0  // percent
	LockInGainPercent = 25.0 // percent unrealized gain
	MaxConfidence     = 0.95
)

// Narrator writes a rationale for a recommendation. holding is nil for
// symbols that are not held.
type Narrator interface {
	Narrate(ctx context.Context, rec models.Recommendation, holding *models.Holding) (string, error)
}

// Service rates symbols against their current quotes.
type Service struct {
	market   interfaces.MarketService
	holdings interfaces.HoldingStorage
	narrator Narrator
	currency string
	logger   *common.Logger
}

// NewService creates a recommendation service. holdings and narrator may be nil.
func NewService(market interfaces.MarketService, holdings interfaces.HoldingStorage, narrator Narrator, currency string, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if currency == "" {
		currency = common.DefaultCurrency
	}
	return &Service{
		market:   market,
		holdings: holdings,
		narrator: narrator,
		currency: currency,
		logger:   logger,
	}
}

// Recommend rates the requested symbols plus every held symbol. Symbols without
// a usable quote are skipped. Results are ordered by confidence, highest first.
func (s *Service) Recommend(ctx context.Context, symbols []string) ([]models.Recommendation, error) {
	held := make(map[string]models.Holding)
	if s.holdings != nil {
		holdings, err := s.holdings.ListHoldings(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load holdings: %w", err)
		}
		for _, h := range holdings {
			held[models.NormalizeSymbol(h.Symbol)] = h
		}
	}

	seen := make(map[string]bool)
	var all []string
	add := func(sym string) {
		if n := models.NormalizeSymbol(sym); n != "" && !seen[n] {
			seen[n] = true
			all = append(all, n)
		}
	}
	for _, sym := range symbols {
		add(sym)
	}
	for _, h := range sortedHoldings(held) {
		add(h.Symbol)
	}

	recs := []models.Recommendation{}
	if len(all) == 0 {
		return recs, nil
	}

	quotes, err := s.market.GetStockQuotes(ctx, all)
	if err != nil {
		return nil, err
	}

	for _, q := range quotes {
		if !q.Valid() {
			s.logger.Debug().Str("symbol", q.Symbol).Str("error", q.Error).Msg("Skipping symbol without quote")
			continue
		}
		var hp *models.Holding
		if h, ok := held[q.Symbol]; ok {
			hp = &h
		}
		rec := Evaluate(q, hp)
		rec.Rationale = Rationale(rec, hp, s.currency)
		if s.narrator != nil {
			text, err := s.narrator.Narrate(ctx, rec, hp)
			if err != nil {
				s.logger.Warn().Str("symbol", rec.Symbol).Err(err).Msg("Narrator failed, using template rationale")
			} else if text != "" {
				rec.Rationale = text
			}
		}
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Confidence != recs[j].Confidence {
			return recs[i].Confidence > recs[j].Confidence
		}
		return recs[i].Symbol < recs[j].Symbol
	})
	return recs, nil
}

func sortedHoldings(held map[string]models.Holding) []models.Holding {
	out := make([]models.Holding, 0, len(held))
	for _, h := range held {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Evaluate applies the daily move rules to q. A held position up at least
// LockInGainPercent on a down day is a SELL regardless of the move size.
func Evaluate(q models.Quote, holding *models.Holding) models.Recommendation {
	pct := q.PercentChange
	rec := models.Recommendation{
		Symbol:        q.Symbol,
		Price:         q.Price,
		PercentChange: pct,
		Held:          holding != nil,
		Confidence:    Confidence(pct),
	}

	switch {
	case pct >= MoveThreshold:
		rec.Action = models.ActionBuy
	case pct <= -MoveThreshold:
		rec.Action = models.ActionSell
	default:
		rec.Action = models.ActionHold
	}

	if holding != nil && pct < 0 {
		if portfolio.Gain(*holding, q.Price).Percent >= LockInGainPercent {
			rec.Action = models.ActionSell
		}
	}
	return rec
}

// Confidence is min(0.95, 0.5 + |pct|/10).
func Confidence(pct float64) float64 {
	return math.Min(MaxConfidence, 0.5+math.Abs(pct)/10)
}

// Rationale renders the template explanation for rec.
func Rationale(rec models.Recommendation, holding *models.Holding, currency string) string {
	move := fmt.Sprintf("%s moved %s today to %s", rec.Symbol, common.FormatSignedPct(rec.PercentChange), common.FormatMoney(rec.Price, currency))

	if holding != nil && rec.Action == models.ActionSell && rec.PercentChange > -MoveThreshold {
		g := portfolio.Gain(*holding, rec.Price)
		return fmt.Sprintf("%s. The position is up %s (%s) on cost; consider locking in gains.",
			move, common.FormatSignedPct(g.Percent), common.FormatSignedMoney(g.Absolute, currency))
	}

	switch rec.Action {
	case models.ActionBuy:
		return move + ". Strong upward momentum."
	case models.ActionSell:
		return move + ". Sharp decline; consider reducing exposure."
	default:
		return move + ". No strong signal either way."
	}
}
