package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidHolding is returned when a holding fails validation.
var ErrInvalidHolding = errors.New("invalid holding")

// Holding is a user-declared position.
type Holding struct {
	Symbol  string  `json:"symbol" badgerhold:"key"`
	Shares  float64 `json:"shares"`
	AvgCost float64 `json:"avg_cost"`
}

// Validate normalizes the symbol and checks that shares and avgCost are finite and positive.
func (h *Holding) Validate() error {
	h.Symbol = NormalizeSymbol(h.Symbol)
	if h.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidHolding)
	}
	if !positive(h.Shares) {
		return fmt.Errorf("%w: shares must be positive", ErrInvalidHolding)
	}
	if !positive(h.AvgCost) {
		return fmt.Errorf("%w: avg_cost must be positive", ErrInvalidHolding)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Symbols returns the symbols of the holdings in order.
func Symbols(holdings []Holding) []string {
	out := make([]string, len(holdings))
	for i, h := range holdings {
		out[i] = h.Symbol
	}
	return out
}

// GainLoss is the unrealized gain of a holding.
type GainLoss struct {
	Absolute float64 `json:"absolute"`
	Percent  float64 `json:"percent"`
}

// SectorWeight is one row of the sector allocation.
type SectorWeight struct {
	Sector         string  `json:"sector"`
	PercentOfTotal float64 `json:"percent_of_total"`
	Value          float64 `json:"value"`
}

// HoldingValuation pairs a holding with its current quote.
type HoldingValuation struct {
	Holding     Holding  `json:"holding"`
	Quote       Quote    `json:"quote"`
	Sector      string   `json:"sector"`
	MarketValue float64  `json:"market_value"`
	CostBasis   float64  `json:"cost_basis"`
	Gain        GainLoss `json:"gain"`
}

// PortfolioSummary is the derived view of all holdings at one point in time.
type PortfolioSummary struct {
	TotalValue float64            `json:"total_value"`
	TotalCost  float64            `json:"total_cost"`
	TotalGain  GainLoss           `json:"total_gain"`
	Holdings   []HoldingValuation `json:"holdings"`
	Allocation []SectorWeight     `json:"allocation"`
	AsOf       time.Time          `json:"as_of"`
}
