package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/vire-tracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// QuoteMap indexes quotes by normalized symbol.
func QuoteMap(quotes []models.Quote) map[string]models.Quote {
	m := make(map[string]models.Quote, len(quotes))
	for _, q := range quotes {
		m[models.NormalizeSymbol(q.Symbol)] = q
	}
	return m
}

// priceOf returns the usable price for symbol. Missing and error-flagged quotes have none.
func priceOf(quotes map[string]models.Quote, symbol string) (float64, bool) {
	q, ok := quotes[models.NormalizeSymbol(symbol)]
	if !ok || !q.Valid() {
		return 0, false
	}
	return q.Price, true
}

func marketValue(h models.Holding, price float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(h.Shares))
}

func costBasis(h models.Holding) decimal.Decimal {
	return decimal.NewFromFloat(h.AvgCost).Mul(decimal.NewFromFloat(h.Shares))
}

// PortfolioValue sums price x shares over holdings. A missing or errored quote contributes 0.
func PortfolioValue(holdings []models.Holding, quotes map[string]models.Quote) float64 {
	total := decimal.Zero
	for _, h := range holdings {
		if p, ok := priceOf(quotes, h.Symbol); ok {
			total = total.Add(marketValue(h, p))
		}
	}
	return total.InexactFloat64()
}

// Gain returns the unrealized gain of h at currentPrice. Percent is 0 when avgCost is 0.
func Gain(h models.Holding, currentPrice float64) models.GainLoss {
	cost := decimal.NewFromFloat(h.AvgCost)
	diff := decimal.NewFromFloat(currentPrice).Sub(cost)

	g := models.GainLoss{Absolute: diff.Mul(decimal.NewFromFloat(h.Shares)).InexactFloat64()}
	if !cost.IsZero() {
		g.Percent = diff.Div(cost).Mul(hundred).InexactFloat64()
	}
	return g
}

// SectorAllocation groups holding values by sector and normalizes them to 100%.
// Holdings without a usable quote are left out. Rows are sorted by weight,
// largest first. A zero total yields an empty list.
func SectorAllocation(holdings []models.Holding, quotes map[string]models.Quote, sectors SectorTable) []models.SectorWeight {
	values := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for _, h := range holdings {
		p, ok := priceOf(quotes, h.Symbol)
		if !ok {
			continue
		}
		v := marketValue(h, p)
		if v.IsZero() {
			continue
		}
		sector := sectors.Lookup(h.Symbol)
		values[sector] = values[sector].Add(v)
		total = total.Add(v)
	}

	out := make([]models.SectorWeight, 0, len(values))
	if total.IsZero() {
		return out
	}
	for sector, v := range values {
		out = append(out, models.SectorWeight{
			Sector:         sector,
			PercentOfTotal: v.Div(total).Mul(hundred).InexactFloat64(),
			Value:          v.InexactFloat64(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PercentOfTotal != out[j].PercentOfTotal {
			return out[i].PercentOfTotal > out[j].PercentOfTotal
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}
