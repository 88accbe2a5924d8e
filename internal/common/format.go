package common

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no display currency is configured.
const DefaultCurrency = "USD"

// FormatMoney formats an amount using the currency's grapheme and separators.
// Unknown currency codes fall back to USD.
func FormatMoney(v float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	cur := money.GetCurrency(code)
	if cur == nil {
		code = DefaultCurrency
		cur = money.GetCurrency(code)
	}
	minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// FormatSignedMoney formats an amount with a +/- prefix
func FormatSignedMoney(v float64, currency string) string {
	if v >= 0 {
		return "+" + FormatMoney(v, currency)
	}
	return FormatMoney(v, currency)
}

// FormatSignedPct formats a percentage with +/- prefix
func FormatSignedPct(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}
