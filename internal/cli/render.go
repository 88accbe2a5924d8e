package cli

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

// cell escapes pipes so provider text cannot break a table row.
func cell(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
}

func quotesMarkdown(quotes []models.Quote, currency string) string {
	var b strings.Builder
	b.WriteString("# Quotes\n\n")
	b.WriteString("| Symbol | Price | Change | % | Source |\n")
	b.WriteString("|---|---:|---:|---:|---|\n")
	for _, q := range quotes {
		if !q.Valid() {
			fmt.Fprintf(&b, "| %s | N/A | | | %s |\n", q.Symbol, cell(q.Error))
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			q.Symbol,
			common.FormatMoney(q.Price, currency),
			common.FormatSignedMoney(q.Change, currency),
			common.FormatSignedPct(q.PercentChange),
			q.Source)
	}
	return b.String()
}

func seriesMarkdown(symbol string, rng models.Range, points []models.HistoricalPoint, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", symbol, rng)
	if len(points) == 0 {
		b.WriteString("No data.\n")
		return b.String()
	}
	b.WriteString("| Date | Close |\n")
	b.WriteString("|---|---:|\n")
	for _, p := range points {
		fmt.Fprintf(&b, "| %s | %s |\n", p.Date, common.FormatMoney(p.Value, currency))
	}
	fmt.Fprintf(&b, "\n%d points\n", len(points))
	return b.String()
}

func searchMarkdown(query string, results []models.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Search: %s\n\n", query)
	if len(results) == 0 {
		b.WriteString("No matches.\n")
		return b.String()
	}
	b.WriteString("| Symbol | Name | Type | Exchange |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.Symbol, cell(r.Name), r.Type, r.Exchange)
	}
	return b.String()
}

func newsMarkdown(category string, items []models.NewsItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# News: %s\n\n", category)
	if len(items) == 0 {
		b.WriteString("No articles.\n")
		return b.String()
	}
	for _, n := range items {
		fmt.Fprintf(&b, "## %s\n\n", strings.TrimSpace(n.Headline))
		meta := n.Source
		if !n.Datetime.IsZero() {
			meta += " · " + n.Datetime.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "*%s*\n\n", meta)
		if s := strings.TrimSpace(n.Summary); s != "" {
			b.WriteString(s + "\n\n")
		}
		if n.URL != "" {
			fmt.Fprintf(&b, "<%s>\n\n", n.URL)
		}
	}
	return b.String()
}

func portfolioMarkdown(s *models.PortfolioSummary, currency string) string {
	var b strings.Builder
	b.WriteString("# Portfolio\n\n")
	if len(s.Holdings) == 0 {
		b.WriteString("No holdings.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "**Value** %s · **Cost** %s · **Gain** %s (%s)\n\n",
		common.FormatMoney(s.TotalValue, currency),
		common.FormatMoney(s.TotalCost, currency),
		common.FormatSignedMoney(s.TotalGain.Absolute, currency),
		common.FormatSignedPct(s.TotalGain.Percent))

	b.WriteString("| Symbol | Shares | Avg Cost | Price | Value | Gain | Sector |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---|\n")
	for _, h := range s.Holdings {
		price, value, gain := "N/A", "N/A", "N/A"
		if h.Quote.Valid() {
			price = common.FormatMoney(h.Quote.Price, currency)
			value = common.FormatMoney(h.MarketValue, currency)
			gain = fmt.Sprintf("%s (%s)", common.FormatSignedMoney(h.Gain.Absolute, currency), common.FormatSignedPct(h.Gain.Percent))
		}
		fmt.Fprintf(&b, "| %s | %.4g | %s | %s | %s | %s | %s |\n",
			h.Holding.Symbol, h.Holding.Shares, common.FormatMoney(h.Holding.AvgCost, currency),
			price, value, gain, h.Sector)
	}

	if len(s.Allocation) > 0 {
		b.WriteString("\n## Allocation\n\n")
		b.WriteString("| Sector | Weight | Value |\n")
		b.WriteString("|---|---:|---:|\n")
		for _, w := range s.Allocation {
			fmt.Fprintf(&b, "| %s | %.1f%% | %s |\n", w.Sector, w.PercentOfTotal, common.FormatMoney(w.Value, currency))
		}
	}
	return b.String()
}

func recommendationsMarkdown(recs []models.Recommendation) string {
	var b strings.Builder
	b.WriteString("# Recommendations\n\n")
	if len(recs) == 0 {
		b.WriteString("Nothing to rate. Add holdings or pass symbols.\n")
		return b.String()
	}
	b.WriteString("| Symbol | Action | Confidence | Held | Rationale |\n")
	b.WriteString("|---|---|---:|---|---|\n")
	for _, r := range recs {
		held := ""
		if r.Held {
			held = "yes"
		}
		fmt.Fprintf(&b, "| %s | **%s** | %.0f%% | %s | %s |\n", r.Symbol, r.Action, r.Confidence*100, held, cell(r.Rationale))
	}
	return b.String()
}
