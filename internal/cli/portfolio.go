package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/models"
)

type portfolioCmd struct {
	env     *Env
	history string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "value the stored holdings" }
func (*portfolioCmd) Usage() string {
	return `vire-cli portfolio [-history <range>]

  Prints total value, cost, gain and sector allocation.
  With -history, prints the daily portfolio value over the range instead.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.history, "history", "", "Print portfolio value history over a range (1W, 1M, 3M, 6M, 1Y, ALL)")
}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.history != "" {
		rng, ok := models.ParseRange(c.history)
		if !ok {
			fmt.Fprintf(c.env.errOut(), "Error: unknown range %q\n", c.history)
			return subcommands.ExitUsageError
		}
		return c.env.run(ctx, func(b *Backend) error {
			points, err := b.Portfolio.GetPortfolioHistory(ctx, rng)
			if err != nil {
				return err
			}
			return c.env.printMarkdown(seriesMarkdown("Portfolio", rng, points, b.Currency))
		})
	}

	return c.env.run(ctx, func(b *Backend) error {
		summary, err := b.Portfolio.GetPortfolioValue(ctx)
		if err != nil {
			return err
		}
		return c.env.printMarkdown(portfolioMarkdown(summary, b.Currency))
	})
}

type holdingCmd struct {
	env *Env
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "list, set or remove holdings" }
func (*holdingCmd) Usage() string {
	return `vire-cli holding
vire-cli holding set <symbol> <shares> <avg-cost>
vire-cli holding rm <symbol>

  Without arguments, lists the stored holdings.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	switch {
	case len(args) == 0:
		return c.env.run(ctx, func(b *Backend) error {
			holdings, err := b.Holdings.ListHoldings(ctx)
			if err != nil {
				return err
			}
			return c.env.printMarkdown(holdingsMarkdown(holdings, b.Currency))
		})

	case args[0] == "set" && len(args) == 4:
		shares, err1 := strconv.ParseFloat(args[2], 64)
		avgCost, err2 := strconv.ParseFloat(args[3], 64)
		if err1 != nil || err2 != nil {
			fmt.Fprintln(c.env.errOut(), "Error: shares and avg-cost must be numbers")
			return subcommands.ExitUsageError
		}
		h := models.Holding{Symbol: args[1], Shares: shares, AvgCost: avgCost}
		if err := h.Validate(); err != nil {
			fmt.Fprintf(c.env.errOut(), "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		return c.env.run(ctx, func(b *Backend) error {
			if err := b.Holdings.SaveHolding(ctx, h); err != nil {
				return err
			}
			return c.env.printMarkdown(fmt.Sprintf("Saved **%s**: %.4g shares at %s\n", h.Symbol, h.Shares, common.FormatMoney(h.AvgCost, b.Currency)))
		})

	case args[0] == "rm" && len(args) == 2:
		symbol := models.NormalizeSymbol(args[1])
		return c.env.run(ctx, func(b *Backend) error {
			if err := b.Holdings.DeleteHolding(ctx, symbol); err != nil {
				return err
			}
			return c.env.printMarkdown(fmt.Sprintf("Removed **%s**\n", symbol))
		})
	}

	f.Usage()
	return subcommands.ExitUsageError
}

func holdingsMarkdown(holdings []models.Holding, currency string) string {
	var b strings.Builder
	b.WriteString("# Holdings\n\n")
	if len(holdings) == 0 {
		b.WriteString("No holdings.\n")
		return b.String()
	}
	b.WriteString("| Symbol | Shares | Avg Cost |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, h := range holdings {
		fmt.Fprintf(&b, "| %s | %.4g | %s |\n", h.Symbol, h.Shares, common.FormatMoney(h.AvgCost, currency))
	}
	return b.String()
}
