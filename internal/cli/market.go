package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-tracker/internal/models"
)

type quoteCmd struct {
	env *Env
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "show current quotes for one or more symbols" }
func (*quoteCmd) Usage() string {
	return `vire-cli quote <symbol> [<symbol>...]

  Prints the latest quote for each symbol. Symbols may also be comma-separated.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := splitArgs(f.Args())
	if len(symbols) == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(b *Backend) error {
		quotes, err := b.Market.GetStockQuotes(ctx, symbols)
		if err != nil {
			return err
		}
		return c.env.printMarkdown(quotesMarkdown(quotes, b.Currency))
	})
}

type seriesCmd struct {
	env *Env
	rng string
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "show the daily close series for a symbol" }
func (*seriesCmd) Usage() string {
	return `vire-cli series [-r <range>] <symbol>

  Prints daily closes, newest first. Ranges: 1W, 1M, 3M, 6M, 1Y, ALL.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.rng, "r", "1M", "Lookback range")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	rng, ok := models.ParseRange(c.rng)
	if !ok {
		fmt.Fprintf(c.env.errOut(), "Error: unknown range %q\n", c.rng)
		return subcommands.ExitUsageError
	}
	symbol := models.NormalizeSymbol(f.Arg(0))
	return c.env.run(ctx, func(b *Backend) error {
		points, err := b.Market.GetSeries(ctx, symbol, rng)
		if err != nil {
			return err
		}
		return c.env.printMarkdown(seriesMarkdown(symbol, rng, points, b.Currency))
	})
}

type searchCmd struct {
	env *Env
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search for symbols by name or ticker" }
func (*searchCmd) Usage() string {
	return `vire-cli search <query>
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	query := strings.TrimSpace(strings.Join(f.Args(), " "))
	if query == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return c.env.run(ctx, func(b *Backend) error {
		results, err := b.Market.Search(ctx, query)
		if err != nil {
			return err
		}
		return c.env.printMarkdown(searchMarkdown(query, results))
	})
}

type newsCmd struct {
	env      *Env
	category string
}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "show recent market news" }
func (*newsCmd) Usage() string {
	return `vire-cli news [-c <category>]

  Categories: general, forex, crypto, merger.
`
}

func (c *newsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "c", models.NewsGeneral, "News category")
}

func (c *newsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(b *Backend) error {
		items, err := b.Market.FetchMarketNews(ctx, c.category)
		if err != nil {
			return err
		}
		return c.env.printMarkdown(newsMarkdown(c.category, items))
	})
}

// splitArgs accepts "AAPL MSFT" and "AAPL,MSFT".
func splitArgs(args []string) []string {
	var out []string
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
