package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-tracker/internal/models"
)

type watchlistCmd struct {
	env *Env
}

func (*watchlistCmd) Name() string     { return "watchlist" }
func (*watchlistCmd) Synopsis() string { return "show or edit the watchlist" }
func (*watchlistCmd) Usage() string {
	return `vire-cli watchlist
vire-cli watchlist add <symbol> [notes...]
vire-cli watchlist rm <symbol>

  Without arguments, prints the watchlist with the latest quotes.
`
}

func (c *watchlistCmd) SetFlags(f *flag.FlagSet) {}

func (c *watchlistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	switch {
	case len(args) == 0:
		return c.env.run(ctx, func(b *Backend) error {
			wl, quotes, err := b.Watchlist.Get(ctx)
			if err != nil {
				return err
			}
			byKey := make(map[string]models.Quote, len(quotes))
			for _, q := range quotes {
				byKey[q.Symbol] = q
			}
			return c.env.printMarkdown(wl.ToMarkdown(byKey))
		})

	case args[0] == "add" && len(args) >= 2:
		notes := strings.Join(args[2:], " ")
		return c.env.run(ctx, func(b *Backend) error {
			item, err := b.Watchlist.Add(ctx, args[1], notes)
			if err != nil {
				return err
			}
			return c.env.printMarkdown(fmt.Sprintf("Watching **%s**\n", item.Symbol))
		})

	case args[0] == "rm" && len(args) == 2:
		return c.env.run(ctx, func(b *Backend) error {
			if err := b.Watchlist.Remove(ctx, args[1]); err != nil {
				return err
			}
			return c.env.printMarkdown(fmt.Sprintf("Removed **%s**\n", models.NormalizeSymbol(args[1])))
		})
	}

	f.Usage()
	return subcommands.ExitUsageError
}
