package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

type recommendCmd struct {
	env *Env
}

func (*recommendCmd) Name() string     { return "recommend" }
func (*recommendCmd) Synopsis() string { return "rate symbols and held positions BUY, HOLD or SELL" }
func (*recommendCmd) Usage() string {
	return `vire-cli recommend [<symbol>...]

  Rates the given symbols plus every held position from today's move.
`
}

func (c *recommendCmd) SetFlags(f *flag.FlagSet) {}

func (c *recommendCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := splitArgs(f.Args())
	return c.env.run(ctx, func(b *Backend) error {
		recs, err := b.Recommend.Recommend(ctx, symbols)
		if err != nil {
			return err
		}
		return c.env.printMarkdown(recommendationsMarkdown(recs))
	})
}
