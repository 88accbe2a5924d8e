// Package cli implements the vire-cli subcommands on top of the tracker services.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-tracker/internal/app"
	"github.com/bobmcallan/vire-tracker/internal/common"
	"github.com/bobmcallan/vire-tracker/internal/config"
	"github.com/bobmcallan/vire-tracker/internal/interfaces"
)

// Backend is the set of services a command may use.
type Backend struct {
	Market    interfaces.MarketService
	Portfolio interfaces.PortfolioService
	Holdings  interfaces.HoldingStorage
	Watchlist interfaces.WatchlistService
	Recommend interfaces.RecommendationService
	Currency  string

	close func() error
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Opener builds a Backend for one command run.
type Opener func(ctx context.Context) (*Backend, error)

// Env is shared by every command.
type Env struct {
	Open Opener
	Out  io.Writer
	Err  io.Writer
	Raw  bool // print markdown without terminal styling
}

// AppOpener opens the full application in-process from the given config files.
// The BadgerDB directory is locked while a command runs.
func AppOpener(configFiles []string, verbose bool) Opener {
	return func(ctx context.Context) (*Backend, error) {
		files := configFiles
		if len(files) == 0 {
			if path := config.FindConfigFile("vire-tracker.toml"); path != "" {
				files = []string{path}
			}
		}
		cfg, err := config.LoadFromFiles(files...)
		if err != nil {
			return nil, err
		}

		level := "error"
		if verbose {
			level = "debug"
		}
		logger := common.NewLoggerWithOutput(level, os.Stderr)

		a, err := app.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Market:    a.Market,
			Portfolio: a.Portfolio,
			Holdings:  a.Storage.HoldingStorage(),
			Watchlist: a.Watchlist,
			Recommend: a.Recommend,
			Currency:  cfg.Portfolio.Currency,
			close:     a.Close,
		}, nil
	}
}

// Register adds every command to c.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(&quoteCmd{env: env}, "market")
	c.Register(&seriesCmd{env: env}, "market")
	c.Register(&searchCmd{env: env}, "market")
	c.Register(&newsCmd{env: env}, "market")

	c.Register(&portfolioCmd{env: env}, "portfolio")
	c.Register(&holdingCmd{env: env}, "portfolio")
	c.Register(&watchlistCmd{env: env}, "portfolio")
	c.Register(&recommendCmd{env: env}, "portfolio")
}

// run opens the backend, calls fn and maps its error to an exit status.
func (e *Env) run(ctx context.Context, fn func(b *Backend) error) subcommands.ExitStatus {
	b, err := e.Open(ctx)
	if err != nil {
		fmt.Fprintf(e.errOut(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer b.Close()

	if err := fn(b); err != nil {
		fmt.Fprintf(e.errOut(), "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (e *Env) errOut() io.Writer {
	if e.Err != nil {
		return e.Err
	}
	return os.Stderr
}

// printMarkdown renders md for the terminal, or writes it as-is in raw mode.
func (e *Env) printMarkdown(md string) error {
	out := e.Out
	if out == nil {
		out = os.Stdout
	}
	if e.Raw {
		_, err := io.WriteString(out, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(out, rendered)
	return err
}
