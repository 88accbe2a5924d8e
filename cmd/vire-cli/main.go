package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vire-tracker/internal/cli"
	"github.com/bobmcallan/vire-tracker/internal/config"
)

// configPaths is a custom flag type that allows multiple -config flags.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	verbose     = flag.Bool("v", false, "Log provider activity to stderr")
	raw         = flag.Bool("raw", false, "Print plain markdown instead of styled output")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	config.LoadVersionFromFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	flag.Parse()

	cli.Register(commander, &cli.Env{
		Open: cli.AppOpener(configFiles, *verbose),
		Out:  os.Stdout,
		Err:  os.Stderr,
		Raw:  *raw,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
