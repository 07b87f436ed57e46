package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "path to the YAML config file")
	verbose    = flag.Bool("v", false, "enable debug logging")
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&analyzeCmd{}, "market data")
	subcommands.Register(&screenCmd{}, "market data")
	subcommands.Register(&probeCmd{}, "market data")

	subcommands.Register(&buyCmd{}, "paper trading")
	subcommands.Register(&sellCmd{}, "paper trading")
	subcommands.Register(&portfolioCmd{}, "paper trading")
	subcommands.Register(&watchCmd{}, "paper trading")

	subcommands.Register(&principlesCmd{}, "advisor")
	subcommands.Register(&chatCmd{}, "advisor")

	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(int(subcommands.Execute(ctx)))
}
