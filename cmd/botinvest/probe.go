package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type probeCmd struct{}

func (*probeCmd) Name() string     { return "probe" }
func (*probeCmd) Synopsis() string { return "check whether the broker gateway is reachable" }
func (*probeCmd) Usage() string {
	return `botinvest probe

  Probes the configured quote gateway and reports its state.
`
}
func (*probeCmd) SetFlags(*flag.FlagSet) {}

func (c *probeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	res := a.fetcher.ProbeGateway(ctx)
	state := "unavailable"
	if res.Available {
		state = "available"
	}
	fmt.Printf("gateway %s:%d is %s", a.cfg.Futu.Host, a.cfg.Futu.Port, state)
	if res.Message != "" {
		fmt.Printf(" (%s)", res.Message)
	}
	fmt.Println()
	if !res.Available {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
