package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
)

type buyCmd struct{}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy into the paper portfolio" }
func (*buyCmd) Usage() string {
	return `botinvest buy <ticker> <qty> <price>

  Executes a simulated buy at the given price and persists the portfolio.
`
}
func (*buyCmd) SetFlags(*flag.FlagSet) {}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return executeTrade(f, "buy")
}

type sellCmd struct{}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell from the paper portfolio" }
func (*sellCmd) Usage() string {
	return `botinvest sell <ticker> <qty> <price>

  Executes a simulated sell at the given price and persists the portfolio.
`
}
func (*sellCmd) SetFlags(*flag.FlagSet) {}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return executeTrade(f, "sell")
}

func executeTrade(f *flag.FlagSet, action string) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprintf(os.Stderr, "%s: <ticker> <qty> <price> required\n", action)
		return subcommands.ExitUsageError
	}
	qty, err := strconv.ParseFloat(f.Arg(1), 64)
	if err != nil || qty <= 0 {
		fmt.Fprintf(os.Stderr, "%s: invalid quantity %q\n", action, f.Arg(1))
		return subcommands.ExitUsageError
	}
	price, err := strconv.ParseFloat(f.Arg(2), 64)
	if err != nil || price <= 0 {
		fmt.Fprintf(os.Stderr, "%s: invalid price %q\n", action, f.Arg(2))
		return subcommands.ExitUsageError
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	var msg string
	if action == "buy" {
		msg, err = a.trader.Buy(f.Arg(0), qty, price)
	} else {
		msg, err = a.trader.Sell(f.Arg(0), qty, price)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", action, err)
		return subcommands.ExitFailure
	}
	fmt.Println(msg)
	fmt.Printf("cash balance: %.2f\n", a.trader.Account().Cash)
	return subcommands.ExitSuccess
}
