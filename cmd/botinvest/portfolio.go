package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/google/subcommands"
)

type portfolioCmd struct {
	src sourceFlags
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "show the paper account with live valuations" }
func (*portfolioCmd) Usage() string {
	return `botinvest portfolio [-source auto]

  Prints cash, open positions marked to the latest close, and total value.
  Positions whose price cannot be fetched are valued at cost.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) { c.src.register(f) }

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	account := a.trader.Account()
	fmt.Printf("cash: %.2f\n", account.Cash)

	tickers := make([]string, 0, len(account.Positions))
	for tk := range account.Positions {
		tickers = append(tickers, tk)
	}
	sort.Strings(tickers)

	prices := make(map[string]float64, len(tickers))
	for _, tk := range tickers {
		pos := account.Positions[tk]
		price, err := a.fetcher.CurrentPrice(ctx, tk, c.src.opts())
		mark := pos.AvgCost
		note := "at cost"
		if err == nil {
			prices[tk] = price
			mark = price
			note = "market"
		}
		pnl := (mark - pos.AvgCost) * pos.Qty
		fmt.Printf("%-10s qty %10.2f  avg %10.2f  mark %10.2f (%s)  pnl %+.2f\n",
			tk, pos.Qty, pos.AvgCost, mark, note, pnl)
	}

	total := a.trader.TotalValue(prices)
	fmt.Printf("total value: %.2f\n", total)
	if a.journal != nil {
		if err := a.journal.RecordValuation(total, account.Cash); err != nil {
			fmt.Fprintf(os.Stderr, "record valuation: %v\n", err)
		}
	}
	return subcommands.ExitSuccess
}
