package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"botinvest/internal/screener"
)

type screenCmd struct {
	src sourceFlags
}

func (*screenCmd) Name() string     { return "screen" }
func (*screenCmd) Synopsis() string { return "scan the stock pool for candidates" }
func (*screenCmd) Usage() string {
	return `botinvest screen [-source auto]

  Screens the built-in US and HK pool on six months of daily bars and
  groups candidates into long-term, short-term and watch-list buckets.
`
}

func (c *screenCmd) SetFlags(f *flag.FlagSet) { c.src.register(f) }

func (c *screenCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	s := screener.New(a.fetcher)
	s.Opts = c.src.opts()

	res, err := s.Run(ctx, func(done, total int, tk string) {
		if tk != "" {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %-12s", done+1, total, tk)
		} else {
			fmt.Fprintf(os.Stderr, "\r%40s\r", "")
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "screen: %v\n", err)
		return subcommands.ExitFailure
	}

	printBucket("长期持有候选", res.LongTerm)
	printBucket("短期交易机会", res.ShortTerm)
	printBucket("观察名单", res.WatchList)
	return subcommands.ExitSuccess
}

func printBucket(title string, list []screener.Candidate) {
	fmt.Printf("\n%s (%d)\n", title, len(list))
	for _, c := range list {
		line := fmt.Sprintf("  %-10s price %10.2f  RSI %6.2f  %s", c.Ticker, c.Price, c.RSI, c.Trend)
		if c.Reason != "" {
			line += "  " + c.Reason
		}
		fmt.Println(line)
	}
}
