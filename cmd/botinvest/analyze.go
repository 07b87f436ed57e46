package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"botinvest/internal/analysis"
	"botinvest/internal/model"
	"botinvest/internal/ticker"
)

type analyzeCmd struct {
	src    sourceFlags
	period string
	plan   bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "fetch history for a ticker and print its indicators" }
func (*analyzeCmd) Usage() string {
	return `botinvest analyze [-period 6mo] [-source auto] [-plan] <ticker>

  Fetches daily history, prints the latest indicator snapshot and, with
  -plan and a configured LLM key, a generated trading plan.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	c.src.register(f)
	f.StringVar(&c.period, "period", "6mo", "history window: 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd or max")
	f.BoolVar(&c.plan, "plan", false, "ask the AI advisor for a trading plan")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "analyze: exactly one ticker required")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	symbol := ticker.Normalize(f.Arg(0))
	series, err := a.fetcher.GetHistory(ctx, symbol, model.Period(c.period), model.IntervalDaily, c.src.opts())
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze %s: %v\n", symbol, err)
		return subcommands.ExitFailure
	}

	snap := analysis.Summarize(series)
	fmt.Printf("%s  (%d bars, source %s)\n", symbol, len(series.Bars), series.Source)
	fmt.Printf("  close      %10.2f  (%+.2f%%)\n", snap.Close, snap.ChangePct)
	fmt.Printf("  SMA5       %10.2f\n", snap.SMA5)
	fmt.Printf("  SMA20      %10.2f\n", snap.SMA20)
	fmt.Printf("  RSI14      %10.2f\n", snap.RSI14)
	fmt.Printf("  ATR14      %10.2f\n", snap.ATR14)
	fmt.Printf("  support    %10.2f\n", snap.Support)
	fmt.Printf("  resistance %10.2f\n", snap.Resistance)

	if !c.plan {
		return subcommands.ExitSuccess
	}
	if !a.advisor.Enabled() {
		fmt.Fprintln(os.Stderr, "advisor disabled: set llm.api_key or LLM_API_KEY to enable -plan")
		return subcommands.ExitFailure
	}
	plan, err := a.advisor.Analyze(ctx, snap.ContextString(symbol), a.profile.PrinciplesText())
	if err != nil {
		fmt.Fprintf(os.Stderr, "advisor: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println()
	fmt.Println(plan)
	return subcommands.ExitSuccess
}
