package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"botinvest/internal/watch"
)

type watchCmd struct {
	src  sourceFlags
	cron string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "periodically revalue the portfolio until interrupted" }
func (*watchCmd) Usage() string {
	return `botinvest watch [-cron "0 */15 * * * *"]

  Revalues the paper portfolio on a cron schedule, writing snapshots to
  the trade journal. Runs until Ctrl-C.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	c.src.register(f)
	f.StringVar(&c.cron, "cron", "", "cron spec with seconds field (default from config)")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	spec := c.cron
	if spec == "" {
		spec = a.cfg.Watch.Cron
	}

	w := watch.New(ctx, a.fetcher, a.trader, a.journal, c.src.opts())
	if err := w.Register(spec); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("watching portfolio on schedule %q, initial value %.2f\n", spec, w.RunOnce())
	w.Start()
	<-ctx.Done()
	w.Stop()
	return subcommands.ExitSuccess
}
