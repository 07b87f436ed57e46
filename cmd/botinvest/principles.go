package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
)

type principlesCmd struct {
	set   bool
	notes string
}

func (*principlesCmd) Name() string     { return "principles" }
func (*principlesCmd) Synopsis() string { return "show or edit the trading principles" }
func (*principlesCmd) Usage() string {
	return `botinvest principles [-set] [-notes <text>]

  Without flags, prints the saved principles and strategy notes. With
  -set, reads replacement principles from stdin (one per line, until
  EOF). With -notes, replaces the strategy notes.
`
}

func (c *principlesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.set, "set", false, "read new principles from stdin")
	f.StringVar(&c.notes, "notes", "", "replace the strategy notes")
}

func (c *principlesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	if c.set {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := a.profile.SavePrinciples(string(raw)); err != nil {
			fmt.Fprintf(os.Stderr, "save principles: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if c.notes != "" {
		if err := a.profile.SaveNotes(c.notes); err != nil {
			fmt.Fprintf(os.Stderr, "save notes: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	fmt.Println("投资原则:")
	fmt.Println(a.profile.PrinciplesText())
	if notes := a.profile.Notes(); notes != "" {
		fmt.Println("\n策略笔记:")
		fmt.Println(notes)
	}
	return subcommands.ExitSuccess
}
