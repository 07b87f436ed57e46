package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"botinvest/internal/advisor"
	"botinvest/internal/analysis"
	"botinvest/internal/model"
	"botinvest/internal/ticker"
)

type chatCmd struct {
	src     sourceFlags
	tickers string
}

func (*chatCmd) Name() string     { return "chat" }
func (*chatCmd) Synopsis() string { return "interactive chat with the AI trading assistant" }
func (*chatCmd) Usage() string {
	return `botinvest chat [-tickers AAPL,0700.HK]

  Opens an interactive session. Current market context for the given
  tickers is injected into every exchange. Exit with Ctrl-D or "exit".
`
}

func (c *chatCmd) SetFlags(f *flag.FlagSet) {
	c.src.register(f)
	f.StringVar(&c.tickers, "tickers", "", "comma-separated tickers whose context feeds the chat")
}

func (c *chatCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	if !a.advisor.Enabled() {
		fmt.Fprintln(os.Stderr, "advisor disabled: set llm.api_key or LLM_API_KEY")
		return subcommands.ExitFailure
	}

	contextData := c.marketContext(ctx, a)
	var history []advisor.Message

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		history = append(history, advisor.Message{Role: "user", Content: line})

		var reply strings.Builder
		err := a.advisor.Chat(ctx, history, contextData, a.profile.PrinciplesText(), func(chunk string) {
			fmt.Print(chunk)
			reply.WriteString(chunk)
		})
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "chat: %v\n", err)
			return subcommands.ExitFailure
		}
		history = append(history, advisor.Message{Role: "assistant", Content: reply.String()})
		fmt.Print("> ")
	}
	return subcommands.ExitSuccess
}

// marketContext builds one context line per requested ticker. Fetch
// failures degrade to a note instead of aborting the session.
func (c *chatCmd) marketContext(ctx context.Context, a *app) string {
	if c.tickers == "" {
		return "(无行情上下文)"
	}
	var lines []string
	for _, raw := range strings.Split(c.tickers, ",") {
		symbol := ticker.Normalize(strings.TrimSpace(raw))
		if symbol == "" {
			continue
		}
		series, err := a.fetcher.GetHistory(ctx, symbol, model.Period6Mo, model.IntervalDaily, c.src.opts())
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s: 行情获取失败 (%v)", symbol, err))
			continue
		}
		lines = append(lines, analysis.Summarize(series).ContextString(symbol))
	}
	return strings.Join(lines, "\n")
}
