package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/luoqi/gxledger"
	"github.com/luoqi/gxledger/renderer"
)

type tradesCmd struct{}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "summarize the trading history per security" }
func (*tradesCmd) Usage() string {
	return `gxl trades

  Aggregates the whole settlement log per security: cumulative buys and
  sells, net position, buy outlay and overall profit, followed by the list
  of closed-out positions from the persisted history.

`
}

func (*tradesCmd) SetFlags(f *flag.FlagSet) {}

func (c *tradesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	records, err := ReadTransactions(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	summaries, err := gxledger.SummarizeTrades(gxledger.DefaultTable(cfg.SubscriptionMode()), records)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	// The closed-position list lives in the store; without one the summary
	// table alone is still worth printing.
	var profits []gxledger.RealizedProfitRecord
	if db, err := OpenStore(cfg); err == nil && db != nil {
		defer db.Close()
		if history, err := db.LoadHistory(); err == nil {
			profits = history.Profits
		}
	}

	printMarkdown(renderer.RenderTrades(renderer.NewTrades(summaries, profits)))
	return subcommands.ExitSuccess
}
