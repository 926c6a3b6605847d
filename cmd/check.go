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

type checkCmd struct{}

func (*checkCmd) Name() string { return "check" }
func (*checkCmd) Synopsis() string {
	return "list the dates where the rebuilt balance disagrees with the broker"
}
func (*checkCmd) Usage() string {
	return `gxl check

  Walks the persisted history and reports every date and sub-account where
  the rebuilt cash balance differs from the balance recorded in the
  settlement log.

`
}

func (*checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	db, err := OpenStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if db == nil {
		fmt.Fprintln(os.Stderr, "Error: 'gxl check' needs a persistent store, run 'gxl replay' with store.type sqlite first.")
		return subcommands.ExitFailure
	}
	defer db.Close()

	history, err := db.LoadHistory()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	warnings := gxledger.ReportDiscrepancies(history)
	printMarkdown(renderer.RenderCheck(renderer.NewCheck(warnings)))
	return subcommands.ExitSuccess
}
