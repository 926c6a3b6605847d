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

type holdingCmd struct {
	date string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "show positions and balances on a given date" }
func (*holdingCmd) Usage() string {
	return `gxl holding [-d <date>]

  Shows the rebuilt positions and sub-account balances on a settlement date,
  defaulting to the most recent one in the store.

Usage Examples:
# Latest state of the ledger.
$ gxl holding

# State on a specific date.
$ gxl holding -d 20140102

`
}

func (p *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.date, "d", "", "Settlement date to show (defaults to the latest).")
}

func (p *holdingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		fmt.Fprintln(os.Stderr, "Error: 'gxl holding' needs a persistent store, run 'gxl replay' with store.type sqlite first.")
		return subcommands.ExitFailure
	}
	defer db.Close()

	var on gxledger.Date
	if p.date == "" {
		on, err = db.LatestDate()
	} else {
		on, err = gxledger.ParseDate(p.date)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	holdings, balances, err := db.LoadSnapshot(on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderSnapshot(renderer.NewSnapshot(on, holdings, balances)))
	return subcommands.ExitSuccess
}
