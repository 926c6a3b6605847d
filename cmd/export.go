package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/luoqi/gxledger/store"
)

type exportCmd struct {
	dir string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the rebuilt history as CSV files" }
func (*exportCmd) Usage() string {
	return `gxl export [-o <dir>]

  Writes the persisted history as balances.csv, holdings.csv and
  profits.csv, for spreadsheets and further analysis.

`
}

func (p *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.dir, "o", ".", "Directory to write the CSV files into.")
}

func (p *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		fmt.Fprintln(os.Stderr, "Error: 'gxl export' needs a persistent store, run 'gxl replay' with store.type sqlite first.")
		return subcommands.ExitFailure
	}
	defer db.Close()

	history, err := db.LoadHistory()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := store.ExportCSV(p.dir, history); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Exported the history to %s.\n", p.dir)
	return subcommands.ExitSuccess
}
