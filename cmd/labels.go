package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/luoqi/gxledger"
)

type labelsCmd struct {
	unknown bool
}

func (*labelsCmd) Name() string     { return "labels" }
func (*labelsCmd) Synopsis() string { return "list the transaction labels present in the log" }
func (*labelsCmd) Usage() string {
	return `gxl labels [-unknown]

  Lists the distinct transaction labels of the settlement log in order of
  first appearance. With -unknown, only the labels the classification table
  cannot resolve are listed; these are the ones that would abort a replay.

`
}

func (p *labelsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.unknown, "unknown", false, "Only list labels missing from the classification table.")
}

func (p *labelsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	table := gxledger.DefaultTable(cfg.SubscriptionMode())
	count := 0
	for _, label := range gxledger.Labels(records) {
		known := table.Known(label)
		if p.unknown && known {
			continue
		}
		count++
		if p.unknown {
			fmt.Println(label)
		} else if known {
			fmt.Println(label)
		} else {
			fmt.Printf("%s (unknown)\n", label)
		}
	}
	if p.unknown && count == 0 {
		fmt.Println("Every label of the log is classified.")
	}
	return subcommands.ExitSuccess
}
