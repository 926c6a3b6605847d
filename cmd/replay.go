package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/luoqi/gxledger"
	"github.com/luoqi/gxledger/config"
	"github.com/luoqi/gxledger/store"
)

type replayCmd struct {
	full bool
}

func (*replayCmd) Name() string { return "replay" }
func (*replayCmd) Synopsis() string {
	return "rebuild the daily ledger by replaying the settlement log"
}
func (*replayCmd) Usage() string {
	return `gxl replay [-full]

  Replays the settlement log date by date, rebuilding the position and
  balance history, and persists the result in the configured store. When the
  store already holds history, only the dates after the last settled one are
  replayed; -full forces a replay from the opening state.

Usage Examples:
# Incremental replay of new settlement dates.
$ gxl replay

# Rebuild everything from scratch.
$ gxl replay -full

`
}

func (p *replayCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.full, "full", false, "Replay from the opening state, ignoring persisted history.")
}

func (p *replayCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	db, err := OpenStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if db != nil {
		defer db.Close()
	}

	opening, resumed, err := p.opening(cfg, db)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	engine := gxledger.NewEngine(gxledger.DefaultTable(cfg.SubscriptionMode()), opening)
	history, diags, err := engine.Replay(records)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if db != nil {
		if resumed {
			err = db.AppendHistory(history, opening.Date)
		} else {
			err = db.SaveHistory(history)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error persisting history: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	last := history.LastDate()
	if last.IsZero() {
		fmt.Println("Nothing to replay: the ledger is already up to date.")
		return subcommands.ExitSuccess
	}
	fmt.Printf("Replayed the ledger up to %s.\n", last)
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "warning: %s\n", d)
	}
	if warnings := gxledger.ReportDiscrepancies(history); len(warnings) > 0 {
		fmt.Printf("%d balance discrepancies remain, run 'gxl check' for details.\n", len(warnings))
	}
	return subcommands.ExitSuccess
}

// opening decides between resuming from the persisted snapshot and starting
// from the configured opening state.
func (p *replayCmd) opening(cfg *config.Config, db *store.SQLite) (gxledger.OpeningState, bool, error) {
	if p.full || db == nil {
		state, err := cfg.OpeningState()
		return state, false, err
	}
	latest, err := db.LatestDate()
	if errors.Is(err, store.ErrNoHistory) {
		state, err := cfg.OpeningState()
		return state, false, err
	}
	if err != nil {
		return gxledger.OpeningState{}, false, err
	}
	positions, balances, err := db.LoadSnapshot(latest)
	if err != nil {
		return gxledger.OpeningState{}, false, err
	}
	return gxledger.ResumeState(latest, positions, balances), true, nil
}
