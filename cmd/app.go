// Package cmd implements the CLI application to rebuild the ledger.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/luoqi/gxledger"
	"github.com/luoqi/gxledger/config"
	"github.com/luoqi/gxledger/store"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&replayCmd{}, "ledger")
	c.Register(&checkCmd{}, "ledger")
	c.Register(&labelsCmd{}, "ledger")

	c.Register(&holdingCmd{}, "reports")
	c.Register(&tradesCmd{}, "reports")
	c.Register(&exportCmd{}, "reports")

	c.Register(&initCmd{}, "setup")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "gxledger.yaml", "Path to the configuration file")

// LoadConfig loads the app configuration, falling back to defaults when no
// config file exists yet.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromFile(*configFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Println("warning, no configuration file found, using defaults")
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if cfg.Engine.Epsilon > 0 {
		gxledger.Epsilon = decimal.NewFromFloat(cfg.Engine.Epsilon)
	}
	return cfg, nil
}

// OpenStore opens the configured history store, or nil when persistence is
// disabled.
func OpenStore(cfg *config.Config) (*store.SQLite, error) {
	if cfg.Store.Type != "sqlite" {
		return nil, nil
	}
	return store.NewSQLite(cfg.Store.DBPath)
}

// ReadTransactions reads the whole settlement log named by the configuration.
func ReadTransactions(cfg *config.Config) ([]gxledger.TransactionRecord, error) {
	f, err := os.Open(cfg.Input.TransactionsFile)
	if err != nil {
		return nil, fmt.Errorf("open settlement log: %w", err)
	}
	defer f.Close()
	return gxledger.ReadTransactions(f, cfg.GBK())
}
