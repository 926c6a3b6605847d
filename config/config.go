// Package config loads the reconstruction settings from a YAML or JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/luoqi/gxledger"
)

// Config represents the complete reconstruction configuration.
type Config struct {
	Input   InputConfig   `json:"input" yaml:"input"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Opening OpeningConfig `json:"opening,omitempty" yaml:"opening,omitempty"`
}

// InputConfig locates and describes the broker's settlement log.
type InputConfig struct {
	TransactionsFile string `json:"transactions_file" yaml:"transactions_file"`
	// Encoding of the file: "gbk" (the broker's export default) or "utf-8".
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
}

// EngineConfig contains replay parameters.
type EngineConfig struct {
	// SubscriptionMode is "frozen" or "cash", selecting how IPO subscription
	// amounts hit the cash balance.
	SubscriptionMode string `json:"subscription_mode,omitempty" yaml:"subscription_mode,omitempty"`
	// Epsilon overrides the rounding-noise threshold; zero keeps the default.
	Epsilon float64 `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`
}

// StoreConfig contains persistence parameters.
type StoreConfig struct {
	Type   string `json:"type" yaml:"type"` // "sqlite" or "none"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// OpeningConfig optionally overrides the built-in opening state.
type OpeningConfig struct {
	Date     string          `json:"date,omitempty" yaml:"date,omitempty"`
	Holdings []HoldingConfig `json:"holdings,omitempty" yaml:"holdings,omitempty"`
	Balances []BalanceConfig `json:"balances,omitempty" yaml:"balances,omitempty"`
}

// HoldingConfig is one opening position.
type HoldingConfig struct {
	Account  string  `json:"account" yaml:"account"`
	Code     string  `json:"code" yaml:"code"`
	Name     string  `json:"name" yaml:"name"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	UnitCost float64 `json:"unit_cost" yaml:"unit_cost"`
	Currency string  `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// BalanceConfig is one opening sub-account balance.
type BalanceConfig struct {
	Account     string  `json:"account" yaml:"account"`
	NetTransfer float64 `json:"net_transfer" yaml:"net_transfer"`
	Cash        float64 `json:"cash" yaml:"cash"`
	Currency    string  `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON based on extension).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML or JSON based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Input.TransactionsFile == "" {
		return fmt.Errorf("input.transactions_file is required")
	}
	switch c.Input.Encoding {
	case "", "gbk", "utf-8":
	default:
		return fmt.Errorf("input.encoding must be 'gbk' or 'utf-8', got %q", c.Input.Encoding)
	}
	switch c.Engine.SubscriptionMode {
	case "", "frozen", "cash":
	default:
		return fmt.Errorf("engine.subscription_mode must be 'frozen' or 'cash', got %q", c.Engine.SubscriptionMode)
	}
	if c.Engine.Epsilon < 0 {
		return fmt.Errorf("engine.epsilon must not be negative")
	}
	switch c.Store.Type {
	case "sqlite":
		if c.Store.DBPath == "" {
			return fmt.Errorf("store.db_path required for sqlite type")
		}
	case "none":
	default:
		return fmt.Errorf("store.type must be 'sqlite' or 'none', got %q", c.Store.Type)
	}
	if c.Opening.Date != "" {
		if _, err := gxledger.ParseDate(c.Opening.Date); err != nil {
			return fmt.Errorf("opening.date: %w", err)
		}
	}
	return nil
}

// GBK reports whether the settlement log must be decoded from GBK.
func (c *Config) GBK() bool { return c.Input.Encoding != "utf-8" }

// SubscriptionMode returns the engine mode the config selects.
func (c *Config) SubscriptionMode() gxledger.SubscriptionMode {
	if c.Engine.SubscriptionMode == "cash" {
		return gxledger.SubscriptionCash
	}
	return gxledger.SubscriptionFrozen
}

// OpeningState builds the opening state the config describes, falling back to
// the built-in account bootstrap when no override is given.
func (c *Config) OpeningState() (gxledger.OpeningState, error) {
	if c.Opening.Date == "" {
		return gxledger.DefaultOpeningState(), nil
	}
	on, err := gxledger.ParseDate(c.Opening.Date)
	if err != nil {
		return gxledger.OpeningState{}, err
	}
	holdings := make([]gxledger.InitialHolding, 0, len(c.Opening.Holdings))
	for _, h := range c.Opening.Holdings {
		holdings = append(holdings, gxledger.InitialHolding{
			Account:  gxledger.AccountType(h.Account),
			Code:     h.Code,
			Name:     h.Name,
			Quantity: gxledger.Q(h.Quantity),
			UnitCost: gxledger.M(h.UnitCost, currencyOr(h.Currency)),
		})
	}
	balances := make([]gxledger.InitialBalance, 0, len(c.Opening.Balances))
	for _, b := range c.Opening.Balances {
		balances = append(balances, gxledger.InitialBalance{
			Account:     gxledger.AccountType(b.Account),
			NetTransfer: gxledger.M(b.NetTransfer, currencyOr(b.Currency)),
			Cash:        gxledger.M(b.Cash, currencyOr(b.Currency)),
		})
	}
	return gxledger.NewOpeningState(on, holdings, balances), nil
}

func currencyOr(cur string) string {
	if cur == "" {
		return "CNY"
	}
	return cur
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			TransactionsFile: "transactions.csv",
			Encoding:         "gbk",
		},
		Engine: EngineConfig{
			SubscriptionMode: "frozen",
		},
		Store: StoreConfig{
			Type:   "sqlite",
			DBPath: "gxledger.db",
		},
	}
}
