package importer

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/robinvdvleuten/beancount-binance/ast"
	"gopkg.in/yaml.v3"
)

// Config holds the accounts the importer books to.
type Config struct {
	// AssetAccount holds every asset on the exchange.
	AssetAccount ast.Account `yaml:"asset_account"`
	// CommissionAccount receives the first commission of each trade.
	CommissionAccount ast.Account `yaml:"commission_account"`
	// DistributionIncomeAccount balances airdrops and other positive
	// distributions.
	DistributionIncomeAccount ast.Account `yaml:"distribution_income_account"`
	// DistributionExpenseAccount balances delistings, symbol renames and
	// other negative distributions.
	DistributionExpenseAccount ast.Account `yaml:"distribution_expense_account"`
	// UnknownEquityAccount balances deposits whose origin is unknown.
	UnknownEquityAccount ast.Account `yaml:"unknown_equity_account"`
	// StrictOrdering rejects rows dated before the row preceding them.
	StrictOrdering bool `yaml:"strict_ordering"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		AssetAccount:               "Assets:Binance",
		CommissionAccount:          "Expenses:Binance:Fees",
		DistributionIncomeAccount:  "Income:Binance:Distribution",
		DistributionExpenseAccount: "Expenses:Binance:Distribution",
		UnknownEquityAccount:       "Equity:Unknown",
	}
}

// LoadConfig reads a YAML configuration file. Keys missing from the file keep
// their DefaultConfig value; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("configuration file not found at %s", path)
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&config); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// Validate checks that every account is a valid Beancount account name.
func (c Config) Validate() error {
	accounts := []struct {
		key     string
		account ast.Account
	}{
		{"asset_account", c.AssetAccount},
		{"commission_account", c.CommissionAccount},
		{"distribution_income_account", c.DistributionIncomeAccount},
		{"distribution_expense_account", c.DistributionExpenseAccount},
		{"unknown_equity_account", c.UnknownEquityAccount},
	}

	for _, a := range accounts {
		if a.account == "" {
			return fmt.Errorf("%s is required", a.key)
		}
		if _, err := ast.NewAccount(string(a.account)); err != nil {
			return fmt.Errorf("%s: %w", a.key, err)
		}
	}
	return nil
}
