package cli

import (
	"github.com/robinvdvleuten/beancount-binance/importer"
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry   bool   `help:"Show timing telemetry for operations."`
	Config      string `help:"YAML file with the accounts to book to." type:"path" env:"BEANCOUNT_BINANCE_CONFIG"`
	ErrorFormat string `help:"How to print errors (${enum})." enum:"text,json" default:"text"`
}

// LoadConfig returns the configuration file's settings, or the defaults
// when no file was given.
func (g *Globals) LoadConfig() (importer.Config, error) {
	if g.Config == "" {
		return importer.DefaultConfig(), nil
	}
	return importer.LoadConfig(g.Config)
}

type Commands struct {
	Globals

	Extract  ExtractCmd  `cmd:"" help:"Extract Beancount transactions from Binance exports."`
	Identify IdentifyCmd `cmd:"" help:"Report which Binance export each file is."`
	Lots     LotsCmd     `cmd:"" help:"Show the lots still open after extracting Binance exports."`
}
