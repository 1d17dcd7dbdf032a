package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/beancount-binance/binance"
)

type IdentifyCmd struct {
	Files []string `help:"Files to identify." arg:""`
}

// Run prints the export kind of each file. It fails when any file is not a
// Binance export the importer can read.
func (cmd *IdentifyCmd) Run(ctx *kong.Context) error {
	unknown := 0
	for _, file := range cmd.Files {
		kind := binance.Identify(file)
		if kind == binance.KindUnknown {
			unknown++
			printError(ctx.Stderr, fmt.Sprintf("%s: not a Binance export", file))
			continue
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "%s\t%s\n", file, kind)
	}

	if unknown > 0 {
		return NewCommandError(1)
	}
	return nil
}
