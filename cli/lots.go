package cli

import (
	"fmt"
	"io"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/beancount-binance/importer"
	"github.com/robinvdvleuten/beancount-binance/lots"
)

type LotsCmd struct {
	Files []string `help:"Binance exports to extract, in the order their rows happened." arg:"" type:"existingfile"`
	Asset string   `help:"Only show lots of this asset."`
	Dump  bool     `help:"Dump the lot pool as Go values instead of a table."`
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Run extracts the exports and prints the lots left open afterwards, followed
// by the balance of each asset.
func (cmd *LotsCmd) Run(ctx *kong.Context, globals *Globals) error {
	config, err := globals.LoadConfig()
	if err != nil {
		reportError(ctx.Stderr, err, globals.ErrorFormat)
		return NewCommandError(1)
	}

	imp, err := importer.New(config)
	if err != nil {
		reportError(ctx.Stderr, err, globals.ErrorFormat)
		return NewCommandError(1)
	}

	runCtx, report := withTelemetry(ctx, globals)
	defer report()

	for _, file := range cmd.Files {
		if _, err := imp.ExtractFile(runCtx, file); err != nil {
			reportError(ctx.Stderr, err, globals.ErrorFormat)
			return NewCommandError(1)
		}
	}

	for _, warning := range imp.Warnings() {
		printWarning(ctx.Stderr, warning.String())
	}

	open := imp.Pool().Snapshot()
	if cmd.Asset != "" {
		open = slices.DeleteFunc(open, func(lot lots.Lot) bool { return lot.BaseAsset != cmd.Asset })
	}

	if cmd.Dump {
		repr.New(ctx.Stdout, repr.Indent("  ")).Println(dumpLots(open))
		return nil
	}

	if len(open) == 0 {
		printInfof(ctx.Stdout, "No open lots")
		return nil
	}

	writeLots(ctx.Stdout, open)
	_, _ = fmt.Fprintln(ctx.Stdout)
	writeBalances(ctx.Stdout, open)
	return nil
}

// lotDump is a lot with every field rendered as text. repr cannot walk a
// nil *decimal.Decimal, which every lot without a cost basis has.
type lotDump struct {
	FillDate   string
	BaseAsset  string
	AmountLeft string
	Amount     string
	Price      string
	QuoteAsset string
	Sequence   uint64
}

func dumpLots(open []lots.Lot) []lotDump {
	dump := make([]lotDump, 0, len(open))
	for _, lot := range open {
		d := lotDump{
			FillDate:   lot.FillDate.String(),
			BaseAsset:  lot.BaseAsset,
			AmountLeft: lot.AmountLeft.String(),
			Amount:     lot.Amount.String(),
			QuoteAsset: lot.QuoteAsset,
			Sequence:   lot.Sequence,
		}
		if lot.Price != nil {
			d.Price = lot.Price.String()
		}
		dump = append(dump, d)
	}
	return dump
}

func styleCell(row, _ int) lipgloss.Style {
	if row == table.HeaderRow {
		return headerStyle
	}
	return cellStyle
}

func writeLots(w io.Writer, open []lots.Lot) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(styleCell).
		Headers("DATE", "ASSET", "LEFT", "AMOUNT", "COST")

	for _, lot := range open {
		cost := "-"
		if lot.HasCostBasis() {
			cost = lot.Price.String() + " " + lot.QuoteAsset
		}
		t.Row(lot.FillDate.String(), lot.BaseAsset, lot.AmountLeft.String(), lot.Amount.String(), cost)
	}

	_, _ = fmt.Fprintln(w, t.Render())
}

func writeBalances(w io.Writer, open []lots.Lot) {
	balances := make(map[string]decimal.Decimal)
	for _, lot := range open {
		balances[lot.BaseAsset] = balances[lot.BaseAsset].Add(lot.AmountLeft)
	}

	assets := maps.Keys(balances)
	slices.Sort(assets)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(styleCell).
		Headers("ASSET", "BALANCE")
	for _, asset := range assets {
		t.Row(asset, balances[asset].String())
	}

	_, _ = fmt.Fprintln(w, t.Render())
}
