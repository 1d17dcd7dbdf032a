package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/robinvdvleuten/beancount-binance/formatter"
	"github.com/robinvdvleuten/beancount-binance/importer"
	"github.com/robinvdvleuten/beancount-binance/telemetry"
)

// watchDebounce is how long a burst of file events has to settle before the
// exports are extracted again. Editors and downloads often write in steps.
const watchDebounce = 100 * time.Millisecond

type ExtractCmd struct {
	Files             []string `help:"Binance exports to extract, in the order their rows happened." arg:"" type:"existingfile"`
	Output            string   `help:"Write the ledger to this file instead of stdout." short:"o" type:"path"`
	Force             bool     `help:"Overwrite the output file without asking." short:"f"`
	Strict            bool     `help:"Fail on rows dated before the row preceding them."`
	Sort              bool     `help:"Sort the transactions of each export by date."`
	Watch             bool     `help:"Extract again whenever an export changes (requires --output)." short:"w"`
	AssetAccount      string   `help:"Account holding the exchange balances."`
	CommissionAccount string   `help:"Account receiving trade commissions."`
}

func (cmd *ExtractCmd) Run(ctx *kong.Context, globals *Globals) error {
	config, err := cmd.config(globals)
	if err != nil {
		reportError(ctx.Stderr, err, globals.ErrorFormat)
		return NewCommandError(1)
	}

	if cmd.Watch && cmd.Output == "" {
		printError(ctx.Stderr, "--watch needs --output")
		return NewCommandError(1)
	}

	if cmd.Output != "" && !cmd.Force {
		if _, err := os.Stat(cmd.Output); err == nil {
			confirmed, err := promptYesNo(fmt.Sprintf("File %q already exists. Overwrite it?", cmd.Output))
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			if !confirmed {
				printError(ctx.Stderr, fmt.Sprintf("not overwriting %s, pass --force to overwrite", cmd.Output))
				return NewCommandError(1)
			}
		}
	}

	runCtx, report := withTelemetry(ctx, globals)
	err = cmd.extract(runCtx, config, ctx.Stdout, ctx.Stderr)
	report()
	if err != nil {
		reportError(ctx.Stderr, err, globals.ErrorFormat)
		if !cmd.Watch {
			return NewCommandError(1)
		}
	}

	if !cmd.Watch {
		return nil
	}

	watchCtx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	printInfof(ctx.Stderr, "Watching %d export(s) for changes, press Ctrl+C to stop", len(cmd.Files))
	return cmd.watch(watchCtx, func() {
		if err := cmd.extract(watchCtx, config, ctx.Stdout, ctx.Stderr); err != nil {
			reportError(ctx.Stderr, err, globals.ErrorFormat)
		}
	}, ctx.Stderr)
}

// config merges the configuration file with the account flags.
func (cmd *ExtractCmd) config(globals *Globals) (importer.Config, error) {
	config, err := globals.LoadConfig()
	if err != nil {
		return importer.Config{}, err
	}

	if cmd.AssetAccount != "" {
		config.AssetAccount = ast.Account(cmd.AssetAccount)
	}
	if cmd.CommissionAccount != "" {
		config.CommissionAccount = ast.Account(cmd.CommissionAccount)
	}
	if cmd.Strict {
		config.StrictOrdering = true
	}

	if err := config.Validate(); err != nil {
		return importer.Config{}, err
	}
	return config, nil
}

// extract runs a fresh import of every file and writes the ledger. Warnings
// are printed to stderr; they never fail the extraction.
func (cmd *ExtractCmd) extract(ctx context.Context, config importer.Config, stdout, stderr io.Writer) error {
	timer := telemetry.FromContext(ctx).Start("extract")
	defer timer.End()

	imp, err := importer.New(config)
	if err != nil {
		return err
	}

	count := 0
	sections := make([]formatter.Section, 0, len(cmd.Files))
	for _, file := range cmd.Files {
		txns, err := imp.ExtractFile(ctx, file)
		if err != nil {
			return err
		}
		count += len(txns)
		sections = append(sections, formatter.Section{Title: filepath.Base(file), Transactions: txns})
	}

	for _, warning := range imp.Warnings() {
		printWarning(stderr, warning.String())
	}

	var opts []formatter.Option
	if cmd.Sort {
		opts = append(opts, formatter.WithSortByDate())
	}

	if cmd.Output == "" {
		return formatter.New(opts...).Format(ctx, stdout, sections...)
	}

	var buf bytes.Buffer
	if err := formatter.New(opts...).Format(ctx, &buf, sections...); err != nil {
		return err
	}
	if err := os.WriteFile(cmd.Output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	printSuccess(stderr, fmt.Sprintf("Wrote %d transaction(s) to %s", count, pathStyle.Render(cmd.Output)))
	return nil
}

// watch calls rerun whenever one of the exports changes, until ctx is done.
// Reruns happen on the calling goroutine, one at a time.
func (cmd *ExtractCmd) watch(ctx context.Context, rerun func(), stderr io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, file := range cmd.Files {
		if err := watcher.Add(file); err != nil {
			return fmt.Errorf("failed to watch %s: %w", file, err)
		}
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	settled := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Remove and Rename are how atomic saves show up.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case settled <- struct{}{}:
				default:
				}
			})

		case <-settled:
			// Re-add the exports so files replaced by an atomic save stay watched.
			for _, file := range cmd.Files {
				_ = watcher.Add(file)
			}
			rerun()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printWarning(stderr, fmt.Sprintf("file watcher error: %v", err))
		}
	}
}
