// Package cli implements the beancount-binance commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	errfmt "github.com/robinvdvleuten/beancount-binance/errors"
	"github.com/robinvdvleuten/beancount-binance/importer"
	"github.com/robinvdvleuten/beancount-binance/output"
	"github.com/robinvdvleuten/beancount-binance/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"
	warningSymbol = "!"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD75F"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
}

func printInfof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", warningStyle.Render(warningSymbol), message)
}

// reportError prints err in the requested format. Text errors pointing at a
// row of an export are followed by the rows around it.
func reportError(w io.Writer, err error, format string) {
	if format == "json" {
		_, _ = fmt.Fprintln(w, errfmt.NewJSONFormatter().Format(err))
		return
	}

	var opts []errfmt.TextFormatterOption
	var lineErr *importer.LineError
	if errors.As(err, &lineErr) {
		if source, readErr := os.ReadFile(lineErr.Pos.Filename); readErr == nil {
			opts = append(opts, errfmt.WithSource(source))
		}
	}

	message, rows, _ := strings.Cut(errfmt.NewTextFormatter(opts...).Format(err), "\n\n")
	printError(w, message)
	if rows != "" {
		_, _ = fmt.Fprintf(w, "\n%s", rows)
	}
}

// promptYesNo asks a yes/no question on the terminal. Without a terminal on
// stdin the answer is no.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool

	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return confirm, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// withTelemetry returns a context collecting timings when enabled, and a
// function reporting them to the command's stderr.
func withTelemetry(ctx *kong.Context, globals *Globals) (context.Context, func()) {
	runCtx := context.Background()
	if !globals.Telemetry {
		return runCtx, func() {}
	}

	collector := telemetry.NewTimingCollector()
	return telemetry.WithCollector(runCtx, collector), func() {
		_, _ = fmt.Fprintln(ctx.Stderr)
		collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
	}
}
