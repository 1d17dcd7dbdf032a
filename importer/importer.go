// Package importer turns Binance exports into Beancount transactions while
// tracking the cost basis of every holding with FIFO lots.
//
// An Importer owns one lot pool for its whole lifetime, so a trades export
// and a statement export extracted by the same Importer consume each other's
// lots. Extract files in the order their rows happened.
//
//	imp, err := importer.New(importer.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	txns, err := imp.ExtractFile(ctx, "0binastmt-2021.csv")
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/robinvdvleuten/beancount-binance/binance"
	"github.com/robinvdvleuten/beancount-binance/lots"
	"github.com/robinvdvleuten/beancount-binance/telemetry"
)

// Importer extracts transactions from Binance exports against a shared lot
// pool. It is not safe for concurrent use.
type Importer struct {
	config   Config
	opts     []Option
	pool     *lots.Pool
	warnings []Warning
}

// New creates an Importer with an empty lot pool.
func New(config Config, opts ...Option) (*Importer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.StrictOrdering {
		opts = append(opts, WithStrictOrdering())
	}
	return &Importer{
		config: config,
		opts:   opts,
		pool:   lots.NewPool(),
	}, nil
}

// Pool returns the lot pool shared by every extraction.
func (i *Importer) Pool() *lots.Pool {
	return i.pool
}

// Warnings returns the warnings of every extraction so far, in the order
// they were raised.
func (i *Importer) Warnings() []Warning {
	return append([]Warning(nil), i.warnings...)
}

// ExtractFile opens filename and extracts it with Extract.
func (i *Importer) ExtractFile(ctx context.Context, filename string) ([]*ast.Transaction, error) {
	if binance.Identify(filename) == binance.KindUnknown {
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFile)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return i.Extract(ctx, filename, f)
}

// Extract reads a Binance export from r. The kind of export is identified by
// filename. The returned transactions are in booking order.
func (i *Importer) Extract(ctx context.Context, filename string, r io.Reader) ([]*ast.Transaction, error) {
	kind := binance.Identify(filename)
	if kind == binance.KindUnknown {
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFile)
	}

	timer := telemetry.FromContext(ctx).Start("extract " + filepath.Base(filename))
	defer timer.End()

	readTimer := timer.Child("read")
	records, err := binance.ReadRecords(kind, r)
	readTimer.End()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	synthesizeTimer := timer.Child("synthesize")
	defer synthesizeTimer.End()

	var txns []*ast.Transaction
	switch kind {
	case binance.KindTrades:
		txns, err = i.extractTrades(ctx, filename, records)
	case binance.KindStatement:
		txns, err = i.extractStatement(ctx, filename, records)
	}
	if err != nil {
		var lineErr *LineError
		if errors.As(err, &lineErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return txns, nil
}

func (i *Importer) extractTrades(ctx context.Context, filename string, records []binance.Record) ([]*ast.Transaction, error) {
	s := NewTradeSynthesizer(i.pool, i.config, i.opts...)
	defer func() { i.warnings = append(i.warnings, s.Warnings()...) }()

	var txns []*ast.Transaction
	for n, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Trade exports are newest first, so the first record is the last line.
		pos := ast.Position{Filename: filename, Line: len(records) - n + 1}

		fill, err := binance.ParseTradeFill(record)
		if err != nil {
			return nil, &LineError{Pos: pos, Err: err}
		}
		booked, err := s.Process(fill)
		if err != nil {
			return nil, &LineError{Pos: pos, Err: err}
		}
		txns = append(txns, booked...)
	}
	return txns, nil
}

func (i *Importer) extractStatement(ctx context.Context, filename string, records []binance.Record) ([]*ast.Transaction, error) {
	s := NewStatementSynthesizer(i.pool, i.config, i.opts...)
	defer func() { i.warnings = append(i.warnings, s.Warnings()...) }()

	var txns []*ast.Transaction
	for n, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pos := ast.Position{Filename: filename, Line: n + 2}

		row, err := binance.ParseStatementRow(record)
		if err != nil {
			return nil, &LineError{Pos: pos, Err: err}
		}
		booked, err := s.Process(row)
		if err != nil {
			return nil, &LineError{Pos: pos, Err: err}
		}
		txns = append(txns, booked...)
	}

	booked, err := s.Finish()
	if err != nil {
		return nil, err
	}
	return append(txns, booked...), nil
}
