// Package binance reads Binance export files into typed records.
//
// Two exports are supported: the processed trade-fills CSV
// (bina-<anything>-processed.csv, newest fill first) and the account statement
// CSV (0binastmt-<anything>.csv, oldest row first). Both are returned in
// chronological order.
package binance

import (
	"path/filepath"
	"regexp"
)

// FileKind identifies which Binance export a file contains.
type FileKind int

const (
	// KindUnknown is any file this package cannot read.
	KindUnknown FileKind = iota
	// KindTrades is the processed trade-fills export.
	KindTrades
	// KindStatement is the account statement export.
	KindStatement
)

func (k FileKind) String() string {
	switch k {
	case KindTrades:
		return "trades"
	case KindStatement:
		return "statement"
	default:
		return "unknown"
	}
}

var (
	tradesFilePattern    = regexp.MustCompile(`^bina-.*-processed\.csv$`)
	statementFilePattern = regexp.MustCompile(`^0binastmt-.*\.csv$`)
)

// Identify returns the kind of export stored at filename, judged by its base
// name only.
func Identify(filename string) FileKind {
	name := filepath.Base(filename)
	switch {
	case tradesFilePattern.MatchString(name):
		return KindTrades
	case statementFilePattern.MatchString(name):
		return KindStatement
	default:
		return KindUnknown
	}
}
