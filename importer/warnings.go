package importer

import (
	"fmt"

	"github.com/robinvdvleuten/beancount-binance/ast"
)

// WarningKind classifies a Warning.
type WarningKind int

const (
	// WarningMissingFillDate means a trade had no fill timestamp and was
	// booked on its order date instead.
	WarningMissingFillDate WarningKind = iota + 1
	// WarningInsufficientLots means fewer units were held than a sell, fee
	// or distribution consumed.
	WarningInsufficientLots
	// WarningReplacedTradeLeg means a simple trade leg was overwritten by
	// another leg of the same direction before it could be paired.
	WarningReplacedTradeLeg
	// WarningUnpairedTradeLeg means a simple trade leg was still waiting for
	// its counterpart when the statement ended and was dropped.
	WarningUnpairedTradeLeg
)

func (k WarningKind) String() string {
	switch k {
	case WarningMissingFillDate:
		return "missing fill date"
	case WarningInsufficientLots:
		return "insufficient lots"
	case WarningReplacedTradeLeg:
		return "replaced trade leg"
	case WarningUnpairedTradeLeg:
		return "unpaired trade leg"
	default:
		return "unknown"
	}
}

// Warning describes a row that was imported in a degraded way. Warnings never
// stop an import.
type Warning struct {
	Kind    WarningKind
	Date    *ast.Date
	Message string
}

func (w Warning) String() string {
	if w.Date.IsZero() {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.Date, w.Message)
}
