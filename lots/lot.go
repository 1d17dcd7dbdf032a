// Package lots tracks open cost-basis lots and consumes them first-in,
// first-out.
//
// A Pool is the single piece of mutable state shared by every synthesizer
// of one import run. It is not safe for concurrent use.
package lots

import (
	"fmt"

	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/shopspring/decimal"
)

// Lot is a claim on a quantity of one asset acquired on a given date,
// optionally priced in a second asset.
type Lot struct {
	Amount     decimal.Decimal
	AmountLeft decimal.Decimal
	BaseAsset  string
	// Price and QuoteAsset are both nil/empty when the cost basis is unknown,
	// e.g. for deposits and airdrops.
	Price      *decimal.Decimal
	QuoteAsset string
	FillDate   ast.Date
	// Sequence is the lot's push order within the pool. It breaks ties
	// between lots sharing a fill date.
	Sequence uint64
}

// HasCostBasis reports whether the lot records a unit price.
func (l Lot) HasCostBasis() bool {
	return l.Price != nil && l.QuoteAsset != ""
}

// String returns a string representation of the lot
func (l Lot) String() string {
	s := fmt.Sprintf("%s/%s %s", l.AmountLeft.String(), l.Amount.String(), l.BaseAsset)
	if l.HasCostBasis() {
		s += fmt.Sprintf(" {%s %s}", l.Price.String(), l.QuoteAsset)
	}
	return s + " " + l.FillDate.String()
}

// Fragment is the part of a lot consumed by one Satisfy call. It copies the
// lot's identity and price so postings can be built from it after the lot
// itself has been shrunk or removed.
type Fragment struct {
	AmountUsed decimal.Decimal
	BaseAsset  string
	Price      *decimal.Decimal
	QuoteAsset string
	FillDate   ast.Date
}

// HasCostBasis reports whether the consumed lot recorded a unit price.
func (f Fragment) HasCostBasis() bool {
	return f.Price != nil && f.QuoteAsset != ""
}

// PriceAmount returns the fragment's unit price as an amount, or nil when the
// lot had no known cost basis.
func (f Fragment) PriceAmount() *ast.Amount {
	if !f.HasCostBasis() {
		return nil
	}
	return ast.NewDecimalAmount(*f.Price, f.QuoteAsset)
}

// Total sums the amounts used across fragments.
func Total(fragments []Fragment) decimal.Decimal {
	total := decimal.Zero
	for _, f := range fragments {
		total = total.Add(f.AmountUsed)
	}
	return total
}
