package lots

import (
	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/shopspring/decimal"
)

// Satisfy consumes need of asset from the oldest eligible lots. Lots of other
// assets and lots filled after asOf are skipped. The last lot touched is
// split when it holds more than is still needed; exhausted lots are removed.
//
// A shortage is not an error: the fragments that were found are returned
// together with the unsatisfied remainder, and the caller decides how to
// report it. A non-positive need consumes nothing.
func (p *Pool) Satisfy(need decimal.Decimal, asset string, asOf ast.Date) ([]Fragment, decimal.Decimal) {
	if !need.IsPositive() {
		return nil, decimal.Zero
	}

	var fragments []Fragment
	remaining := need
	kept := p.lots[:0]

	for _, lot := range p.lots {
		if remaining.IsZero() || lot.BaseAsset != asset || lot.FillDate.After(asOf.Time) {
			kept = append(kept, lot)
			continue
		}

		if lot.AmountLeft.GreaterThan(remaining) {
			lot.AmountLeft = lot.AmountLeft.Sub(remaining)
			fragments = append(fragments, fragmentOf(lot, remaining))
			remaining = decimal.Zero
			kept = append(kept, lot)
			continue
		}

		// Take all from this lot
		fragments = append(fragments, fragmentOf(lot, lot.AmountLeft))
		remaining = remaining.Sub(lot.AmountLeft)
		lot.AmountLeft = decimal.Zero
	}

	// Drop references past the new end so removed lots can be collected.
	for i := len(kept); i < len(p.lots); i++ {
		p.lots[i] = nil
	}
	p.lots = kept

	return fragments, remaining
}

func fragmentOf(lot *Lot, used decimal.Decimal) Fragment {
	var price *decimal.Decimal
	if lot.Price != nil {
		pc := *lot.Price
		price = &pc
	}
	return Fragment{
		AmountUsed: used,
		BaseAsset:  lot.BaseAsset,
		Price:      price,
		QuoteAsset: lot.QuoteAsset,
		FillDate:   lot.FillDate,
	}
}
