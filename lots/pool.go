package lots

import (
	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Pool holds the open lots of an import run, sorted ascending by fill date.
// Lots sharing a fill date stay in push order, so the oldest push is
// consumed first.
type Pool struct {
	lots    []*Lot
	nextSeq uint64
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Push adds a new lot of amount baseAsset acquired on fillDate. Pass a nil
// price and empty quoteAsset when the cost basis is unknown.
func (p *Pool) Push(amount decimal.Decimal, baseAsset string, fillDate ast.Date, price *decimal.Decimal, quoteAsset string) error {
	if !amount.IsPositive() {
		return &InvalidLotError{Amount: amount, BaseAsset: baseAsset, FillDate: fillDate}
	}

	if price == nil {
		quoteAsset = ""
	} else {
		pc := *price
		price = &pc
	}

	lot := &Lot{
		Amount:     amount,
		AmountLeft: amount,
		BaseAsset:  baseAsset,
		Price:      price,
		QuoteAsset: quoteAsset,
		FillDate:   fillDate,
		Sequence:   p.nextSeq,
	}
	p.nextSeq++

	// Insert after every lot dated on or before fillDate; this keeps the
	// slice sorted and makes same-day ties resolve by push order.
	i, _ := slices.BinarySearchFunc(p.lots, lot, func(existing, target *Lot) int {
		if existing.FillDate.After(target.FillDate.Time) {
			return 1
		}
		return -1
	})
	p.lots = slices.Insert(p.lots, i, lot)

	return nil
}

// Snapshot returns a copy of the open lots in pool order.
func (p *Pool) Snapshot() []Lot {
	snapshot := make([]Lot, len(p.lots))
	for i, lot := range p.lots {
		snapshot[i] = *lot
		if lot.Price != nil {
			pc := *lot.Price
			snapshot[i].Price = &pc
		}
	}
	return snapshot
}

// Len returns the number of open lots.
func (p *Pool) Len() int {
	return len(p.lots)
}

// Balances sums the amount left per asset across all open lots.
func (p *Pool) Balances() map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)
	for _, lot := range p.lots {
		balances[lot.BaseAsset] = balances[lot.BaseAsset].Add(lot.AmountLeft)
	}
	return balances
}
