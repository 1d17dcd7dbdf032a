package importer

import (
	"strings"

	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/robinvdvleuten/beancount-binance/binance"
	"github.com/robinvdvleuten/beancount-binance/lots"
)

// OrderIDKey is the transaction metadata key holding a trade's order id.
const OrderIDKey = "order-id"

type tradeSide int

const (
	sideBuy tradeSide = iota
	sideSell
)

// TradeSynthesizer turns trade fills into trade and fee transactions.
type TradeSynthesizer struct {
	synthesizer
}

// NewTradeSynthesizer creates a TradeSynthesizer booking against pool.
func NewTradeSynthesizer(pool *lots.Pool, config Config, opts ...Option) *TradeSynthesizer {
	return &TradeSynthesizer{synthesizer: newSynthesizer(pool, config, opts)}
}

// Process books one fill. It returns the trade transaction, followed by a
// fee transaction when the fill was charged a commission.
func (s *TradeSynthesizer) Process(fill binance.TradeFill) ([]*ast.Transaction, error) {
	base := EscapeAssetName(fill.BaseAsset)
	quote := EscapeAssetName(fill.QuoteAsset)

	date := fill.FillDate
	if date == nil {
		date = fill.OrderDate
		s.warn(WarningMissingFillDate, date,
			"fill date missing for order %s (%s), using order date", fill.OrderID, fill.Description)
	}
	if err := s.checkOrder(date); err != nil {
		return nil, err
	}

	side, err := sideOf(fill, date)
	if err != nil {
		return nil, err
	}

	var postings []*ast.Posting
	switch side {
	case sideBuy:
		if err := s.pool.Push(fill.Amount, base, *date, &fill.Price, quote); err != nil {
			return nil, err
		}
		postings = []*ast.Posting{
			ast.NewPosting(s.config.AssetAccount,
				ast.WithDecimalAmount(fill.Amount, base),
				ast.WithPrice(ast.NewDecimalAmount(fill.Price, quote)),
			),
			ast.NewPosting(s.config.AssetAccount,
				ast.WithDecimalAmount(fill.Amount.Mul(fill.Price).Neg(), quote),
			),
		}

	case sideSell:
		proceeds := fill.Amount.Mul(fill.Price)
		for _, fragment := range s.consume(fill.Amount, base, date, fill.Description) {
			postings = append(postings, ast.NewPosting(s.config.AssetAccount,
				ast.WithDecimalAmount(fragment.AmountUsed.Neg(), fragment.BaseAsset),
				ast.WithPrice(ast.NewDecimalAmount(fill.Price, quote)),
			))
		}
		postings = append(postings, ast.NewPosting(s.config.AssetAccount,
			ast.WithDecimalAmount(proceeds, quote),
		))

		// The proceeds become a lot of their own; their cost basis is not
		// tracked.
		if err := s.pool.Push(proceeds, quote, *date, nil, ""); err != nil {
			return nil, err
		}
	}

	txns := []*ast.Transaction{s.transaction(fill, date, fill.Description, postings)}
	if fee := s.fee(fill, date); fee != nil {
		txns = append(txns, fee)
	}
	return txns, nil
}

// fee books the commissions of a fill as a separate transaction, since the
// ledger rejects a trade whose fee is paid in a third currency. Only the
// first commission is balanced against the commission account.
func (s *TradeSynthesizer) fee(fill binance.TradeFill, date *ast.Date) *ast.Transaction {
	charged := false
	var postings []*ast.Posting

	for _, commission := range fill.Commissions {
		if !commission.Amount.IsPositive() {
			continue
		}
		charged = true

		asset := EscapeAssetName(commission.Asset)
		for _, fragment := range s.consume(commission.Amount, asset, date, fill.Description+" fee") {
			postings = append(postings, s.fragmentPosting(fragment))
		}
		if commission.Column == 0 {
			postings = append(postings, ast.NewPosting(s.config.CommissionAccount))
		}
	}

	if !charged {
		return nil
	}
	return s.transaction(fill, date, fill.Description+" fee", postings)
}

func (s *TradeSynthesizer) transaction(fill binance.TradeFill, date *ast.Date, narration string, postings []*ast.Posting) *ast.Transaction {
	opts := []ast.TransactionOption{
		ast.WithFlag("*"),
		ast.WithPostings(postings...),
	}
	if fill.OrderID != "" {
		opts = append(opts, ast.WithTransactionMetadata(ast.NewMetadata(OrderIDKey, fill.OrderID)))
	}
	return ast.NewTransaction(date, narration, opts...)
}

func sideOf(fill binance.TradeFill, date *ast.Date) (tradeSide, error) {
	switch {
	case strings.HasSuffix(fill.Description, "buy"):
		return sideBuy, nil
	case strings.HasSuffix(fill.Description, "sell"):
		return sideSell, nil
	}
	return 0, &UnknownSideError{Date: date, OrderID: fill.OrderID, Description: fill.Description}
}
