package importer

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/robinvdvleuten/beancount-binance/binance"
	"github.com/robinvdvleuten/beancount-binance/lots"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Narrations of the transactions built from buffered statement rows.
const (
	DustNarration        = "Small assets exchange into BNB"
	SimpleTradeNarration = "Manual exchange via simple interface"
)

const dustTarget = "BNB"

// dustConversion accumulates consecutive dust exchange rows. Assets keep the
// order in which they were first seen.
type dustConversion struct {
	assets  []string
	amounts map[string]decimal.Decimal
}

func (d *dustConversion) add(asset string, change decimal.Decimal) {
	if d.amounts == nil {
		d.amounts = make(map[string]decimal.Decimal)
	}
	if _, ok := d.amounts[asset]; !ok {
		d.assets = append(d.assets, asset)
	}
	d.amounts[asset] = d.amounts[asset].Add(change)
}

func (d *dustConversion) empty() bool {
	return len(d.assets) == 0
}

func (d *dustConversion) reset() {
	*d = dustConversion{}
}

// tradeLeg is one side of a simple trade.
type tradeLeg struct {
	asset  string
	amount decimal.Decimal
}

// simpleTrade pairs the outgoing (source) and incoming (target) rows of a
// trade made through the simple interface.
type simpleTrade struct {
	source *tradeLeg
	target *tradeLeg
}

func (t *simpleTrade) complete() bool {
	return t.source != nil && t.target != nil
}

func (t *simpleTrade) empty() bool {
	return t.source == nil && t.target == nil
}

// slot returns the leg a row with the given change fills.
func (t *simpleTrade) slot(change decimal.Decimal) **tradeLeg {
	if change.IsNegative() {
		return &t.source
	}
	return &t.target
}

func (t *simpleTrade) reset() {
	*t = simpleTrade{}
}

// StatementSynthesizer turns account statement rows into transactions. Dust
// exchanges and simple trades span several rows and are buffered until a row
// of another kind, or Finish, flushes them.
type StatementSynthesizer struct {
	synthesizer

	dust  dustConversion
	trade simpleTrade
	// date is the date of the most recent row.
	date *ast.Date
}

// NewStatementSynthesizer creates a StatementSynthesizer booking against pool.
func NewStatementSynthesizer(pool *lots.Pool, config Config, opts ...Option) *StatementSynthesizer {
	return &StatementSynthesizer{synthesizer: newSynthesizer(pool, config, opts)}
}

// Process books one statement row and returns the transactions it
// completed, if any.
func (s *StatementSynthesizer) Process(row binance.StatementRow) ([]*ast.Transaction, error) {
	if err := s.checkOrder(row.Date); err != nil {
		return nil, err
	}
	s.date = row.Date
	coin := EscapeAssetName(row.Coin)

	var txns []*ast.Transaction
	switch row.Operation {
	case binance.OperationDustExchange:
		s.dust.add(coin, row.Change)
		return nil, nil

	case binance.OperationSimpleTrade:
		slot := s.trade.slot(row.Change)
		if *slot != nil {
			if s.trade.complete() {
				txn, err := s.flushTrade()
				if err != nil {
					return nil, err
				}
				txns = append(txns, txn)
				slot = s.trade.slot(row.Change)
			} else {
				s.warn(WarningReplacedTradeLeg, row.Date,
					"simple trade leg %s %s replaced by %s %s before it was paired",
					(*slot).amount, (*slot).asset, row.Change, coin)
			}
		}
		*slot = &tradeLeg{asset: coin, amount: row.Change}

		txn, err := s.flushDust()
		if err != nil {
			return nil, err
		}
		return appendTxn(txns, txn), nil

	case binance.OperationDistribution:
		txn, err := s.distribution(row, coin)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)

	case binance.OperationDeposit:
		txn, err := s.deposit(row, coin)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	flushed, err := s.flush()
	if err != nil {
		return nil, err
	}
	return append(txns, flushed...), nil
}

// Finish flushes whatever is still buffered at the end of the statement. A
// simple trade leg without its counterpart is dropped with a warning.
func (s *StatementSynthesizer) Finish() ([]*ast.Transaction, error) {
	txns, err := s.flush()
	if err != nil {
		return nil, err
	}

	if !s.trade.empty() {
		leg := s.trade.source
		if leg == nil {
			leg = s.trade.target
		}
		s.warn(WarningUnpairedTradeLeg, s.date,
			"dropping simple trade leg %s %s without a counterpart", leg.amount, leg.asset)
		s.trade.reset()
	}

	return txns, nil
}

func (s *StatementSynthesizer) flush() ([]*ast.Transaction, error) {
	var txns []*ast.Transaction

	dust, err := s.flushDust()
	if err != nil {
		return nil, err
	}
	txns = appendTxn(txns, dust)

	if s.trade.complete() {
		trade, err := s.flushTrade()
		if err != nil {
			return nil, err
		}
		txns = append(txns, trade)
	}

	return txns, nil
}

// distribution books a positive distribution (airdrop) as income and a
// negative one (delisting, symbol rename) as an expense that consumes lots.
func (s *StatementSynthesizer) distribution(row binance.StatementRow, coin string) (*ast.Transaction, error) {
	postings := []*ast.Posting{
		ast.NewPosting(s.config.AssetAccount, ast.WithDecimalAmount(row.Change, coin)),
	}

	if row.Change.IsPositive() {
		postings = append(postings, ast.NewPosting(s.config.DistributionIncomeAccount))
		if err := s.pool.Push(row.Change, coin, *row.Date, nil, ""); err != nil {
			return nil, err
		}
	} else {
		postings = append(postings, ast.NewPosting(s.config.DistributionExpenseAccount))
		for _, fragment := range s.consume(row.Change.Abs(), coin, row.Date, row.Operation) {
			postings = append(postings, s.fragmentPosting(fragment))
		}
	}

	return s.transaction(row.Date, describe(row, coin), postings), nil
}

func (s *StatementSynthesizer) deposit(row binance.StatementRow, coin string) (*ast.Transaction, error) {
	if err := s.pool.Push(row.Change, coin, *row.Date, nil, ""); err != nil {
		return nil, err
	}
	return s.transaction(row.Date, describe(row, coin), []*ast.Posting{
		ast.NewPosting(s.config.AssetAccount, ast.WithDecimalAmount(row.Change, coin)),
		ast.NewPosting(s.config.UnknownEquityAccount),
	}), nil
}

// flushDust books the accumulated dust exchange. The BNB received is listed
// first and becomes a new lot without cost basis.
func (s *StatementSynthesizer) flushDust() (*ast.Transaction, error) {
	if s.dust.empty() {
		return nil, nil
	}
	defer s.dust.reset()

	postings := []*ast.Posting{ast.NewPosting(s.config.AssetAccount)}
	for _, asset := range s.dust.assets {
		posting := ast.NewPosting(s.config.AssetAccount, ast.WithDecimalAmount(s.dust.amounts[asset], asset))
		if asset != dustTarget {
			postings = append(postings, posting)
			continue
		}

		postings = slices.Insert(postings, 1, posting)
		if err := s.pool.Push(s.dust.amounts[asset], asset, *s.date, nil, ""); err != nil {
			return nil, err
		}
	}

	return s.transaction(s.date, DustNarration, postings), nil
}

// impliedPricePlaces is the number of decimal places an implied simple trade
// price is rounded to.
const impliedPricePlaces = 28

// flushTrade books a complete simple trade. The price of the target asset is
// implied by the two legs.
func (s *StatementSynthesizer) flushTrade() (*ast.Transaction, error) {
	source, target := s.trade.source, s.trade.target
	s.trade.reset()

	if !target.amount.IsPositive() {
		return nil, &lots.InvalidLotError{Amount: target.amount, BaseAsset: target.asset, FillDate: *s.date}
	}
	price := source.amount.Abs().DivRound(target.amount, impliedPricePlaces)

	if err := s.pool.Push(target.amount, target.asset, *s.date, &price, source.asset); err != nil {
		return nil, err
	}
	return s.transaction(s.date, SimpleTradeNarration, []*ast.Posting{
		ast.NewPosting(s.config.AssetAccount,
			ast.WithDecimalAmount(target.amount, target.asset),
			ast.WithPrice(ast.NewDecimalAmount(price, source.asset)),
		),
		ast.NewPosting(s.config.AssetAccount, ast.WithDecimalAmount(source.amount, source.asset)),
	}), nil
}

func (s *StatementSynthesizer) transaction(date *ast.Date, narration string, postings []*ast.Posting) *ast.Transaction {
	return ast.NewClearedTransaction(date, narration, postings...)
}

// describe renders the narration of a distribution or deposit row.
func describe(row binance.StatementRow, coin string) string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s %s", row.Account, row.Operation, coin, row.Remark))
}

func appendTxn(txns []*ast.Transaction, txn *ast.Transaction) []*ast.Transaction {
	if txn == nil {
		return txns
	}
	return append(txns, txn)
}
