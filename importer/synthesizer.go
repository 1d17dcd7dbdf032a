package importer

import (
	"fmt"

	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/robinvdvleuten/beancount-binance/lots"
	"github.com/shopspring/decimal"
)

// synthesizer is the state shared by the trade and statement synthesizers.
type synthesizer struct {
	config   Config
	pool     *lots.Pool
	options  options
	warnings []Warning
	previous *ast.Date
}

func newSynthesizer(pool *lots.Pool, config Config, opts []Option) synthesizer {
	return synthesizer{
		config:  config,
		pool:    pool,
		options: newOptions(opts),
	}
}

// Warnings returns the warnings collected so far, oldest first.
func (s *synthesizer) Warnings() []Warning {
	return append([]Warning(nil), s.warnings...)
}

func (s *synthesizer) warn(kind WarningKind, date *ast.Date, format string, args ...any) {
	s.warnings = append(s.warnings, Warning{
		Kind:    kind,
		Date:    date,
		Message: fmt.Sprintf(format, args...),
	})
}

// checkOrder records date as the latest row date. In strict mode a date
// before the previous one is an error.
func (s *synthesizer) checkOrder(date *ast.Date) error {
	if s.options.strictOrdering && s.previous != nil && date.Before(s.previous.Time) {
		return &OutOfOrderError{Date: date, Previous: s.previous}
	}
	s.previous = date
	return nil
}

// consume satisfies need of asset from the pool, warning when the pool holds
// less than that.
func (s *synthesizer) consume(need decimal.Decimal, asset string, asOf *ast.Date, purpose string) []lots.Fragment {
	fragments, unsatisfied := s.pool.Satisfy(need, asset, *asOf)
	if unsatisfied.IsPositive() {
		s.warn(WarningInsufficientLots, asOf,
			"not enough %s to satisfy %s of %s %s, %s %s unsatisfied",
			asset, purpose, need, asset, unsatisfied, asset)
	}
	return fragments
}

// fragmentPosting books a consumed lot fragment out of the asset account,
// annotated with the price the lot was acquired at when it is known.
func (s *synthesizer) fragmentPosting(fragment lots.Fragment) *ast.Posting {
	return ast.NewPosting(s.config.AssetAccount,
		ast.WithDecimalAmount(fragment.AmountUsed.Neg(), fragment.BaseAsset),
		ast.WithPrice(fragment.PriceAmount()),
	)
}
