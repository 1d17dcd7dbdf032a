package importer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/shopspring/decimal"
)

func date(t *testing.T, s string) *ast.Date {
	t.Helper()
	d, err := ast.NewDate(s)
	assert.NoError(t, err)
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// postings renders each posting as "<account> [<amount>] [@ <price>]".
func postings(txn *ast.Transaction) []string {
	rendered := make([]string, len(txn.Postings))
	for i, p := range txn.Postings {
		s := string(p.Account)
		if p.Amount != nil {
			s += " " + p.Amount.String()
		}
		if p.Price != nil {
			s += " @ " + p.Price.String()
		}
		rendered[i] = s
	}
	return rendered
}

func warningKinds(warnings []Warning) []WarningKind {
	kinds := make([]WarningKind, len(warnings))
	for i, w := range warnings {
		kinds[i] = w.Kind
	}
	return kinds
}
