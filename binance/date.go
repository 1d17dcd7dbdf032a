package binance

import (
	"fmt"
	"strings"
	"time"

	"github.com/robinvdvleuten/beancount-binance/ast"
)

// timestampLayouts are the timestamp formats seen in Binance exports, tried
// in order.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"06-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

// ParseDate returns the calendar date of a Binance timestamp. Timestamps
// without a zone are taken as UTC.
func ParseDate(s string) (*ast.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ast.NewDateFromTime(t.UTC()), nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", s)
}
