package ast

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Amount represents a numerical value with its associated currency or commodity symbol.
// The value is stored as a string to preserve the exact decimal representation,
// avoiding floating-point precision issues.
type Amount struct {
	Value    string
	Currency string
}

// String returns the amount as "<value> <currency>".
func (a *Amount) String() string {
	if a == nil {
		return ""
	}
	return a.Value + " " + a.Currency
}

// Cost represents the cost basis specification for a posting, used for tracking
// the acquisition cost of commodities. The importer records cost basis on its
// own lots and only emits price annotations, but the type is kept so callers
// targeting ledgers that accept mixed cost and price currencies can attach one.
//
// Example cost specifications:
//
//	10 ETH {0.071 BTC}              ; Per-unit cost
//	10 ETH {0.071 BTC, 2018-04-15}  ; Cost with acquisition date
//	-5 ETH {0.071 BTC, "first-lot"} ; Cost with label for lot selection
type Cost struct {
	Amount *Amount
	Date   *Date
	Label  string
}

// Account represents a Beancount account name consisting of at least two colon-separated
// segments. The first segment (account type) must be one of the five account categories:
// Assets, Liabilities, Equity, Income, or Expenses. Subsequent segments must start with
// an uppercase letter or digit and can contain letters, numbers, and hyphens.
//
// Example accounts:
//
//	Assets:Binance
//	Expenses:Binance:Fees
//	Income:Binance:Distribution
//	Equity:Unknown
type Account string

func (a *Account) Capture(values []string) error {
	parts := strings.Split(values[0], ":")

	if len(parts) < 2 {
		return fmt.Errorf("account must have at least two segments: %s", values[0])
	}

	switch t := parts[0]; t {
	case "Assets", "Liabilities", "Equity", "Income", "Expenses":
	default:
		return fmt.Errorf(`unexpected account type "%s"`, t)
	}

	for i := 1; i < len(parts); i++ {
		if !isValidAccountSegment(parts[i]) {
			return fmt.Errorf("invalid account segment at position %d: %s", i, parts[i])
		}
	}

	*a = Account(values[0])
	return nil
}

// accountSegmentRegex validates account segments (after first).
// Must start with uppercase letter or digit, can contain alphanumerics and hyphens.
var accountSegmentRegex = regexp.MustCompile(`^[A-Z0-9][A-Za-z0-9-]*$`)

func isValidAccountSegment(segment string) bool {
	return len(segment) > 0 && accountSegmentRegex.MatchString(segment)
}

// Date represents a calendar date in ISO 8601 format (YYYY-MM-DD). Every
// transaction carries one, and lots are ordered by it.
type Date struct {
	time.Time
}

func (d *Date) Capture(values []string) error {
	t, err := time.Parse("2006-01-02", values[0])
	if err != nil {
		return fmt.Errorf("invalid date: %s", values[0])
	}
	d.Time = t
	return nil
}

// IsZero returns true if the Date is nil or represents the zero time.
func (d *Date) IsZero() bool {
	if d == nil {
		return true
	}
	return d.Time.IsZero()
}

// String returns the date formatted as YYYY-MM-DD, or an empty string for a
// nil or zero date.
func (d *Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// Link represents a reference link starting with ^, used to connect related transactions.
type Link string

// Tag represents a hashtag starting with #, used to categorize transactions.
type Tag string

// Metadata represents a key-value pair attached to a transaction or posting.
// Values are rendered as quoted strings.
//
// Example:
//
//	2018-04-15 * "VIAETH market buy"
//	  order-id: "3589044"
type Metadata struct {
	Key   string
	Value string
}
