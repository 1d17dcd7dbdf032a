// Package formatter renders transactions as Beancount text with amounts
// aligned on a common currency column.
package formatter

import (
	"context"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/robinvdvleuten/beancount-binance/telemetry"
)

const (
	// DefaultCurrencyColumn is the currency column used when there is no
	// amount to align on.
	DefaultCurrencyColumn = 52

	// DefaultIndentation is the indentation of postings and metadata.
	DefaultIndentation = 2

	// MinimumSpacing is the minimum number of spaces between an account and
	// its amount.
	MinimumSpacing = 2
)

// Section is a run of transactions rendered under a comment title, e.g. the
// transactions extracted from one file.
type Section struct {
	Title        string
	Transactions []*ast.Transaction
}

// Formatter renders transactions.
type Formatter struct {
	// CurrencyColumn is the 1-based display column currencies are aligned
	// on. Zero picks the narrowest column that fits every posting.
	CurrencyColumn int

	// Indentation is the number of spaces postings and metadata are
	// indented with.
	Indentation int

	// SortByDate sorts the transactions of each section by date, keeping
	// the order of transactions sharing a date.
	SortByDate bool
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithCurrencyColumn aligns currencies on a fixed column.
func WithCurrencyColumn(col int) Option {
	return func(f *Formatter) {
		f.CurrencyColumn = col
	}
}

// WithIndentation sets the indentation of postings and metadata.
func WithIndentation(spaces int) Option {
	return func(f *Formatter) {
		f.Indentation = spaces
	}
}

// WithSortByDate sorts each section's transactions by date.
func WithSortByDate() Option {
	return func(f *Formatter) {
		f.SortByDate = true
	}
}

// New creates a new Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{Indentation: DefaultIndentation}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format writes every section to w. Sections and the transactions in them
// are separated by blank lines; all sections share one currency column.
func (f *Formatter) Format(ctx context.Context, w io.Writer, sections ...Section) error {
	timer := telemetry.FromContext(ctx).Start("format")
	defer timer.End()

	if f.SortByDate {
		for _, section := range sections {
			sortTransactions(section.Transactions)
		}
	}

	column := f.CurrencyColumn
	if column == 0 {
		column = f.currencyColumn(sections)
	}

	var buf strings.Builder
	first := true
	for _, section := range sections {
		if section.Title == "" && len(section.Transactions) == 0 {
			continue
		}
		if !first {
			buf.WriteByte('\n')
		}
		first = false

		if section.Title != "" {
			for _, line := range strings.Split(section.Title, "\n") {
				buf.WriteString("; ")
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
			if len(section.Transactions) > 0 {
				buf.WriteByte('\n')
			}
		}

		for i, txn := range section.Transactions {
			if i > 0 {
				buf.WriteByte('\n')
			}
			f.formatTransaction(txn, column, &buf)
		}
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

// FormatTransaction renders a single transaction on its own currency column.
func (f *Formatter) FormatTransaction(txn *ast.Transaction) string {
	column := f.CurrencyColumn
	if column == 0 {
		column = f.currencyColumn([]Section{{Transactions: []*ast.Transaction{txn}}})
	}

	var buf strings.Builder
	f.formatTransaction(txn, column, &buf)
	return buf.String()
}

func sortTransactions(txns []*ast.Transaction) {
	directives := make(ast.Directives, len(txns))
	for i, txn := range txns {
		directives[i] = txn
	}
	ast.SortDirectives(directives)
	for i, d := range directives {
		txns[i] = d.(*ast.Transaction)
	}
}

// postingPrefixWidth is the display width of a posting line up to and
// including its account.
func (f *Formatter) postingPrefixWidth(p *ast.Posting) int {
	width := f.Indentation + runewidth.StringWidth(string(p.Account))
	if p.Flag != "" {
		width += runewidth.StringWidth(p.Flag) + 1
	}
	return width
}

// currencyColumn returns the narrowest column that leaves MinimumSpacing
// between the longest account and its amount.
func (f *Formatter) currencyColumn(sections []Section) int {
	widest := 0
	for _, section := range sections {
		for _, txn := range section.Transactions {
			for _, p := range txn.Postings {
				if p.Amount == nil {
					continue
				}
				width := f.postingPrefixWidth(p) + MinimumSpacing + runewidth.StringWidth(p.Amount.Value)
				widest = max(widest, width)
			}
		}
	}

	if widest == 0 {
		return DefaultCurrencyColumn
	}
	// The currency follows the amount after one space.
	return widest + 2
}

// formatTransaction writes a transaction:
//
//	2018-04-15 * "VIAETH market buy"
//	  order-id: "3589044"
//	  Assets:Binance  51.96 VIA @ 0.003843 ETH
//	  Assets:Binance  -0.19968228 ETH
func (f *Formatter) formatTransaction(t *ast.Transaction, column int, buf *strings.Builder) {
	buf.WriteString(t.Date.String())
	buf.WriteByte(' ')
	buf.WriteString(t.Flag)

	if t.Payee != "" {
		buf.WriteString(" \"")
		buf.WriteString(escapeString(t.Payee))
		buf.WriteByte('"')
	}

	// A payee without narration still needs the narration string.
	if t.Narration != "" || t.Payee != "" {
		buf.WriteString(" \"")
		buf.WriteString(escapeString(t.Narration))
		buf.WriteByte('"')
	}

	for _, tag := range t.Tags {
		buf.WriteString(" #")
		buf.WriteString(string(tag))
	}

	for _, link := range t.Links {
		buf.WriteString(" ^")
		buf.WriteString(string(link))
	}

	buf.WriteByte('\n')

	f.formatMetadata(t.Metadata, f.Indentation, buf)

	for _, posting := range t.Postings {
		f.formatPosting(posting, column, buf)
	}
}

// formatPosting writes one posting. A posting without an amount is left for
// the ledger to balance.
func (f *Formatter) formatPosting(p *ast.Posting, column int, buf *strings.Builder) {
	buf.WriteString(strings.Repeat(" ", f.Indentation))

	if p.Flag != "" {
		buf.WriteString(p.Flag)
		buf.WriteByte(' ')
	}

	buf.WriteString(string(p.Account))

	if p.Amount != nil {
		padding := column - 2 - f.postingPrefixWidth(p) - runewidth.StringWidth(p.Amount.Value)
		buf.WriteString(strings.Repeat(" ", max(padding, MinimumSpacing)))
		buf.WriteString(p.Amount.String())

		if p.Cost != nil {
			buf.WriteByte(' ')
			formatCost(p.Cost, buf)
		}

		if p.Price != nil {
			if p.PriceTotal {
				buf.WriteString(" @@ ")
			} else {
				buf.WriteString(" @ ")
			}
			buf.WriteString(p.Price.String())
		}
	}

	buf.WriteByte('\n')

	f.formatMetadata(p.Metadata, 2*f.Indentation, buf)
}

func formatCost(cost *ast.Cost, buf *strings.Builder) {
	buf.WriteByte('{')

	var parts []string
	if cost.Amount != nil {
		parts = append(parts, cost.Amount.String())
	}
	if !cost.Date.IsZero() {
		parts = append(parts, cost.Date.String())
	}
	if cost.Label != "" {
		parts = append(parts, `"`+escapeString(cost.Label)+`"`)
	}
	buf.WriteString(strings.Join(parts, ", "))

	buf.WriteByte('}')
}

func (f *Formatter) formatMetadata(metadata []*ast.Metadata, indent int, buf *strings.Builder) {
	for _, m := range metadata {
		buf.WriteString(strings.Repeat(" ", indent))
		buf.WriteString(m.Key)
		buf.WriteString(": \"")
		buf.WriteString(escapeString(m.Value))
		buf.WriteString("\"\n")
	}
}
