package ast

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NewAmount creates a new Amount with the given value and currency.
// The value should be a decimal string (e.g., "100.50", "-42.00").
// No validation is performed on the value or currency.
//
// Example:
//
//	amount := ast.NewAmount("0.05", "ETH")
func NewAmount(value, currency string) *Amount {
	return &Amount{
		Value:    value,
		Currency: currency,
	}
}

// NewDecimalAmount creates a new Amount from a decimal value. The value is
// rendered in its shortest exact form, so trailing zeros are dropped.
//
// Example:
//
//	amount := ast.NewDecimalAmount(decimal.RequireFromString("51.9600000000"), "VIA") // 51.96 VIA
func NewDecimalAmount(value decimal.Decimal, currency string) *Amount {
	return NewAmount(value.String(), currency)
}

// NewDate parses a date string in YYYY-MM-DD format and returns a Date.
// Returns an error if the string cannot be parsed as a valid date.
//
// Example:
//
//	date, err := ast.NewDate("2018-04-15")
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewDate(s string) (*Date, error) {
	d := &Date{}
	if err := d.Capture([]string{s}); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDateFromTime creates a Date from a time.Time value.
// The time is truncated to just the date portion (year, month, day) in the
// time's own location and stored as midnight UTC.
//
// Example:
//
//	date := ast.NewDateFromTime(time.Now())
func NewDateFromTime(t time.Time) *Date {
	y, m, d := t.Date()
	return &Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewAccount creates an Account from the given name string and validates it.
// The account name must follow Beancount account naming rules:
//   - At least two colon-separated segments
//   - First segment must be Assets, Liabilities, Equity, Income, or Expenses
//   - Subsequent segments must start with uppercase letter or digit
//
// Returns an error if the account name is invalid.
//
// Example:
//
//	account, err := ast.NewAccount("Assets:Binance")
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewAccount(name string) (Account, error) {
	var account Account
	if err := account.Capture([]string{name}); err != nil {
		return "", err
	}
	return account, nil
}

// MustAccount is like NewAccount but panics on an invalid name.
// Use only in tests or for compile-time constant account names.
func MustAccount(name string) Account {
	account, err := NewAccount(name)
	if err != nil {
		panic(err)
	}
	return account
}

// NewLink creates a Link from the given name.
// If the name starts with ^, it is stripped.
func NewLink(name string) Link {
	return Link(strings.TrimPrefix(name, "^"))
}

// NewTag creates a Tag from the given name.
// If the name starts with #, it is stripped.
func NewTag(name string) Tag {
	return Tag(strings.TrimPrefix(name, "#"))
}

// NewMetadata creates a Metadata key-value pair.
//
// Example:
//
//	meta := ast.NewMetadata("order-id", "3589044")
func NewMetadata(key, value string) *Metadata {
	return &Metadata{
		Key:   key,
		Value: value,
	}
}

// TransactionOption is a functional option for configuring a Transaction.
type TransactionOption func(*Transaction)

// NewTransaction creates a new Transaction with the given date and narration.
// Additional fields can be set using functional options.
//
// Example:
//
//	txn := ast.NewTransaction(date, "VIAETH market buy",
//	    ast.WithFlag("*"),
//	    ast.WithPostings(
//	        ast.NewPosting(assets, ast.WithAmount("51.96", "VIA")),
//	        ast.NewPosting(assets, ast.WithAmount("-0.19968228", "ETH")),
//	    ),
//	)
func NewTransaction(date *Date, narration string, opts ...TransactionOption) *Transaction {
	txn := &Transaction{
		Date:      date,
		Narration: narration,
	}

	for _, opt := range opts {
		opt(txn)
	}

	return txn
}

// WithFlag sets the transaction flag.
// Common values: "*" (cleared), "!" (pending).
func WithFlag(flag string) TransactionOption {
	return func(t *Transaction) {
		t.Flag = flag
	}
}

// WithPayee sets the transaction payee.
func WithPayee(payee string) TransactionOption {
	return func(t *Transaction) {
		t.Payee = payee
	}
}

// WithTags adds tags to the transaction.
// Tag names should not include the # prefix (it will be added during formatting).
func WithTags(tags ...string) TransactionOption {
	return func(t *Transaction) {
		for _, tag := range tags {
			t.Tags = append(t.Tags, NewTag(tag))
		}
	}
}

// WithLinks adds links to the transaction.
// Link names should not include the ^ prefix (it will be added during formatting).
func WithLinks(links ...string) TransactionOption {
	return func(t *Transaction) {
		for _, link := range links {
			t.Links = append(t.Links, NewLink(link))
		}
	}
}

// WithTransactionMetadata adds metadata entries to the transaction.
func WithTransactionMetadata(metadata ...*Metadata) TransactionOption {
	return func(t *Transaction) {
		t.AddMetadata(metadata...)
	}
}

// WithPostings sets the postings for the transaction.
func WithPostings(postings ...*Posting) TransactionOption {
	return func(t *Transaction) {
		t.Postings = postings
	}
}

// PostingOption is a functional option for configuring a Posting.
type PostingOption func(*Posting)

// NewPosting creates a new Posting for the given account.
// Additional fields can be set using functional options. A posting without
// an amount is rendered with the amount elided so the ledger infers it.
//
// Example:
//
//	posting := ast.NewPosting(account,
//	    ast.WithAmount("10", "FOO"),
//	    ast.WithPrice(ast.NewAmount("2", "BAR")),
//	)
func NewPosting(account Account, opts ...PostingOption) *Posting {
	posting := &Posting{
		Account: account,
	}

	for _, opt := range opts {
		opt(posting)
	}

	return posting
}

// WithAmount sets the amount for a posting.
// The value should be a decimal string and currency a valid currency code.
func WithAmount(value, currency string) PostingOption {
	return func(p *Posting) {
		p.Amount = NewAmount(value, currency)
	}
}

// WithDecimalAmount sets the amount for a posting from a decimal value.
func WithDecimalAmount(value decimal.Decimal, currency string) PostingOption {
	return func(p *Posting) {
		p.Amount = NewDecimalAmount(value, currency)
	}
}

// WithCost sets the cost specification for a posting.
func WithCost(cost *Cost) PostingOption {
	return func(p *Posting) {
		p.Cost = cost
	}
}

// WithPrice sets the price for a posting (using @ syntax).
// This records a conversion rate without affecting the cost basis.
// A nil price leaves the posting unannotated.
func WithPrice(price *Amount) PostingOption {
	return func(p *Posting) {
		p.Price = price
		p.PriceTotal = false
	}
}

// WithTotalPrice sets the total price for a posting (using @@ syntax).
func WithTotalPrice(price *Amount) PostingOption {
	return func(p *Posting) {
		p.Price = price
		p.PriceTotal = true
	}
}

// WithPostingFlag sets the flag for a posting.
func WithPostingFlag(flag string) PostingOption {
	return func(p *Posting) {
		p.Flag = flag
	}
}

// WithPostingMetadata adds metadata entries to the posting.
func WithPostingMetadata(metadata ...*Metadata) PostingOption {
	return func(p *Posting) {
		p.AddMetadata(metadata...)
	}
}

// NewCost creates a Cost specification with just an amount (per-unit cost).
func NewCost(amount *Amount) *Cost {
	return &Cost{
		Amount: amount,
	}
}

// NewCostWithDate creates a Cost specification with an amount and acquisition date.
func NewCostWithDate(amount *Amount, date *Date) *Cost {
	return &Cost{
		Amount: amount,
		Date:   date,
	}
}

// NewClearedTransaction creates a Transaction with flag="*" (cleared).
// This is a convenience helper for the most common transaction type.
//
// Example:
//
//	txn := ast.NewClearedTransaction(date, "Deposit ETH",
//	    ast.NewPosting(assets, ast.WithAmount("1.5", "ETH")),
//	    ast.NewPosting(equity),
//	)
func NewClearedTransaction(date *Date, narration string, postings ...*Posting) *Transaction {
	return NewTransaction(date, narration,
		WithFlag("*"),
		WithPostings(postings...),
	)
}
