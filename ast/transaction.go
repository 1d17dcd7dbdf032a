package ast

// Transaction records a financial transaction with a date, flag, optional payee,
// narration, and a list of postings. The flag indicates transaction status: '*' for
// cleared/complete transactions, '!' for pending/uncleared transactions. Postings
// are expected to balance to zero, but nothing in this package enforces it; that
// is left to the ledger tool reading the output.
//
// Example:
//
//	2018-04-15 * "VIAETH market buy"
//	  Assets:Binance          51.96 VIA @ 0.003843 ETH
//	  Assets:Binance     -0.19968228 ETH
type Transaction struct {
	Date      *Date
	Flag      string
	Payee     string
	Narration string
	Links     []Link
	Tags      []Tag

	withMetadata

	Postings []*Posting
}

var _ Directive = &Transaction{}

func (t *Transaction) date() *Date       { return t.Date }
func (t *Transaction) Directive() string { return "transaction" }

// Currencies returns the distinct currencies referenced by the postings'
// amounts, in order of first appearance.
func (t *Transaction) Currencies() []string {
	seen := make(map[string]bool, len(t.Postings))
	currencies := make([]string, 0, len(t.Postings))
	for _, posting := range t.Postings {
		if posting.Amount == nil || seen[posting.Amount.Currency] {
			continue
		}
		seen[posting.Amount.Currency] = true
		currencies = append(currencies, posting.Amount.Currency)
	}
	return currencies
}

// Posting represents a single leg of a transaction, specifying an account and optional
// amount, cost, and price. One posting may omit its amount, which the ledger infers.
// Price specifications record the conversion rate without affecting the cost basis.
//
// Example postings within transactions:
//
//	Assets:Binance         10 FOO @ 2 BAR    ; Purchase annotated with trade price
//	Assets:Binance        -20 BAR            ; Simple posting
//	Expenses:Binance:Fees                    ; Inferred amount
type Posting struct {
	Flag       string
	Account    Account
	Amount     *Amount
	Cost       *Cost
	PriceTotal bool // Captures presence of second @ for total price
	Price      *Amount

	withMetadata
}
