package formatter

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/robinvdvleuten/beancount-binance/telemetry"
)

var assets = ast.MustAccount("Assets:Binance")

func date(t *testing.T, s string) *ast.Date {
	t.Helper()
	d, err := ast.NewDate(s)
	assert.NoError(t, err)
	return d
}

func buy(t *testing.T) *ast.Transaction {
	return ast.NewTransaction(date(t, "2018-04-15"), "VIAETH market buy",
		ast.WithFlag("*"),
		ast.WithTransactionMetadata(ast.NewMetadata("order-id", "3589044")),
		ast.WithPostings(
			ast.NewPosting(assets, ast.WithAmount("51.96", "VIA"), ast.WithPrice(ast.NewAmount("0.003843", "ETH"))),
			ast.NewPosting(assets, ast.WithAmount("-0.19968228", "ETH")),
		),
	)
}

func fee(t *testing.T) *ast.Transaction {
	return ast.NewClearedTransaction(date(t, "2018-04-15"), "VIAETH market buy fee",
		ast.NewPosting(assets, ast.WithAmount("-0.05196", "VIA"), ast.WithPrice(ast.NewAmount("0.003843", "ETH"))),
		ast.NewPosting(ast.MustAccount("Expenses:Binance:Fees")),
	)
}

func TestEscapeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"NoEscaping", "Spot Deposit ETH", "Spot Deposit ETH"},
		{"DoubleQuote", `say "hi"`, `say \"hi\"`},
		{"Backslash", `a\b`, `a\\b`},
		{"Newline", "a\nb", `a\nb`},
		{"Tab", "a\tb", `a\tb`},
		{"Empty", "", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, escapeString(test.input))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("DefaultOptions", func(t *testing.T) {
		f := New()
		assert.Equal(t, 0, f.CurrencyColumn)
		assert.Equal(t, DefaultIndentation, f.Indentation)
		assert.False(t, f.SortByDate)
	})

	t.Run("Options", func(t *testing.T) {
		f := New(WithCurrencyColumn(60), WithIndentation(4), WithSortByDate())
		assert.Equal(t, 60, f.CurrencyColumn)
		assert.Equal(t, 4, f.Indentation)
		assert.True(t, f.SortByDate)
	})
}

func TestFormatTransaction(t *testing.T) {
	t.Run("AlignsCurrencies", func(t *testing.T) {
		expected := `2018-04-15 * "VIAETH market buy"
  order-id: "3589044"
  Assets:Binance        51.96 VIA @ 0.003843 ETH
  Assets:Binance  -0.19968228 ETH
`
		assert.Equal(t, expected, New().FormatTransaction(buy(t)))
	})

	t.Run("ElidedAmount", func(t *testing.T) {
		expected := `2018-04-15 * "VIAETH market buy fee"
  Assets:Binance  -0.05196 VIA @ 0.003843 ETH
  Expenses:Binance:Fees
`
		assert.Equal(t, expected, New().FormatTransaction(fee(t)))
	})

	t.Run("FixedColumn", func(t *testing.T) {
		txn := ast.NewClearedTransaction(date(t, "2018-04-13"), "Spot Deposit ETH",
			ast.NewPosting(assets, ast.WithAmount("1.5", "ETH")),
			ast.NewPosting(ast.MustAccount("Equity:Unknown")),
		)
		out := New(WithCurrencyColumn(30)).FormatTransaction(txn)
		line := strings.Split(out, "\n")[1]
		assert.Equal(t, 29, strings.Index(line, "ETH"))
	})

	t.Run("ColumnTooNarrow", func(t *testing.T) {
		txn := ast.NewClearedTransaction(date(t, "2018-04-13"), "Spot Deposit ETH",
			ast.NewPosting(assets, ast.WithAmount("1.5", "ETH")),
		)
		out := New(WithCurrencyColumn(5)).FormatTransaction(txn)
		assert.Contains(t, out, "  Assets:Binance  1.5 ETH\n")
	})

	t.Run("PayeeTagsLinks", func(t *testing.T) {
		txn := ast.NewTransaction(date(t, "2021-01-10"), `Manual "simple" exchange`,
			ast.WithFlag("!"),
			ast.WithPayee("Binance"),
			ast.WithTags("#crypto"),
			ast.WithLinks("^trade-1"),
		)
		assert.Equal(t, "2021-01-10 ! \"Binance\" \"Manual \\\"simple\\\" exchange\" #crypto ^trade-1\n",
			New().FormatTransaction(txn))
	})

	t.Run("PayeeWithoutNarration", func(t *testing.T) {
		txn := ast.NewTransaction(date(t, "2021-01-10"), "", ast.WithFlag("*"), ast.WithPayee("Binance"))
		assert.Equal(t, "2021-01-10 * \"Binance\" \"\"\n", New().FormatTransaction(txn))
	})

	t.Run("CostTotalPriceFlagAndMetadata", func(t *testing.T) {
		txn := ast.NewClearedTransaction(date(t, "2018-04-16"), "VIAETH market sell",
			ast.NewPosting(assets,
				ast.WithPostingFlag("!"),
				ast.WithAmount("-20", "VIA"),
				ast.WithCost(ast.NewCostWithDate(ast.NewAmount("0.003843", "ETH"), date(t, "2018-04-15"))),
				ast.WithTotalPrice(ast.NewAmount("0.08", "ETH")),
				ast.WithPostingMetadata(ast.NewMetadata("lot", "first")),
			),
		)
		expected := `2018-04-16 * "VIAETH market sell"
  ! Assets:Binance  -20 VIA {0.003843 ETH, 2018-04-15} @@ 0.08 ETH
    lot: "first"
`
		assert.Equal(t, expected, New().FormatTransaction(txn))
	})

	t.Run("CostLabel", func(t *testing.T) {
		cost := &ast.Cost{Amount: ast.NewAmount("2", "BAR"), Label: "first-lot"}
		txn := ast.NewClearedTransaction(date(t, "2018-04-16"), "sell",
			ast.NewPosting(assets, ast.WithAmount("-1", "FOO"), ast.WithCost(cost)),
		)
		assert.Contains(t, New().FormatTransaction(txn), `-1 FOO {2 BAR, "first-lot"}`)
	})

	t.Run("WideAccountName", func(t *testing.T) {
		txn := ast.NewClearedTransaction(date(t, "2018-04-13"), "deposit",
			ast.NewPosting(ast.MustAccount("Assets:Binance"), ast.WithAmount("1", "ETH")),
			ast.NewPosting(ast.Account("Assets:Bïnance"), ast.WithAmount("-1", "ETH")),
		)
		lines := strings.Split(New().FormatTransaction(txn), "\n")
		assert.Equal(t, "  Assets:Binance   1 ETH", lines[1])
		assert.Equal(t, "  Assets:Bïnance  -1 ETH", lines[2])
	})
}

func TestFormat(t *testing.T) {
	t.Run("Sections", func(t *testing.T) {
		var buf bytes.Buffer
		err := New().Format(context.Background(), &buf,
			Section{Title: "bina-2018-processed.csv", Transactions: []*ast.Transaction{buy(t), fee(t)}},
		)
		assert.NoError(t, err)

		expected := `; bina-2018-processed.csv

2018-04-15 * "VIAETH market buy"
  order-id: "3589044"
  Assets:Binance        51.96 VIA @ 0.003843 ETH
  Assets:Binance  -0.19968228 ETH

2018-04-15 * "VIAETH market buy fee"
  Assets:Binance     -0.05196 VIA @ 0.003843 ETH
  Expenses:Binance:Fees
`
		assert.Equal(t, expected, buf.String())
	})

	t.Run("SharedColumnAcrossSections", func(t *testing.T) {
		deposit := ast.NewClearedTransaction(date(t, "2018-04-13"), "Spot Deposit ETH",
			ast.NewPosting(assets, ast.WithAmount("1.5", "ETH")),
			ast.NewPosting(ast.MustAccount("Equity:Unknown")),
		)

		var buf bytes.Buffer
		err := New().Format(context.Background(), &buf,
			Section{Title: "0binastmt-2018.csv", Transactions: []*ast.Transaction{deposit}},
			Section{Title: "bina-2018-processed.csv", Transactions: []*ast.Transaction{buy(t)}},
		)
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "  Assets:Binance          1.5 ETH\n")
		assert.Contains(t, buf.String(), "\n\n; bina-2018-processed.csv\n\n")
	})

	t.Run("EmptySection", func(t *testing.T) {
		var buf bytes.Buffer
		err := New().Format(context.Background(), &buf,
			Section{Title: "0binastmt-empty.csv"},
			Section{},
		)
		assert.NoError(t, err)
		assert.Equal(t, "; 0binastmt-empty.csv\n", buf.String())
	})

	t.Run("SortByDate", func(t *testing.T) {
		later := ast.NewClearedTransaction(date(t, "2018-04-16"), "later")
		earlier := ast.NewClearedTransaction(date(t, "2018-04-14"), "earlier")
		sameDay := ast.NewClearedTransaction(date(t, "2018-04-16"), "same day")

		var buf bytes.Buffer
		err := New(WithSortByDate()).Format(context.Background(), &buf,
			Section{Transactions: []*ast.Transaction{later, earlier, sameDay}},
		)
		assert.NoError(t, err)
		assert.Equal(t, "2018-04-14 * \"earlier\"\n\n2018-04-16 * \"later\"\n\n2018-04-16 * \"same day\"\n", buf.String())
	})

	t.Run("Telemetry", func(t *testing.T) {
		collector := telemetry.NewTimingCollector()
		ctx := telemetry.WithCollector(context.Background(), collector)

		var buf bytes.Buffer
		assert.NoError(t, New().Format(ctx, &buf, Section{Transactions: []*ast.Transaction{buy(t)}}))

		var report bytes.Buffer
		collector.Report(&report, nil)
		assert.True(t, strings.HasPrefix(report.String(), "format: "))
	})
}
