package binance

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/shopspring/decimal"
)

// Trade export columns.
const (
	ColumnOrderDate   = "date_utc"
	ColumnFillDate    = "fill_date_utc"
	ColumnDescription = "description"
	ColumnOrderID     = "order_id"
	ColumnBaseAsset   = "base_asset"
	ColumnQuoteAsset  = "quote_asset"
	ColumnAmount      = "amount"
	ColumnPrice       = "price"
)

// maxCommissions is the number of commN_amount/commN_asset column pairs a
// trade export may carry.
const maxCommissions = 2

// Commission is one fee charged on a fill.
type Commission struct {
	Amount decimal.Decimal
	Asset  string
	// Column is N of the commN_amount/commN_asset pair it was read from.
	Column int
}

// TradeFill is one row of the trade-fills export.
type TradeFill struct {
	OrderDate *ast.Date
	// FillDate is nil when the export left the fill timestamp empty.
	FillDate    *ast.Date
	Description string
	OrderID     string
	BaseAsset   string
	QuoteAsset  string
	Amount      decimal.Decimal
	Price       decimal.Decimal
	// Commissions holds one entry per commission column pair present in the
	// export, in column order. Absent or empty amounts are zero.
	Commissions []Commission
}

// ParseTradeFill converts a trade export record into a TradeFill.
func ParseTradeFill(record Record) (TradeFill, error) {
	fill := TradeFill{
		Description: strings.TrimSpace(record[ColumnDescription]),
		OrderID:     strings.TrimSpace(record[ColumnOrderID]),
		BaseAsset:   strings.TrimSpace(record[ColumnBaseAsset]),
		QuoteAsset:  strings.TrimSpace(record[ColumnQuoteAsset]),
	}

	var err error
	if fill.OrderDate, err = parseDateField(record, ColumnOrderDate); err != nil {
		return TradeFill{}, err
	}
	if value := strings.TrimSpace(record[ColumnFillDate]); value != "" {
		if fill.FillDate, err = parseDateField(record, ColumnFillDate); err != nil {
			return TradeFill{}, err
		}
	}
	if fill.Amount, err = parseDecimalField(record, ColumnAmount); err != nil {
		return TradeFill{}, err
	}
	if fill.Price, err = parseDecimalField(record, ColumnPrice); err != nil {
		return TradeFill{}, err
	}

	for i := 0; i < maxCommissions; i++ {
		amountColumn := fmt.Sprintf("comm%d_amount", i)
		value, ok := record[amountColumn]
		if !ok {
			continue
		}

		commission := Commission{
			Amount: decimal.Zero,
			Asset:  strings.TrimSpace(record[fmt.Sprintf("comm%d_asset", i)]),
			Column: i,
		}
		if strings.TrimSpace(value) != "" {
			if commission.Amount, err = parseDecimalField(record, amountColumn); err != nil {
				return TradeFill{}, err
			}
		}
		fill.Commissions = append(fill.Commissions, commission)
	}

	return fill, nil
}

func parseDateField(record Record, column string) (*ast.Date, error) {
	value := record[column]
	date, err := ParseDate(value)
	if err != nil {
		return nil, &RecordError{Field: column, Value: value, Err: err}
	}
	return date, nil
}

func parseDecimalField(record Record, column string) (decimal.Decimal, error) {
	value := record[column]
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, &RecordError{Field: column, Value: value, Err: err}
	}
	return d, nil
}
