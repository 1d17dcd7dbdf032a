package binance

import (
	"strings"

	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/shopspring/decimal"
)

// Statement export columns, after NormalizeColumn.
const (
	ColumnTime      = "utc_time"
	ColumnAccount   = "account"
	ColumnOperation = "operation"
	ColumnCoin      = "coin"
	ColumnChange    = "change"
	ColumnRemark    = "remark"
)

// Statement operations the importer acts on.
const (
	OperationDustExchange = "Small assets exchange BNB"
	OperationSimpleTrade  = "The Easiest Way to Trade"
	OperationDistribution = "Distribution"
	OperationDeposit      = "Deposit"
)

// StatementRow is one row of the account statement export.
type StatementRow struct {
	Date      *ast.Date
	Account   string
	Operation string
	Coin      string
	Change    decimal.Decimal
	Remark    string
}

// ParseStatementRow converts a statement export record into a StatementRow.
func ParseStatementRow(record Record) (StatementRow, error) {
	row := StatementRow{
		Account:   strings.TrimSpace(record[ColumnAccount]),
		Operation: strings.TrimSpace(record[ColumnOperation]),
		Coin:      strings.TrimSpace(record[ColumnCoin]),
		Remark:    strings.TrimSpace(record[ColumnRemark]),
	}

	var err error
	if row.Date, err = parseDateField(record, ColumnTime); err != nil {
		return StatementRow{}, err
	}
	if row.Change, err = parseDecimalField(record, ColumnChange); err != nil {
		return StatementRow{}, err
	}

	return row, nil
}
