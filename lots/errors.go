package lots

import (
	"fmt"

	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/shopspring/decimal"
)

// InvalidLotError is returned when a lot with a non-positive amount is pushed.
// It points at corrupt input or a logic error upstream and must abort the run.
type InvalidLotError struct {
	Amount    decimal.Decimal
	BaseAsset string
	FillDate  ast.Date
}

func (e *InvalidLotError) Error() string {
	return fmt.Sprintf("%s: attempted to push non-positive lot of %s %s",
		e.FillDate.String(), e.Amount.String(), e.BaseAsset)
}

func (e *InvalidLotError) GetDate() *ast.Date { return &e.FillDate }
