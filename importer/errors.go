package importer

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/beancount-binance/ast"
)

// ErrUnsupportedFile is returned for files that are not a Binance export.
var ErrUnsupportedFile = errors.New("not a Binance trades or statement export")

// UnknownSideError is returned when a trade description ends in neither
// "buy" nor "sell".
type UnknownSideError struct {
	Date        *ast.Date
	OrderID     string
	Description string
}

func (e *UnknownSideError) Error() string {
	return fmt.Sprintf("%s: cannot tell buy from sell in trade description %q (order %s)", e.Date, e.Description, e.OrderID)
}

// OutOfOrderError is returned in strict ordering mode when a row is dated
// before the row preceding it.
type OutOfOrderError struct {
	Date     *ast.Date
	Previous *ast.Date
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("%s: row is dated before the preceding row (%s)", e.Date, e.Previous)
}

func (e *UnknownSideError) GetDate() *ast.Date { return e.Date }
func (e *OutOfOrderError) GetDate() *ast.Date  { return e.Date }

// LineError locates an error at a line of an export file.
type LineError struct {
	Pos ast.Position
	Err error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s: line %d: %v", e.Pos.Filename, e.Pos.Line, e.Err)
}

func (e *LineError) Unwrap() error             { return e.Err }
func (e *LineError) GetPosition() ast.Position { return e.Pos }
