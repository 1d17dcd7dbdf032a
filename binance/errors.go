package binance

import "fmt"

// RecordError is returned when a field of a record cannot be parsed.
type RecordError struct {
	Field string
	Value string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
