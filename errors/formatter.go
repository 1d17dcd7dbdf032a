// Package errors renders extraction errors for different consumers.
//
// The package defines a Formatter interface and provides two implementations:
//   - TextFormatter: Formats errors for the terminal, quoting the offending
//     export rows when the source is available
//   - JSONFormatter: Formats errors as structured JSON for scripts
//
// Error types stay in their own packages (importer, binance, lots); this
// package only handles presentation.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/beancount-binance/ast"
	"github.com/robinvdvleuten/beancount-binance/binance"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// positional is implemented by errors that point at a line of an export.
type positional interface {
	GetPosition() ast.Position
}

// dated is implemented by errors about a row or lot of a given date.
type dated interface {
	GetDate() *ast.Date
}

// TextFormatter formats errors for command-line output.
type TextFormatter struct {
	sourceContent []byte // Optional source content for row context
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the content of the export the error points into.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.sourceContent = source
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Errors carrying a position are followed by
// the rows around it when the source was given.
func (tf *TextFormatter) Format(err error) string {
	var p positional
	if stderrors.As(err, &p) && tf.sourceContent != nil {
		return tf.formatWithSourceContext(p.GetPosition(), err.Error(), tf.sourceContent)
	}
	return err.Error()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(tf.Format(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// formatWithSourceContext writes the message followed by the header row, the
// two rows before the failing one, the failing row marked with '>', and the
// row after it.
func (tf *TextFormatter) formatWithSourceContext(pos ast.Position, message string, sourceContent []byte) string {
	var buf bytes.Buffer

	buf.WriteString(message)
	buf.WriteString("\n\n")

	sourceLines := strings.Split(strings.TrimRight(string(sourceContent), "\n"), "\n")
	for i := range sourceLines {
		sourceLines[i] = strings.TrimSuffix(sourceLines[i], "\r")
	}

	if pos.Line < 1 || pos.Line > len(sourceLines) {
		return message
	}

	// Lines are 1-based, indexes 0-based.
	start := max(pos.Line-3, 0)
	end := min(pos.Line, len(sourceLines)-1)

	writeLine := func(i int) {
		marker := "   "
		if i == pos.Line-1 {
			marker = " > "
		}
		fmt.Fprintf(&buf, "%s%4d | %s\n", marker, i+1, sourceLines[i])
	}

	if start > 0 {
		writeLine(0)
		if start > 1 {
			buf.WriteString("        ...\n")
		}
	}
	for i := start; i <= end; i++ {
		writeLine(i)
	}

	return buf.String()
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Position *PositionJSON     `json:"position,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

// toJSON converts an error to ErrorJSON. The type is that of the error
// beneath any position and fmt wrapping, the one a script would switch on.
func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    fmt.Sprintf("%T", cause(err)),
		Message: err.Error(),
		Details: make(map[string]string),
	}

	var p positional
	if stderrors.As(err, &p) {
		pos := p.GetPosition()
		errJSON.Position = &PositionJSON{
			Filename: pos.Filename,
			Line:     pos.Line,
		}
	}

	var d dated
	if stderrors.As(err, &d) {
		if date := d.GetDate(); !date.IsZero() {
			errJSON.Details["date"] = date.String()
		}
	}

	var recordErr *binance.RecordError
	if stderrors.As(err, &recordErr) {
		errJSON.Details["field"] = recordErr.Field
		errJSON.Details["value"] = recordErr.Value
	}

	if len(errJSON.Details) == 0 {
		errJSON.Details = nil
	}

	return errJSON
}

// cause strips position and fmt wrappers off err.
func cause(err error) error {
	for {
		_, isPositional := err.(positional)
		if !isPositional && !strings.HasPrefix(fmt.Sprintf("%T", err), "*fmt.") {
			return err
		}
		next := stderrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
