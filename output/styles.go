// Package output styles text written to the terminal. Colors are dropped
// automatically when the writer is not a terminal.
package output

import (
	"io"
	"strconv"
	"time"

	"github.com/muesli/termenv"
)

// SlowThreshold is the duration from which a timing is highlighted.
const SlowThreshold = 100 * time.Millisecond

// ANSI color indexes.
const (
	red     = "1"
	green   = "2"
	yellow  = "3"
	magenta = "5"
	cyan    = "6"
)

// Styles renders styled strings for one writer.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates Styles matching the color support of w.
func NewStyles(w io.Writer) *Styles {
	return &Styles{output: termenv.NewOutput(w)}
}

func (s *Styles) color(text, color string, bold bool) string {
	styled := s.output.String(text).Foreground(s.output.Color(color))
	if bold {
		styled = styled.Bold()
	}
	return styled.String()
}

// Success renders text green and bold.
func (s *Styles) Success(text string) string { return s.color(text, green, true) }

// Error renders text red and bold.
func (s *Styles) Error(text string) string { return s.color(text, red, true) }

// Warning renders text yellow and bold.
func (s *Styles) Warning(text string) string { return s.color(text, yellow, true) }

// FilePath renders an export or ledger file name.
func (s *Styles) FilePath(text string) string { return s.color(text, cyan, false) }

// Account renders a Beancount account name.
func (s *Styles) Account(text string) string { return s.color(text, yellow, false) }

// Asset renders a commodity symbol or an amount of one.
func (s *Styles) Asset(text string) string { return s.color(text, magenta, false) }

// Keyword renders text bold.
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim renders secondary information faint.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Duration renders d in milliseconds below one second and in seconds above.
// Durations of SlowThreshold or more are highlighted.
func (s *Styles) Duration(d time.Duration) string {
	text := FormatDuration(d)
	if d >= SlowThreshold {
		return s.Warning(text)
	}
	return s.Dim(text)
}

// FormatDuration formats d without styling.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 0, 64) + "ms"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 2, 64) + "s"
}
