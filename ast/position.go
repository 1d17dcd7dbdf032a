package ast

import "fmt"

// Position represents a location in a source file.
type Position struct {
	Filename string
	Line     int // Line number (1-indexed)
	Column   int // Column number (1-indexed), 0 when unknown
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	s := fmt.Sprintf("%d", p.Line)
	if p.Column > 0 {
		s += fmt.Sprintf(":%d", p.Column)
	}
	if p.Filename != "" {
		s = p.Filename + ":" + s
	}
	return s
}

// GoString returns a Go-syntax representation of the position.
func (p Position) GoString() string {
	return fmt.Sprintf("Position{Filename: %q, Line: %d, Column: %d}", p.Filename, p.Line, p.Column)
}
