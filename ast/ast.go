// Package ast declares the types used to represent Beancount entries produced
// by the importer.
//
// The types mirror the structure of Beancount transactions and postings so that
// importers can construct entries programmatically and hand them to the
// formatter package for rendering.
package ast

import (
	"golang.org/x/exp/slices"
)

// Directives is a slice of Directive that can be sorted by date.
type Directives []Directive

func (d Directives) Len() int           { return len(d) }
func (d Directives) Swap(i, j int)      { d[i], d[j] = d[j], d[i] }
func (d Directives) Less(i, j int) bool { return compareDirectives(d[i], d[j]) < 0 }

// compareDirectives compares two directives by their date.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareDirectives(a, b Directive) int {
	ad, bd := a.date(), b.date()
	switch {
	case ad.IsZero() && bd.IsZero():
		return 0
	case ad.IsZero():
		return -1
	case bd.IsZero():
		return 1
	case ad.Before(bd.Time):
		return -1
	case ad.After(bd.Time):
		return 1
	}
	return 0
}

// WithMetadata is an interface for nodes that can have metadata attached.
type WithMetadata interface {
	AddMetadata(...*Metadata)
}

// withMetadata is an embeddable struct that implements WithMetadata.
type withMetadata struct {
	Metadata []*Metadata
}

func (w *withMetadata) AddMetadata(m ...*Metadata) {
	w.Metadata = append(w.Metadata, m...)
}

// Directive is the interface implemented by all dated Beancount entries.
type Directive interface {
	WithMetadata

	date() *Date
	Directive() string
}

// isSorted checks if directives are already sorted by date.
func isSorted(d Directives) bool {
	for i := 1; i < len(d); i++ {
		if d.Less(i, i-1) {
			return false
		}
	}
	return true
}

// SortDirectives sorts directives by date. Directives sharing a date keep
// their relative order, which preserves the order in which an importer
// emitted them.
func SortDirectives(d Directives) {
	if isSorted(d) {
		return
	}
	slices.SortStableFunc(d, compareDirectives)
}
