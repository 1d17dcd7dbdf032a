// Package telemetry times the stages of an import run.
//
// A Collector travels in the context, so instrumented code never needs an
// extra parameter; without one, FromContext hands out a collector that does
// nothing.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("extract bina-2021-processed.csv")
//	read := timer.Child("read")
//	// ...
//	read.End()
//	timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/beancount-binance/output"
)

type contextKey struct{}

// Collector records timers.
type Collector interface {
	// Start begins a top-level timer, or a child of the innermost running
	// timer started by this collector.
	Start(name string) Timer

	// Report writes what was collected to w. styles may be nil.
	Report(w io.Writer, styles *output.Styles)
}

// Timer times one operation.
type Timer interface {
	// End stops the timer.
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer
}

// WithCollector returns a context carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, contextKey{}, collector)
}

// FromContext returns the collector carried by ctx, or a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(contextKey{}).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
