// Package telemetry records how long loading, exporting and rendering take,
// as a tree of named timers.
//
// Collectors travel through a context.Context so instrumented code does not
// need extra parameters. When no collector is attached, StartTimer returns a
// timer that does nothing.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "loader.xlsx budget.xlsx")
//	// ... work ...
//	timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/moneymanager/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector gathers timers and reports them.
type Collector interface {
	// Start begins timing an operation. Call End on the returned Timer.
	Start(name string) Timer

	// Report writes the collected timings to w. styles may be nil for
	// plain output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation.
type Timer interface {
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer
}

// WithCollector attaches a collector to ctx.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector attached to ctx, or a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// StartTimer starts a timer on the collector attached to ctx.
func StartTimer(ctx context.Context, name string) Timer {
	return FromContext(ctx).Start(name)
}

type noOpCollector struct{}

func (noOpCollector) Start(name string) Timer { return noOpTimer{} }
func (noOpCollector) Report(w io.Writer, styles *output.Styles) {}

type noOpTimer struct{}

func (noOpTimer) End() {}
func (noOpTimer) Child(name string) Timer { return noOpTimer{} }
