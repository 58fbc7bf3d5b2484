// Package batch renders a sequence of random charts onto a surface.
//
// The loop is strictly sequential: chart i+1 is never started before chart i
// has been rendered (or has failed) and the pacing delay has elapsed. The
// delay gives the front-end a chance to repaint the progress line between
// charts.
//
// A chart that fails to render is logged and skipped; the loop never retries
// and never aborts because of a single chart. Only context cancellation stops
// it early.
package batch

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/observability"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// DefaultDelay is the pause after each chart.
const DefaultDelay = 10 * time.Millisecond

// Options configures one batch.
type Options struct {
	Count int
	Delay time.Duration
	Kinds []chart.Kind
}

// Progress is called after each index, successful or not, with the 1-based
// index and the total.
type Progress func(index, total int)

// ChartRenderer renders chart index onto a surface.
type ChartRenderer interface {
	Render(index int, kinds []chart.Kind, s surface.Surface) (*chart.Handle, error)
}

// Pacer waits between charts.
type Pacer interface {
	Pace(ctx context.Context, d time.Duration) error
}

// PacerFunc adapts a function to Pacer.
type PacerFunc func(ctx context.Context, d time.Duration) error

// Pace implements Pacer.
func (f PacerFunc) Pace(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// TimerPacer sleeps for the delay, returning early on cancellation.
type TimerPacer struct{}

// Pace implements Pacer.
func (TimerPacer) Pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Loop holds the collaborators of a batch run.
type Loop struct {
	renderer ChartRenderer
	pacer    Pacer
	logger   *log.Logger
	progress Progress
}

// Option configures a Loop.
type Option func(*Loop)

// WithRenderer sets the chart renderer. Defaults to chart.NewRenderer().
func WithRenderer(r ChartRenderer) Option {
	return func(l *Loop) { l.renderer = r }
}

// WithPacer sets the pacer. Defaults to TimerPacer.
func WithPacer(p Pacer) Option {
	return func(l *Loop) { l.pacer = p }
}

// WithLogger sets the logger used for per-chart failures.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithProgress sets the progress callback.
func WithProgress(p Progress) Option {
	return func(l *Loop) { l.progress = p }
}

// New creates a loop.
func New(opts ...Option) *Loop {
	l := &Loop{}
	for _, opt := range opts {
		opt(l)
	}
	if l.renderer == nil {
		l.renderer = chart.NewRenderer()
	}
	if l.pacer == nil {
		l.pacer = TimerPacer{}
	}
	if l.logger == nil {
		l.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return l
}

// Render runs a batch with a loop built from opts. See [Loop.Run].
func Render(ctx context.Context, s surface.Surface, o Options, opts ...Option) ([]*chart.Handle, error) {
	return New(opts...).Run(ctx, s, o)
}

// Run renders charts 1..o.Count onto s and returns the successful handles in
// index order. The result may be shorter than Count; that is not an error.
// On cancellation the handles rendered so far are returned with ctx.Err().
func (l *Loop) Run(ctx context.Context, s surface.Surface, o Options) ([]*chart.Handle, error) {
	kinds := o.Kinds
	if len(kinds) == 0 {
		kinds = chart.Kinds
	}

	hooks := observability.Batch()
	start := time.Now()
	hooks.OnBatchStart(ctx, o.Count)

	handles := make([]*chart.Handle, 0, o.Count)
	var err error
	for i := 1; i <= o.Count; i++ {
		if err = ctx.Err(); err != nil {
			break
		}

		chartStart := time.Now()
		h, rerr := l.renderer.Render(i, kinds, s)
		if rerr != nil {
			l.logger.Warn("chart render failed", "index", i, "err", rerr)
			hooks.OnChartFailed(ctx, i, rerr)
		} else {
			handles = append(handles, h)
			hooks.OnChartRendered(ctx, i, string(h.Chart.Spec.Kind), time.Since(chartStart))
		}

		l.logger.Debug("chart progress", "index", i, "total", o.Count)
		if l.progress != nil {
			l.progress(i, o.Count)
		}

		if err = l.pacer.Pace(ctx, o.Delay); err != nil {
			break
		}
	}

	hooks.OnBatchComplete(ctx, o.Count, len(handles), time.Since(start), err)
	return handles, err
}
