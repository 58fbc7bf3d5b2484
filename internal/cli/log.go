package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 25 charts (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// logHooks writes batch and export events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnBatchStart(ctx context.Context, count int) {
	h.logger.Debug("batch started", "count", count)
}

func (h *logHooks) OnChartRendered(ctx context.Context, index int, kind string, d time.Duration) {
	h.logger.Debug("chart rendered", "index", index, "kind", kind, "duration", d)
}

func (h *logHooks) OnChartFailed(ctx context.Context, index int, err error) {
	h.logger.Debug("chart failed", "index", index, "err", err)
}

func (h *logHooks) OnBatchComplete(ctx context.Context, requested, rendered int, d time.Duration, err error) {
	h.logger.Debug("batch complete", "requested", requested, "rendered", rendered, "duration", d, "err", err)
}

func (h *logHooks) OnExportStart(ctx context.Context, charts int) {
	h.logger.Debug("export started", "charts", charts)
}

func (h *logHooks) OnPairFailed(ctx context.Context, id, step string, err error) {
	h.logger.Debug("pair failed", "id", id, "step", step, "err", err)
}

func (h *logHooks) OnExportComplete(ctx context.Context, pairs, size int, d time.Duration, err error) {
	h.logger.Debug("export complete", "pairs", pairs, "bytes", size, "duration", d, "err", err)
}
