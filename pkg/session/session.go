// Package session holds the application state shared by the chartdeck
// front-ends.
//
// A [Session] owns the charts of the current batch. A [Controller] pairs a
// session with a [pipeline.Runner] and serializes the two user actions on it:
//
//   - Generate: validate the amount, clear the surface, render a new batch and
//     replace the chart list wholesale
//   - Export: convert the current chart list into a document
//
// Start is the non-blocking form of Generate used by the HTTP front-end.
//
// Only one action runs at a time. A second call while one is in flight fails
// with [errors.ErrCodeBusy] instead of queuing.
//
// # Usage
//
//	ctrl := session.NewController(pipeline.NewRunner(nil, nil, nil, logger))
//	if _, err := ctrl.Generate(ctx, 25); err != nil {
//	    return err
//	}
//	if ctrl.CanExport() {
//	    res, err := ctrl.Export(ctx)
//	    ...
//	}
//
// The HTTP front-end keeps one Controller per browser session in a [Store].
package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
)

// Session stores the charts of the most recent batch.
type Session struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu     sync.RWMutex
	charts []*chart.Handle
}

// New creates an empty session with a random ID.
func New() *Session {
	return &Session{ID: uuid.New(), CreatedAt: time.Now()}
}

// Charts returns a copy of the current chart list.
func (s *Session) Charts() []*chart.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.charts)
}

// Len returns the number of current charts.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.charts)
}

// Chart looks up a chart by its element ID.
func (s *Session) Chart(id string) (*chart.Handle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.charts {
		if h.ID() == id {
			return h, true
		}
	}
	return nil, false
}

func (s *Session) replace(charts []*chart.Handle) {
	s.mu.Lock()
	s.charts = charts
	s.mu.Unlock()
}

// Phase names what a controller is doing.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseGenerating Phase = "generating"
	PhaseExporting  Phase = "exporting"
)

// Status is a point-in-time view of a controller's progress.
type Status struct {
	Phase Phase
	Done  int
	Total int
}

// Running reports whether an action is in flight.
func (s Status) Running() bool { return s.Phase != PhaseIdle }

// Message is the progress line shown to the user, empty when idle.
func (s Status) Message() string {
	switch s.Phase {
	case PhaseGenerating:
		return fmt.Sprintf("Laden van grafiek nr. %d van de %d", s.Done, s.Total)
	case PhaseExporting:
		return fmt.Sprintf("Afbeelding generen van grafiek nr. %d van de %d", s.Done, s.Total)
	}
	return ""
}

// Controller serializes generate and export on one session.
type Controller struct {
	session *Session
	runner  *pipeline.Runner
	opts    pipeline.Options

	onGenerate func(done, total int)
	onExport   func(done, total int)

	busy   sync.Mutex
	status atomic.Pointer[Status]
	seen   atomic.Int64
}

// Option configures a Controller.
type Option func(*Controller)

// WithOptions sets the base pipeline options. Generate overrides Count.
func WithOptions(opts pipeline.Options) Option {
	return func(c *Controller) { c.opts = opts }
}

// WithSession attaches an existing session.
func WithSession(s *Session) Option {
	return func(c *Controller) {
		if s != nil {
			c.session = s
		}
	}
}

// WithGenerateProgress registers a listener called after every chart index.
func WithGenerateProgress(fn func(done, total int)) Option {
	return func(c *Controller) { c.onGenerate = fn }
}

// WithExportProgress registers a listener called after every exported chart.
func WithExportProgress(fn func(done, total int)) Option {
	return func(c *Controller) { c.onExport = fn }
}

// NewController creates a controller running r on a fresh session.
func NewController(r *pipeline.Runner, opts ...Option) *Controller {
	if r == nil {
		r = pipeline.NewRunner(nil, nil, nil, nil)
	}
	c := &Controller{session: New(), runner: r}
	for _, opt := range opts {
		opt(c)
	}
	c.status.Store(&Status{Phase: PhaseIdle})
	c.Touch()
	return c
}

// Session returns the controlled session.
func (c *Controller) Session() *Session { return c.session }

// ID returns the session ID.
func (c *Controller) ID() uuid.UUID { return c.session.ID }

// Options returns a copy of the base pipeline options.
func (c *Controller) Options() pipeline.Options {
	o := c.opts
	o.Kinds = slices.Clone(c.opts.Kinds)
	return o
}

// Charts returns the current chart list.
func (c *Controller) Charts() []*chart.Handle { return c.session.Charts() }

// Status returns the current progress.
func (c *Controller) Status() Status { return *c.status.Load() }

// CanExport reports whether Export would find charts to work on.
func (c *Controller) CanExport() bool {
	return !c.Status().Running() && c.session.Len() > 0
}

// Touch records activity for idle expiry.
func (c *Controller) Touch() { c.seen.Store(time.Now().UnixNano()) }

// LastSeen returns the time of the last recorded activity.
func (c *Controller) LastSeen() time.Time { return time.Unix(0, c.seen.Load()) }

// Generate renders amount new charts and makes them the session's chart list.
// An invalid amount or invalid options are rejected before anything is
// cleared.
func (c *Controller) Generate(ctx context.Context, amount int) ([]*chart.Handle, error) {
	opts, err := c.claimGenerate(amount)
	if err != nil {
		return nil, err
	}
	defer c.busy.Unlock()
	return c.generate(ctx, opts)
}

// Start is Generate without waiting: validation and the busy check happen
// before it returns, the batch renders in the background. done, if not nil,
// receives the result.
func (c *Controller) Start(ctx context.Context, amount int, done func([]*chart.Handle, error)) error {
	opts, err := c.claimGenerate(amount)
	if err != nil {
		return err
	}
	go func() {
		handles, err := c.generate(ctx, opts)
		c.busy.Unlock()
		if done != nil {
			done(handles, err)
		}
	}()
	return nil
}

// claimGenerate validates a request and takes the busy lock. On success the
// status already shows the new batch.
func (c *Controller) claimGenerate(amount int) (pipeline.Options, error) {
	if err := pipeline.ValidateAmount(amount); err != nil {
		return pipeline.Options{}, err
	}
	opts := c.Options()
	opts.Count = amount
	check := opts
	if err := check.ValidateForGenerate(); err != nil {
		return pipeline.Options{}, err
	}
	if !c.busy.TryLock() {
		return pipeline.Options{}, errors.New(errors.ErrCodeBusy, "charts are being rendered or exported")
	}
	c.Touch()
	c.setStatus(PhaseGenerating, 0, amount)
	c.session.replace(nil)
	return opts, nil
}

// generate runs a claimed batch. The caller releases the lock.
func (c *Controller) generate(ctx context.Context, opts pipeline.Options) ([]*chart.Handle, error) {
	defer c.setStatus(PhaseIdle, 0, 0)
	handles, err := c.runner.Generate(ctx, opts, func(done, total int) {
		c.setStatus(PhaseGenerating, done, total)
		if c.onGenerate != nil {
			c.onGenerate(done, total)
		}
	})
	c.session.replace(handles)
	return handles, err
}

// Export converts the current charts into a document.
func (c *Controller) Export(ctx context.Context) (*export.Result, error) {
	if !c.busy.TryLock() {
		return nil, errors.New(errors.ErrCodeBusy, "charts are being rendered or exported")
	}
	defer c.busy.Unlock()
	defer c.setStatus(PhaseIdle, 0, 0)
	c.Touch()

	charts := c.session.Charts()
	if len(charts) == 0 {
		return nil, errors.New(errors.ErrCodeNoCharts, export.MsgNoCharts)
	}
	c.setStatus(PhaseExporting, 0, len(charts))

	return c.runner.Export(ctx, charts, c.Options(), func(done, total int) {
		c.setStatus(PhaseExporting, done, total)
		if c.onExport != nil {
			c.onExport(done, total)
		}
	})
}

func (c *Controller) setStatus(p Phase, done, total int) {
	c.status.Store(&Status{Phase: p, Done: done, Total: total})
}
