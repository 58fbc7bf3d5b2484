package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdeck/pkg/batch"
	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/raster"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

var tinyPNG = []byte("\x89PNG\r\n\x1a\nfake")

type stubSnapshotter struct{}

func (stubSnapshotter) Snapshot(ctx context.Context, el *surface.Element) (string, error) {
	return raster.DataURI(raster.MimePNG, tinyPNG), nil
}

func newRunner(p batch.Pacer) *pipeline.Runner {
	r := pipeline.NewRunner(surface.NewMemory(), stubSnapshotter{}, nil, log.NewWithOptions(io.Discard, log.Options{}))
	if p == nil {
		p = batch.PacerFunc(func(ctx context.Context, _ time.Duration) error { return ctx.Err() })
	}
	r.Pacer = p
	return r
}

func TestControllerGenerate(t *testing.T) {
	var calls int
	c := NewController(newRunner(nil),
		WithOptions(pipeline.Options{Seed: 3}),
		WithGenerateProgress(func(done, total int) { calls++ }),
	)
	if c.CanExport() {
		t.Error("CanExport() = true on empty session")
	}

	handles, err := c.Generate(context.Background(), 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(handles) != 6 || len(c.Charts()) != 6 || calls != 6 {
		t.Errorf("handles=%d charts=%d progress calls=%d", len(handles), len(c.Charts()), calls)
	}
	if !c.CanExport() {
		t.Error("CanExport() = false after generate")
	}
	if h, ok := c.Session().Chart("chart-3"); !ok || h.Index() != 3 {
		t.Errorf("Chart(chart-3) = %v, %v", h, ok)
	}

	// A new batch replaces the list wholesale.
	if _, err := c.Generate(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if got := len(c.Charts()); got != 2 {
		t.Errorf("charts after regenerate = %d, want 2", got)
	}
}

func TestControllerInvalidAmountKeepsCharts(t *testing.T) {
	c := NewController(newRunner(nil))
	if _, err := c.Generate(context.Background(), 3); err != nil {
		t.Fatal(err)
	}

	for _, amount := range []int{0, -1, 501} {
		_, err := c.Generate(context.Background(), amount)
		if !errors.Is(err, errors.ErrCodeInvalidAmount) {
			t.Errorf("Generate(%d) error = %v", amount, err)
		}
	}
	if got := len(c.Charts()); got != 3 {
		t.Errorf("charts = %d, want 3", got)
	}
}

func TestControllerInvalidOptionsKeepCharts(t *testing.T) {
	sess := New()
	first := NewController(newRunner(nil), WithSession(sess))
	if _, err := first.Generate(context.Background(), 3); err != nil {
		t.Fatal(err)
	}

	c := NewController(newRunner(nil),
		WithSession(sess),
		WithOptions(pipeline.Options{Kinds: []string{"pie"}}),
	)
	if _, err := c.Generate(context.Background(), 2); !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Fatalf("error = %v, want INVALID_KIND", err)
	}
	if got := len(c.Charts()); got != 3 {
		t.Errorf("charts = %d, want the previous 3", got)
	}
	if c.Status().Running() {
		t.Error("status left running after rejected options")
	}
}

func TestControllerExport(t *testing.T) {
	c := NewController(newRunner(nil))

	if _, err := c.Export(context.Background()); !errors.Is(err, errors.ErrCodeNoCharts) {
		t.Fatalf("Export() on empty session error = %v", err)
	}

	if _, err := c.Generate(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	var last int
	c.onExport = func(done, total int) { last = done }
	res, err := c.Export(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Exported != 3 || last != 3 {
		t.Errorf("exported=%d last progress=%d", res.Exported, last)
	}
	if res.Filename != pipeline.DefaultFilename {
		t.Errorf("filename = %q", res.Filename)
	}
	if c.Status().Running() {
		t.Error("status still running after export")
	}
}

func TestControllerStart(t *testing.T) {
	release := make(chan struct{})
	pacer := batch.PacerFunc(func(ctx context.Context, _ time.Duration) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	c := NewController(newRunner(pacer))

	result := make(chan int, 1)
	err := c.Start(context.Background(), 3, func(handles []*chart.Handle, err error) {
		if err != nil {
			t.Errorf("background generate: %v", err)
		}
		result <- len(handles)
	})
	if err != nil {
		t.Fatal(err)
	}

	// Start returns with the batch claimed and visible.
	if st := c.Status(); st.Phase != PhaseGenerating || st.Total != 3 {
		t.Errorf("status after Start = %+v", st)
	}
	if err := c.Start(context.Background(), 1, nil); !errors.Is(err, errors.ErrCodeBusy) {
		t.Errorf("second Start error = %v, want BUSY", err)
	}

	close(release)
	select {
	case n := <-result:
		if n != 3 || len(c.Charts()) != 3 {
			t.Errorf("handles=%d charts=%d", n, len(c.Charts()))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("background batch did not finish")
	}
	if c.Status().Running() {
		t.Error("status still running after the batch")
	}
	if err := c.Start(context.Background(), 0, nil); !errors.Is(err, errors.ErrCodeInvalidAmount) {
		t.Errorf("Start(0) error = %v, want INVALID_AMOUNT", err)
	}
}

func TestControllerBusy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	pacer := batch.PacerFunc(func(ctx context.Context, _ time.Duration) error {
		close(started)
		<-release
		return nil
	})
	c := NewController(newRunner(pacer))

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background(), 1)
		done <- err
	}()
	<-started

	if c.CanExport() {
		t.Error("CanExport() = true while rendering")
	}
	if st := c.Status(); st.Phase != PhaseGenerating || st.Total != 1 {
		t.Errorf("status = %+v", st)
	}
	if _, err := c.Generate(context.Background(), 2); !errors.Is(err, errors.ErrCodeBusy) {
		t.Errorf("concurrent Generate error = %v", err)
	}
	if _, err := c.Export(context.Background()); !errors.Is(err, errors.ErrCodeBusy) {
		t.Errorf("concurrent Export error = %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !c.CanExport() {
		t.Error("CanExport() = false after batch finished")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	c := NewController(newRunner(nil))

	if _, err := s.Get(ctx, c.ID()); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Fatalf("Get() before Put error = %v", err)
	}
	if err := s.Put(ctx, c); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, c.ID())
	if err != nil || got != c {
		t.Fatalf("Get() = %v, %v", got, err)
	}

	if n, _ := s.Cleanup(ctx); n != 0 {
		t.Errorf("Cleanup() removed %d fresh sessions", n)
	}

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := s.Get(ctx, c.ID()); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get() on expired session error = %v", err)
	}
	if n, _ := s.Cleanup(ctx); n != 1 || s.Len() != 0 {
		t.Errorf("Cleanup() removed %d, %d left", n, s.Len())
	}

	if err := s.Put(ctx, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Put(nil) error = %v", err)
	}
}

func TestNewSessionIDs(t *testing.T) {
	a, b := New(), New()
	if a.ID == b.ID {
		t.Error("sessions share an ID")
	}
	if a.Len() != 0 || a.CreatedAt.IsZero() {
		t.Errorf("unexpected new session: %+v", a)
	}
}

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Status{Phase: PhaseIdle}, ""},
		{Status{Phase: PhaseGenerating, Done: 3, Total: 10}, "Laden van grafiek nr. 3 van de 10"},
		{Status{Phase: PhaseExporting, Done: 1, Total: 2}, "Afbeelding generen van grafiek nr. 1 van de 2"},
	}
	for _, tt := range tests {
		if got := tt.status.Message(); got != tt.want {
			t.Errorf("Message() = %q, want %q", got, tt.want)
		}
	}
}
