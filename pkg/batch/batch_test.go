package batch

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/observability"
	"github.com/matzehuels/chartdeck/pkg/randdata"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// failingRenderer wraps a real renderer and fails the listed indices.
type failingRenderer struct {
	inner *chart.Renderer
	fail  map[int]bool
	calls []int
}

func (f *failingRenderer) Render(index int, kinds []chart.Kind, s surface.Surface) (*chart.Handle, error) {
	f.calls = append(f.calls, index)
	if f.fail[index] {
		return nil, errors.New("chart library exploded")
	}
	return f.inner.Render(index, kinds, s)
}

func noPause() Pacer {
	return PacerFunc(func(ctx context.Context, d time.Duration) error { return ctx.Err() })
}

func TestRenderCounts(t *testing.T) {
	for _, n := range []int{1, 7, 500} {
		s := surface.NewMemory()
		handles, err := Render(context.Background(), s, Options{Count: n},
			WithRenderer(chart.NewRenderer(chart.WithGenerator(randdata.NewSeeded(uint64(n))))),
			WithPacer(noPause()),
		)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(handles) != n {
			t.Errorf("n=%d: got %d handles", n, len(handles))
		}
		for i, h := range handles {
			if h.Index() != i+1 {
				t.Fatalf("n=%d: handle %d has index %d", n, i, h.Index())
			}
		}
		if s.Len() != n {
			t.Errorf("n=%d: surface has %d elements", n, s.Len())
		}
	}
}

func TestRenderSkipsFailures(t *testing.T) {
	r := &failingRenderer{
		inner: chart.NewRenderer(chart.WithGenerator(randdata.NewSeeded(1))),
		fail:  map[int]bool{2: true, 4: true},
	}

	var progress []int
	handles, err := Render(context.Background(), surface.NewMemory(), Options{Count: 5},
		WithRenderer(r),
		WithPacer(noPause()),
		WithProgress(func(i, total int) {
			if total != 5 {
				t.Errorf("total = %d", total)
			}
			progress = append(progress, i)
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	var got []int
	for _, h := range handles {
		got = append(got, h.Index())
	}
	if want := []int{1, 3, 5}; !slices.Equal(got, want) {
		t.Errorf("indices = %v, want %v", got, want)
	}
	if want := []int{1, 2, 3, 4, 5}; !slices.Equal(progress, want) {
		t.Errorf("progress = %v, want %v", progress, want)
	}
	if want := []int{1, 2, 3, 4, 5}; !slices.Equal(r.calls, want) {
		t.Errorf("calls = %v (no retries expected)", r.calls)
	}
}

func TestRenderPacesEveryChart(t *testing.T) {
	var delays []time.Duration
	pacer := PacerFunc(func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	})

	_, err := Render(context.Background(), surface.NewMemory(),
		Options{Count: 3, Delay: 10 * time.Millisecond}, WithPacer(pacer))
	if err != nil {
		t.Fatal(err)
	}
	if len(delays) != 3 {
		t.Fatalf("paced %d times, want 3", len(delays))
	}
	for _, d := range delays {
		if d != 10*time.Millisecond {
			t.Errorf("delay = %v", d)
		}
	}
}

func TestRenderCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pacer := PacerFunc(func(ctx context.Context, d time.Duration) error {
		return ctx.Err()
	})

	handles, err := Render(ctx, surface.NewMemory(), Options{Count: 10},
		WithPacer(pacer),
		WithProgress(func(i, _ int) {
			if i == 3 {
				cancel()
			}
		}),
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(handles) != 3 {
		t.Errorf("got %d handles, want 3", len(handles))
	}
}

func TestTimerPacer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (TimerPacer{}).Pace(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled Pace = %v", err)
	}
	if err := (TimerPacer{}).Pace(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Pace = %v", err)
	}
}

type countingHooks struct {
	observability.NoopBatchHooks
	rendered, failed, completed int
}

func (c *countingHooks) OnChartRendered(context.Context, int, string, time.Duration) { c.rendered++ }
func (c *countingHooks) OnChartFailed(context.Context, int, error)                   { c.failed++ }
func (c *countingHooks) OnBatchComplete(context.Context, int, int, time.Duration, error) {
	c.completed++
}

func TestRenderEmitsHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetBatchHooks(hooks)
	defer observability.Reset()

	r := &failingRenderer{inner: chart.NewRenderer(), fail: map[int]bool{1: true}}
	Render(context.Background(), surface.NewMemory(), Options{Count: 3}, WithRenderer(r), WithPacer(noPause()))

	if hooks.rendered != 2 || hooks.failed != 1 || hooks.completed != 1 {
		t.Errorf("hooks = %+v", *hooks)
	}
}
