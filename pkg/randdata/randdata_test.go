package randdata

import (
	"testing"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

func TestIntRange(t *testing.T) {
	g := NewSeeded(1)
	seen := map[int]bool{}
	for range 5000 {
		v, err := g.Int(1, 5)
		if err != nil {
			t.Fatalf("Int: %v", err)
		}
		if v < 1 || v >= 5 {
			t.Fatalf("Int(1,5) = %d, out of range", v)
		}
		seen[v] = true
	}
	for _, want := range []int{1, 2, 3, 4} {
		if !seen[want] {
			t.Errorf("value %d never drawn", want)
		}
	}
}

func TestIntInvalid(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
	}{
		{"equal", 5, 5},
		{"reversed", 10, 1},
		{"zero", 0, 0},
	}

	g := NewSeeded(1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Int(tt.min, tt.max)
			if !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("Int(%d,%d) error = %v, want INVALID_ARGUMENT", tt.min, tt.max, err)
			}
		})
	}
}

func TestIntN(t *testing.T) {
	g := NewSeeded(2)
	for range 1000 {
		v, err := g.IntN(3)
		if err != nil {
			t.Fatal(err)
		}
		if v < 0 || v >= 3 {
			t.Fatalf("IntN(3) = %d", v)
		}
	}
	if _, err := g.IntN(0); err == nil {
		t.Error("IntN(0) should fail")
	}
}

func TestSeries(t *testing.T) {
	g := NewSeeded(3)
	series, err := g.Series("line", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 3 {
		t.Fatalf("len = %d, want 3", len(series))
	}
	for i, s := range series {
		if s.Kind != "line" {
			t.Errorf("series %d kind = %q", i, s.Kind)
		}
		if want := []string{"Series 1", "Series 2", "Series 3"}[i]; s.Name != want {
			t.Errorf("series %d name = %q, want %q", i, s.Name, want)
		}
		if len(s.Data) != DefaultDataPoints {
			t.Errorf("series %d has %d points", i, len(s.Data))
		}
		for _, v := range s.Data {
			if v < 1 || v >= DefaultMaxY {
				t.Errorf("value %d out of [1,%d)", v, DefaultMaxY)
			}
		}
	}
}

func TestSeriesCount(t *testing.T) {
	g := NewSeeded(4)
	for range 500 {
		if n := g.SeriesCount(); n < MinSeries || n >= MaxSeries {
			t.Fatalf("SeriesCount() = %d", n)
		}
	}
}

func TestSeededDeterminism(t *testing.T) {
	a, _ := NewSeeded(42).Data(20, 50)
	b, _ := NewSeeded(42).Data(20, 50)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("streams diverge at %d: %d != %d", i, a[i], b[i])
		}
	}
}

func TestPick(t *testing.T) {
	g := NewSeeded(5)
	items := []string{"a", "b"}
	for range 100 {
		v, err := Pick(g, items)
		if err != nil {
			t.Fatal(err)
		}
		if v != "a" && v != "b" {
			t.Fatalf("Pick = %q", v)
		}
	}
	if _, err := Pick(g, []string{}); err == nil {
		t.Error("Pick on empty list should fail")
	}
}
