// Package randdata generates the random values behind demonstration charts.
//
// All draws come from a [Generator] so tests can seed the stream. The
// package-level helpers use a process-wide generator seeded from the runtime.
//
// Ranges are half-open: [Int] returns min <= v < max, and series values lie in
// [1, max).
package randdata

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/matzehuels/chartdeck/pkg/errors"
)

const (
	// DefaultDataPoints is the number of values per series.
	DefaultDataPoints = 20

	// DefaultMaxY is the exclusive upper bound of series values.
	DefaultMaxY = 50

	// MinSeries and MaxSeries bound the series count of one chart: [1, 5).
	MinSeries = 1
	MaxSeries = 5
)

// Series is one named sequence of values drawn for a chart.
type Series struct {
	Kind string
	Name string
	Data []int
}

// Generator draws random integers from a seedable source.
// A Generator is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a generator reading from src.
func New(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// NewSeeded creates a deterministic generator. Equal seeds produce equal streams.
func NewSeeded(seed uint64) *Generator {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Int returns a uniform integer in [min, max).
func (g *Generator) Int(min, max int) (int, error) {
	if min >= max {
		return 0, errors.New(errors.ErrCodeInvalidArgument,
			"Invalid input: maximum must be greater than minimum. (min=%d, max=%d)", min, max)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return min + g.rnd.IntN(max-min), nil
}

// IntN is the single-bound form of Int: a uniform integer in [0, max).
func (g *Generator) IntN(max int) (int, error) {
	return g.Int(0, max)
}

// Data returns length values drawn from [1, max).
func (g *Generator) Data(length, max int) ([]int, error) {
	if length < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "negative data length %d", length)
	}
	data := make([]int, length)
	for i := range data {
		v, err := g.Int(1, max)
		if err != nil {
			return nil, err
		}
		data[i] = v
	}
	return data, nil
}

// Series returns amount series of the given kind using the default
// data length and value bound. Names are "Series 1", "Series 2", ...
func (g *Generator) Series(kind string, amount int) ([]Series, error) {
	return g.SeriesN(kind, amount, DefaultDataPoints, DefaultMaxY)
}

// SeriesN is Series with explicit data length and value bound.
func (g *Generator) SeriesN(kind string, amount, dataPoints, maxY int) ([]Series, error) {
	if amount < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "negative series amount %d", amount)
	}
	out := make([]Series, 0, amount)
	for i := range amount {
		data, err := g.Data(dataPoints, maxY)
		if err != nil {
			return nil, err
		}
		out = append(out, Series{
			Kind: kind,
			Name: fmt.Sprintf("Series %d", i+1),
			Data: data,
		})
	}
	return out, nil
}

// SeriesCount draws how many series a chart gets, in [MinSeries, MaxSeries).
func (g *Generator) SeriesCount() int {
	n, _ := g.Int(MinSeries, MaxSeries)
	return n
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](g *Generator, items []T) (T, error) {
	var zero T
	i, err := g.IntN(len(items))
	if err != nil {
		return zero, errors.New(errors.ErrCodeInvalidArgument, "cannot pick from an empty list")
	}
	return items[i], nil
}

var defaultGen = New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

// Default returns the process-wide generator.
func Default() *Generator { return defaultGen }

// Int draws from the default generator. See [Generator.Int].
func Int(min, max int) (int, error) { return defaultGen.Int(min, max) }

// IntN draws from the default generator. See [Generator.IntN].
func IntN(max int) (int, error) { return defaultGen.IntN(max) }

// Data draws from the default generator. See [Generator.Data].
func Data(length, max int) ([]int, error) { return defaultGen.Data(length, max) }

// NewSeries draws from the default generator. See [Generator.Series].
func NewSeries(kind string, amount int) ([]Series, error) { return defaultGen.Series(kind, amount) }
