// Package chart turns random series into rendered go-chart charts.
//
// A [Renderer] draws one [Spec] per index: it picks a kind, generates the
// series, appends a "chart-<index>" element to a surface and binds a [Chart]
// to it. The bound chart draws itself on demand as SVG or as PNG at any
// scale, so exporters never need to know about go-chart.
package chart

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/randdata"
)

const (
	// DefaultWidth and DefaultHeight are the natural chart size in pixels.
	DefaultWidth  = 600
	DefaultHeight = 400

	// areaAlpha is the fill opacity of area kinds.
	areaAlpha = 72

	scatterDotWidth = 3
)

// Spec describes one generated chart. Specs are immutable once created.
type Spec struct {
	Index  int
	Kind   Kind
	Series []randdata.Series
}

// Title returns the display title, e.g. "No. 3 - Random Spline Chart".
func (s Spec) Title() string {
	return fmt.Sprintf("No. %d - Random %s Chart", s.Index, s.Kind.Title())
}

// ElementID returns the id of the container element, e.g. "chart-3".
func (s Spec) ElementID() string {
	return ElementID(s.Index)
}

// ElementID returns the container id for a chart index.
func ElementID(index int) string {
	return fmt.Sprintf("chart-%d", index)
}

// Chart is a live chart bound to a surface element.
type Chart struct {
	Spec   Spec
	Width  int
	Height int
}

// WriteSVG renders the chart as SVG.
func (c *Chart) WriteSVG(w io.Writer) error {
	if err := c.build(1).Render(gochart.SVG, w); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s as svg", c.Spec.ElementID())
	}
	return nil
}

// WritePNG renders the chart as PNG at scale times its natural size.
func (c *Chart) WritePNG(w io.Writer, scale float64) error {
	if scale <= 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "scale must be positive, got %v", scale)
	}
	if err := c.build(scale).Render(gochart.PNG, w); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s as png", c.Spec.ElementID())
	}
	return nil
}

// Validate checks that every series of the chart can be drawn.
func (c *Chart) Validate() error {
	if len(c.Spec.Series) == 0 {
		return errors.New(errors.ErrCodeRenderFailed, "%s has no series", c.Spec.ElementID())
	}
	for _, s := range c.build(1).Series {
		if err := s.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeRenderFailed, err, "%s", c.Spec.ElementID())
		}
	}
	return nil
}

// build assembles a fresh go-chart value. Ranges are mutated during
// rendering, so every render gets its own.
func (c *Chart) build(scale float64) gochart.Chart {
	px := func(v float64) float64 { return v * scale }
	pi := func(v int) int { return int(float64(v) * scale) }

	maxY := float64(randdata.DefaultMaxY)
	points := c.points()

	valueRange := &gochart.ContinuousRange{Min: 0, Max: maxY}
	categoryRange := &gochart.ContinuousRange{Min: 0, Max: float64(points + 1)}

	valueAxis := gochart.YAxis{
		Range:          valueRange,
		Ticks:          valueTicks(maxY),
		ValueFormatter: gochart.IntValueFormatter,
	}
	categoryAxis := gochart.XAxis{
		Range:          categoryRange,
		Ticks:          categoryTicks(points),
		ValueFormatter: gochart.IntValueFormatter,
	}

	g := gochart.Chart{
		Title:  c.Spec.Title(),
		Width:  pi(c.Width),
		Height: pi(c.Height),
		DPI:    gochart.DefaultDPI * scale,
		TitleStyle: gochart.Style{
			Padding: gochart.Box{Top: pi(gochart.DefaultTitleTop)},
		},
		Background: gochart.Style{
			Padding: gochart.Box{Top: pi(50), Left: pi(20), Right: pi(20), Bottom: pi(20)},
		},
		XAxis: categoryAxis,
		YAxis: valueAxis,
	}

	if c.Spec.Kind == KindBar {
		g.XAxis = gochart.XAxis{
			Range:          valueRange,
			Ticks:          valueTicks(maxY),
			ValueFormatter: gochart.IntValueFormatter,
		}
		g.YAxis = gochart.YAxis{
			Range:          categoryRange,
			Ticks:          categoryTicks(points),
			ValueFormatter: gochart.IntValueFormatter,
		}
	}

	for i, s := range c.Spec.Series {
		g.Series = append(g.Series, c.series(i, s, px))
	}
	g.Elements = []gochart.Renderable{gochart.Legend(&g)}
	return g
}

func (c *Chart) points() int {
	n := 0
	for _, s := range c.Spec.Series {
		n = max(n, len(s.Data))
	}
	return n
}

func (c *Chart) series(i int, s randdata.Series, px func(float64) float64) gochart.Series {
	color := gochart.GetDefaultColor(i)
	values := make([]float64, len(s.Data))
	xs := make([]float64, len(s.Data))
	for j, v := range s.Data {
		values[j] = float64(v)
		xs[j] = float64(j + 1)
	}

	if c.Spec.Kind.bars() {
		return groupedBarSeries{
			name: s.Name,
			style: gochart.Style{
				StrokeColor: color,
				FillColor:   color,
				StrokeWidth: px(1),
			},
			values:     values,
			slot:       i,
			slots:      len(c.Spec.Series),
			horizontal: c.Spec.Kind == KindBar,
		}
	}

	style := gochart.Style{
		StrokeColor: color,
		StrokeWidth: px(2),
	}
	switch {
	case c.Spec.Kind == KindScatter:
		style.StrokeWidth = gochart.Disabled
		style.DotColor = color
		style.DotWidth = px(scatterDotWidth)
	case c.Spec.Kind.filled():
		style.FillColor = color.WithAlpha(areaAlpha)
	}

	if c.Spec.Kind.smooth() {
		xs, values = catmullRom(xs, values, 0, float64(randdata.DefaultMaxY))
	}

	return gochart.ContinuousSeries{
		Name:    s.Name,
		Style:   style,
		XValues: xs,
		YValues: values,
	}
}

func valueTicks(maxY float64) []gochart.Tick {
	var ticks []gochart.Tick
	for v := 0.0; v <= maxY; v += 10 {
		ticks = append(ticks, gochart.Tick{Value: v, Label: fmt.Sprintf("%d", int(v))})
	}
	return ticks
}

// categoryTicks labels 1..n and pads the axis with unlabeled ticks at 0 and
// n+1 so the outermost bar groups are not clipped.
func categoryTicks(n int) []gochart.Tick {
	ticks := []gochart.Tick{{Value: 0}}
	for i := 1; i <= n; i++ {
		label := ""
		if i == 1 || i%5 == 0 {
			label = fmt.Sprintf("%d", i)
		}
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: label})
	}
	return append(ticks, gochart.Tick{Value: float64(n + 1)})
}
