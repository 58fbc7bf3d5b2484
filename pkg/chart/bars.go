package chart

import (
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// groupFill is the share of one category slot covered by its bar group.
const groupFill = 0.8

// groupedBarSeries draws one series of a grouped bar chart. Each series owns
// one slot inside every category group. Categories are 1..len(values).
// When horizontal is set, categories run along the y axis and values along x.
type groupedBarSeries struct {
	name       string
	style      gochart.Style
	values     []float64
	slot       int
	slots      int
	horizontal bool
}

var (
	_ gochart.Series         = groupedBarSeries{}
	_ gochart.ValuesProvider = groupedBarSeries{}
)

func (s groupedBarSeries) GetName() string             { return s.name }
func (s groupedBarSeries) GetStyle() gochart.Style     { return s.style }
func (s groupedBarSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }
func (s groupedBarSeries) Len() int                    { return len(s.values) }

// GetValues returns (category, value), swapped for horizontal bars so the
// chart's range detection sees values on the x axis.
func (s groupedBarSeries) GetValues(i int) (float64, float64) {
	if s.horizontal {
		return s.values[i], float64(i + 1)
	}
	return float64(i + 1), s.values[i]
}

func (s groupedBarSeries) Validate() error {
	if len(s.values) == 0 {
		return fmt.Errorf("bar series %q has no values", s.name)
	}
	if s.slots <= 0 || s.slot < 0 || s.slot >= s.slots {
		return fmt.Errorf("bar series %q: slot %d of %d", s.name, s.slot, s.slots)
	}
	return nil
}

// slotBounds returns the category-axis interval covered by this series'
// bar in category cat.
func (s groupedBarSeries) slotBounds(cat float64) (lo, hi float64) {
	width := groupFill / float64(s.slots)
	lo = cat - groupFill/2 + float64(s.slot)*width
	return lo, lo + width
}

func (s groupedBarSeries) Render(r gochart.Renderer, box gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	style := s.style.InheritFrom(defaults)
	for i, v := range s.values {
		lo, hi := s.slotBounds(float64(i + 1))

		var b gochart.Box
		if s.horizontal {
			b = gochart.Box{
				Left:   box.Left + xrange.Translate(0),
				Right:  box.Left + xrange.Translate(v),
				Top:    box.Bottom - yrange.Translate(hi),
				Bottom: box.Bottom - yrange.Translate(lo),
			}
		} else {
			b = gochart.Box{
				Left:   box.Left + xrange.Translate(lo),
				Right:  box.Left + xrange.Translate(hi),
				Top:    box.Bottom - yrange.Translate(v),
				Bottom: box.Bottom - yrange.Translate(0),
			}
		}
		gochart.Draw.Box(r, b, style)
	}
}
