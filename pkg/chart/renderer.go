package chart

import (
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/randdata"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// Handle is a rendered chart: the live chart plus its container element.
type Handle struct {
	Chart   *Chart
	Element *surface.Element
}

// Index returns the chart index.
func (h *Handle) Index() int { return h.Chart.Spec.Index }

// ID returns the container element id.
func (h *Handle) ID() string { return h.Element.ID }

// Renderer draws random charts onto a surface.
type Renderer struct {
	gen    *randdata.Generator
	width  int
	height int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithGenerator sets the random source. Defaults to randdata.Default().
func WithGenerator(g *randdata.Generator) Option {
	return func(r *Renderer) {
		if g != nil {
			r.gen = g
		}
	}
}

// WithSize sets the natural chart size in pixels. Non-positive values keep
// the defaults.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		gen:    randdata.Default(),
		width:  DefaultWidth,
		height: DefaultHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewSpec draws the kind and the series for chart index.
func (r *Renderer) NewSpec(index int, kinds []Kind) (Spec, error) {
	if len(kinds) == 0 {
		return Spec{}, errors.New(errors.ErrCodeInvalidKind, "no chart kinds allowed")
	}
	kind, err := randdata.Pick(r.gen, kinds)
	if err != nil {
		return Spec{}, err
	}
	series, err := r.gen.Series(string(kind), r.gen.SeriesCount())
	if err != nil {
		return Spec{}, err
	}
	return Spec{Index: index, Kind: kind, Series: series}, nil
}

// Render creates chart index on s. The element is appended before the chart
// is bound, so a failed chart can leave an empty container behind.
func (r *Renderer) Render(index int, kinds []Kind, s surface.Surface) (*Handle, error) {
	spec, err := r.NewSpec(index, kinds)
	if err != nil {
		return nil, err
	}
	return r.RenderSpec(spec, s)
}

// RenderSpec binds a chart for an existing spec to a new element on s.
func (r *Renderer) RenderSpec(spec Spec, s surface.Surface) (*Handle, error) {
	el, err := s.Append(spec.ElementID(), r.width, r.height)
	if err != nil {
		return nil, err
	}
	c := &Chart{Spec: spec, Width: el.Width, Height: el.Height}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	el.Bind(c)
	return &Handle{Chart: c, Element: el}, nil
}
