// Package raster turns rendered charts into PNG snapshots.
//
// A [Snapshotter] captures one surface element at [DefaultScale] times its
// natural size and returns the image as a base64 data URI, the form the
// document assembler embeds. Three backends exist:
//
//   - native: the chart draws itself into a PNG (no external tools)
//   - rsvg:   the chart's SVG is piped through rsvg-convert
//   - oksvg:  the chart's SVG is rasterized in-process with oksvg/rasterx;
//     shapes only, text is not drawn
package raster

import (
	"bytes"
	"context"
	"strings"

	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// DefaultScale is the snapshot resolution relative to the natural size.
const DefaultScale = 2.0

// Backend names.
const (
	BackendNative = "native"
	BackendRSVG   = "rsvg"
	BackendOKSVG  = "oksvg"
)

// Backends lists the available backend names.
var Backends = []string{BackendNative, BackendRSVG, BackendOKSVG}

// Snapshotter captures an element as a PNG data URI.
type Snapshotter interface {
	Snapshot(ctx context.Context, el *surface.Element) (string, error)
}

// Namer is implemented by snapshotters that report their backend name.
type Namer interface {
	Name() string
}

// New returns the snapshotter for a backend name. An empty name selects the
// native backend. Scale <= 0 means DefaultScale.
func New(backend string, scale float64) (Snapshotter, error) {
	if scale <= 0 {
		scale = DefaultScale
	}
	switch strings.ToLower(backend) {
	case "", BackendNative:
		return &Native{Scale: scale}, nil
	case BackendRSVG:
		return &RSVG{Scale: scale}, nil
	case BackendOKSVG:
		return &OKSVG{Scale: scale}, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown raster backend %q (valid: %s)", backend, strings.Join(Backends, ", "))
}

// Native asks the bound chart to draw itself as PNG.
type Native struct {
	Scale float64
}

// Name implements Namer.
func (n *Native) Name() string { return BackendNative }

// Snapshot implements Snapshotter.
func (n *Native) Snapshot(ctx context.Context, el *surface.Element) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := el.Content()
	if c == nil {
		return "", errors.New(errors.ErrCodeSnapshotFailed, "element %s has no content", el.ID)
	}
	var buf bytes.Buffer
	if err := c.WritePNG(&buf, n.Scale); err != nil {
		return "", errors.Wrap(errors.ErrCodeSnapshotFailed, err, "snapshot %s", el.ID)
	}
	return DataURI(MimePNG, buf.Bytes()), nil
}

// Describe returns the backend name and scale of a snapshotter. Unknown
// implementations report an empty name and zero scale.
func Describe(s Snapshotter) (name string, scale float64) {
	if n, ok := s.(Namer); ok {
		name = n.Name()
	}
	switch s := s.(type) {
	case *Native:
		scale = s.Scale
	case *RSVG:
		scale = s.Scale
	case *OKSVG:
		scale = s.Scale
	}
	return name, scale
}

// elementSVG renders the element's vector form for the SVG-based backends.
func elementSVG(el *surface.Element) ([]byte, error) {
	var buf bytes.Buffer
	if err := el.WriteSVG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotFailed, err, "snapshot %s", el.ID)
	}
	return buf.Bytes(), nil
}
