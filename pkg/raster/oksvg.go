package raster

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// OKSVG rasterizes the chart's SVG in-process.
type OKSVG struct {
	Scale float64
}

// Name implements Namer.
func (o *OKSVG) Name() string { return BackendOKSVG }

// Snapshot implements Snapshotter.
func (o *OKSVG) Snapshot(ctx context.Context, el *surface.Element) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	svg, err := elementSVG(el)
	if err != nil {
		return "", err
	}
	data, err := o.Convert(svg)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSnapshotFailed, err, "snapshot %s", el.ID)
	}
	return DataURI(MimePNG, data), nil
}

// Convert rasterizes SVG bytes to PNG on a white background.
func (o *OKSVG) Convert(svg []byte) ([]byte, error) {
	normalized, err := normalizeColors(svg)
	if err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(normalized), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotFailed, err, "parse svg")
	}

	scale := o.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	w, h := int(icon.ViewBox.W*scale), int(icon.ViewBox.H*scale)
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeSnapshotFailed, "svg has no usable viewBox")
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	rgbaStyle = regexp.MustCompile(`(fill|stroke)\s*:\s*rgba\(([^)]*)\)`)
	rgbaValue = regexp.MustCompile(`^\s*rgba\(([^)]*)\)\s*$`)
)

// normalizeColors rewrites rgba() paints, which oksvg cannot parse, into an
// rgb() paint plus a matching -opacity property.
func normalizeColors(svg []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(svg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotFailed, err, "parse svg")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New(errors.ErrCodeSnapshotFailed, "parse svg: no root element")
	}

	for _, el := range append([]*etree.Element{root}, root.FindElements(".//*")...) {
		if a := el.SelectAttr("style"); a != nil {
			a.Value = rgbaStyle.ReplaceAllStringFunc(a.Value, func(decl string) string {
				m := rgbaStyle.FindStringSubmatch(decl)
				rgb, alpha, ok := splitRGBA(m[2])
				if !ok {
					return decl
				}
				return m[1] + ":" + rgb + ";" + m[1] + "-opacity:" + alpha
			})
		}
		for _, paint := range []string{"fill", "stroke"} {
			a := el.SelectAttr(paint)
			if a == nil {
				continue
			}
			m := rgbaValue.FindStringSubmatch(a.Value)
			if m == nil {
				continue
			}
			if rgb, alpha, ok := splitRGBA(m[1]); ok {
				a.Value = rgb
				el.CreateAttr(paint+"-opacity", alpha)
			}
		}
	}
	return doc.WriteToBytes()
}

func splitRGBA(args string) (rgb, alpha string, ok bool) {
	parts := strings.Split(args, ",")
	if len(parts) != 4 {
		return "", "", false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return "rgb(" + strings.Join(parts[:3], ",") + ")", parts[3], true
}
