package raster

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// RSVG converts the chart's SVG with rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type RSVG struct {
	Scale float64
	// Bin overrides the executable. Defaults to "rsvg-convert".
	Bin string
}

// Name implements Namer.
func (r *RSVG) Name() string { return BackendRSVG }

// Snapshot implements Snapshotter.
func (r *RSVG) Snapshot(ctx context.Context, el *surface.Element) (string, error) {
	svg, err := elementSVG(el)
	if err != nil {
		return "", err
	}
	png, err := r.Convert(ctx, svg)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSnapshotFailed, err, "snapshot %s", el.ID)
	}
	return DataURI(MimePNG, png), nil
}

// Convert turns SVG bytes into PNG bytes at the configured scale.
func (r *RSVG) Convert(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, r.bin(), svg, "png", "-z", fmt.Sprintf("%.2f", r.Scale))
}

func (r *RSVG) bin() string {
	if r.Bin != "" {
		return r.Bin
	}
	return "rsvg-convert"
}

// rsvgConvert shells out to rsvg-convert for format conversion.
func rsvgConvert(ctx context.Context, bin string, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath(bin); err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s snapshots require librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
