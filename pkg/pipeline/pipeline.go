// Package pipeline provides the generate and export pipeline for chartdeck.
//
// The CLI, the terminal UI and the HTTP server all run the same two steps:
//
//  1. Generate: render Count random charts onto a surface, one at a time
//  2. Export: snapshot every chart, convert its SVG and assemble a .docx
//
// This package holds the single source of truth for their defaults and
// validation, and a [Runner] that wires the steps to their collaborators.
//
// # Usage
//
//	runner := pipeline.NewRunner(surface.NewMemory(), nil, nil, logger)
//	opts := pipeline.Options{Count: 25}
//	handles, err := runner.Generate(ctx, opts, nil)
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Export(ctx, handles, opts, nil)
package pipeline

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdeck/pkg/batch"
	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/raster"
	"github.com/matzehuels/chartdeck/pkg/svgfont"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, TUI, and Server
// =============================================================================

const (
	// MinAmount and MaxAmount bound the number of charts per batch.
	MinAmount = 1
	MaxAmount = 500

	// DefaultCount is the batch size when none is given.
	DefaultCount = 10

	// DefaultDelay is the pause after each rendered chart.
	DefaultDelay = batch.DefaultDelay

	// NoDelay turns the pause off. A zero Delay selects DefaultDelay.
	NoDelay time.Duration = -1

	// DefaultWidth and DefaultHeight are the natural chart size in pixels.
	DefaultWidth  = chart.DefaultWidth
	DefaultHeight = chart.DefaultHeight

	// DefaultBasePx is the font size em/rem resolve against on export.
	DefaultBasePx = svgfont.DefaultBasePx

	// DefaultScale is the raster snapshot scale.
	DefaultScale = raster.DefaultScale

	// DefaultRaster is the raster backend.
	DefaultRaster = raster.BackendNative

	// DefaultFilename is the document base name.
	DefaultFilename = export.DefaultFilename
)

// MsgInvalidAmount is shown when the requested amount is rejected.
const MsgInvalidAmount = "Voer een geldig aantal in tussen 1 en 500"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a generate/export run.
type Options struct {
	// Generate options
	Count  int           `json:"count"`
	Delay  time.Duration `json:"delay,omitempty"`
	Kinds  []string      `json:"kinds,omitempty"`
	Width  int           `json:"width,omitempty"`
	Height int           `json:"height,omitempty"`
	Seed   uint64        `json:"seed,omitempty"` // 0 draws a fresh random stream

	// Export options
	BasePx    float64 `json:"base_px,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
	Raster    string  `json:"raster,omitempty"`
	Filename  string  `json:"filename,omitempty"`
	OutputDir string  `json:"output_dir,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateAmount checks that n lies in [MinAmount, MaxAmount].
func ValidateAmount(n int) error {
	if n < MinAmount || n > MaxAmount {
		return errors.New(errors.ErrCodeInvalidAmount, MsgInvalidAmount)
	}
	return nil
}

// ParseAmount parses and validates a user-entered amount.
func ParseAmount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidAmount, err, MsgInvalidAmount)
	}
	if err := ValidateAmount(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ClampAmount pulls n into [MinAmount, MaxAmount]. Input fields apply it on
// every change, so typing 10000 shows 500.
func ClampAmount(n int) int {
	return max(MinAmount, min(MaxAmount, n))
}

// ExplicitDelay converts a delay the user set on purpose into an Options
// value, so that zero means no pause instead of the default.
func ExplicitDelay(d time.Duration) time.Duration {
	if d == 0 {
		return NoDelay
	}
	return d
}

// ValidateRaster checks that a raster backend name is known.
func ValidateRaster(name string) error {
	_, err := raster.New(name, DefaultScale)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// SetGenerateDefaults sets default values for generating charts.
func (o *Options) SetGenerateDefaults() {
	if o.Delay == 0 {
		o.Delay = DefaultDelay
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForGenerate validates and sets defaults for generating charts.
func (o *Options) ValidateForGenerate() error {
	o.SetGenerateDefaults()
	if err := ValidateAmount(o.Count); err != nil {
		return err
	}
	if o.Delay < 0 && o.Delay != NoDelay {
		return errors.New(errors.ErrCodeInvalidArgument, "delay cannot be negative")
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "invalid chart size %dx%d", o.Width, o.Height)
	}
	_, err := o.ChartKinds()
	return err
}

// SetExportDefaults sets default values for exporting.
func (o *Options) SetExportDefaults() {
	if o.BasePx == 0 {
		o.BasePx = DefaultBasePx
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Raster == "" {
		o.Raster = DefaultRaster
	}
	if o.Filename == "" {
		o.Filename = DefaultFilename
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForExport validates and sets defaults for exporting.
func (o *Options) ValidateForExport() error {
	o.SetExportDefaults()
	if o.BasePx < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "base font size cannot be negative")
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "scale cannot be negative")
	}
	if err := ValidateRaster(o.Raster); err != nil {
		return err
	}
	return errors.ValidateFilename(o.Filename)
}

// ChartKinds parses Kinds. An empty list allows every kind.
func (o *Options) ChartKinds() ([]chart.Kind, error) {
	return chart.ParseKinds(o.Kinds)
}
