// Package export converts rendered charts into a single Word document.
//
// For every chart, in render order, the exporter takes a PNG snapshot and
// the SVG with relative font sizes resolved to px. A chart for which either
// step fails is logged and left out; the remaining charts keep their
// relative order. The successful pairs are assembled by package docx.
package export

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdeck/pkg/cache"
	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/docx"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/observability"
	"github.com/matzehuels/chartdeck/pkg/raster"
	"github.com/matzehuels/chartdeck/pkg/svgfont"
)

// DefaultFilename is the document base name.
const DefaultFilename = "alle-grafieken"

// MsgNoCharts is shown when there is nothing to export.
const MsgNoCharts = "Er zijn geen grafieken om te exporteren."

// Progress is called after each chart with its 1-based position and the total.
type Progress func(position, total int)

// Result is a finished export.
type Result struct {
	Filename string // base name without extension
	Document *docx.Document
	Data     []byte
	Exported int
	Skipped  int
}

// Exporter runs the export pipeline.
type Exporter struct {
	snap     raster.Snapshotter
	basePx   float64
	cache    cache.Cache
	keyer    cache.Keyer
	logger   *log.Logger
	progress Progress
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithBasePx sets the font size em/rem resolve against.
func WithBasePx(px float64) Option {
	return func(e *Exporter) {
		if px > 0 {
			e.basePx = px
		}
	}
}

// WithCache reuses converted artifacts across exports.
func WithCache(c cache.Cache, k cache.Keyer) Option {
	return func(e *Exporter) {
		if c != nil {
			e.cache = c
		}
		if k != nil {
			e.keyer = k
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithProgress sets the progress callback.
func WithProgress(p Progress) Option {
	return func(e *Exporter) { e.progress = p }
}

// New creates an exporter around a snapshotter. A nil snapshotter selects
// the native backend.
func New(snap raster.Snapshotter, opts ...Option) *Exporter {
	if snap == nil {
		snap = &raster.Native{Scale: raster.DefaultScale}
	}
	e := &Exporter{
		snap:   snap,
		basePx: svgfont.DefaultBasePx,
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Collect converts every handle into a docx pair. Failed charts are skipped.
// On cancellation the pairs collected so far are returned with ctx.Err().
func (e *Exporter) Collect(ctx context.Context, handles []*chart.Handle) ([]docx.Pair, error) {
	hooks := observability.Export()
	pairs := make([]docx.Pair, 0, len(handles))

	for i, h := range handles {
		if err := ctx.Err(); err != nil {
			return pairs, err
		}

		p, step, err := e.convert(ctx, h)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return pairs, ctxErr
			}
			e.logger.Warn("chart skipped", "index", h.Index(), "step", step, "err", err)
			hooks.OnPairFailed(ctx, h.ID(), step, err)
		} else {
			pairs = append(pairs, p)
		}

		e.logger.Debug("export progress", "position", i+1, "total", len(handles))
		if e.progress != nil {
			e.progress(i+1, len(handles))
		}
	}
	return pairs, nil
}

// Export collects the handles and assembles the document.
func (e *Exporter) Export(ctx context.Context, handles []*chart.Handle, filename string) (*Result, error) {
	if filename == "" {
		filename = DefaultFilename
	}
	if err := errors.ValidateFilename(filename); err != nil {
		return nil, err
	}

	hooks := observability.Export()
	start := time.Now()
	hooks.OnExportStart(ctx, len(handles))

	res, err := e.export(ctx, handles, filename)
	exported, size := 0, 0
	if res != nil {
		exported, size = res.Exported, len(res.Data)
	}
	hooks.OnExportComplete(ctx, exported, size, time.Since(start), err)
	return res, err
}

func (e *Exporter) export(ctx context.Context, handles []*chart.Handle, filename string) (*Result, error) {
	if len(handles) == 0 {
		return nil, errors.New(errors.ErrCodeNoCharts, MsgNoCharts)
	}

	pairs, err := e.Collect(ctx, handles)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, errors.New(errors.ErrCodeNoCharts, MsgNoCharts)
	}

	docOpts := []docx.Option{docx.WithTitle(filename)}
	if el := handles[0].Element; el.Width > 0 && el.Height > 0 {
		docOpts = append(docOpts, docx.WithExtent(el.Width, el.Height))
	}
	doc, err := docx.Assemble(pairs, docOpts...)
	if err != nil {
		return nil, err
	}
	data, err := doc.Bytes()
	if err != nil {
		return nil, err
	}

	e.logger.Info("document assembled", "charts", len(pairs), "skipped", len(handles)-len(pairs), "bytes", len(data))
	return &Result{
		Filename: filename,
		Document: doc,
		Data:     data,
		Exported: len(pairs),
		Skipped:  len(handles) - len(pairs),
	}, nil
}

// convert produces the pair for one chart. step names the failing stage.
func (e *Exporter) convert(ctx context.Context, h *chart.Handle) (docx.Pair, string, error) {
	specHash := cache.HashValue(h.Chart.Spec)

	uri, err := e.cached(ctx, e.rasterKey(specHash, h), func() ([]byte, error) {
		uri, err := e.snap.Snapshot(ctx, h.Element)
		return []byte(uri), err
	})
	if err != nil {
		return docx.Pair{}, "raster", err
	}

	svg, err := e.cached(ctx, e.vectorKey(specHash, h), func() ([]byte, error) {
		return e.Vector(h)
	})
	if err != nil {
		return docx.Pair{}, "vector", err
	}

	return docx.Pair{Name: h.ID(), Raster: string(uri), Vector: svg}, "", nil
}

// Vector returns the chart's SVG with font sizes converted to px.
func (e *Exporter) Vector(h *chart.Handle) ([]byte, error) {
	var buf bytes.Buffer
	if err := h.Element.WriteSVG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeVectorFailed, err, "vector %s", h.ID())
	}
	return svgfont.ConvertFontSizes(buf.Bytes(), e.basePx)
}

func (e *Exporter) rasterKey(specHash string, h *chart.Handle) string {
	backend, scale := raster.Describe(e.snap)
	opts := cache.ArtifactKeyOpts{
		Format:  "png",
		Backend: backend,
		Scale:   scale,
		Width:   h.Element.Width,
		Height:  h.Element.Height,
	}
	return e.keyer.ArtifactKey(specHash, opts)
}

func (e *Exporter) vectorKey(specHash string, h *chart.Handle) string {
	return e.keyer.ArtifactKey(specHash, cache.ArtifactKeyOpts{
		Format: "svg",
		BasePx: e.basePx,
		Width:  h.Element.Width,
		Height: h.Element.Height,
	})
}

func (e *Exporter) cached(ctx context.Context, key string, fn func() ([]byte, error)) ([]byte, error) {
	if data, hit, err := e.cache.Get(ctx, key); err == nil && hit {
		return data, nil
	} else if err != nil {
		e.logger.Debug("cache read failed", "err", err)
	}

	data, err := fn()
	if err != nil {
		return nil, err
	}
	if err := e.cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		e.logger.Debug("cache write failed", "err", err)
	}
	return data, nil
}
