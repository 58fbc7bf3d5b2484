package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartdeck/pkg/batch"
	"github.com/matzehuels/chartdeck/pkg/cache"
	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/randdata"
	"github.com/matzehuels/chartdeck/pkg/raster"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// Runner wires the pipeline steps to their collaborators.
// Front-ends share one Runner per surface; it keeps no results itself.
type Runner struct {
	Surface     surface.Surface
	Snapshotter raster.Snapshotter // nil selects Options.Raster
	Pacer       batch.Pacer        // nil waits with a timer
	Cache       cache.Cache
	Keyer       cache.Keyer
	Logger      *log.Logger
}

// NewRunner creates a runner drawing onto s.
// If snap is nil, the backend is picked from the options of each export.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(s surface.Surface, snap raster.Snapshotter, c cache.Cache, logger *log.Logger) *Runner {
	if s == nil {
		s = surface.NewMemory()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Surface:     s,
		Snapshotter: snap,
		Cache:       c,
		Keyer:       cache.NewDefaultKeyer(),
		Logger:      logger,
	}
}

// Generate validates opts, clears the surface and renders a new batch.
// An invalid amount fails before the surface is touched.
func (r *Runner) Generate(ctx context.Context, opts Options, progress batch.Progress) ([]*chart.Handle, error) {
	opts.Logger = r.Logger
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, err
	}
	kinds, _ := opts.ChartKinds()

	gen := randdata.Default()
	if opts.Seed != 0 {
		gen = randdata.NewSeeded(opts.Seed)
	}
	renderer := chart.NewRenderer(
		chart.WithGenerator(gen),
		chart.WithSize(opts.Width, opts.Height),
	)

	r.Surface.Reset()

	start := time.Now()
	handles, err := batch.Render(ctx, r.Surface, batch.Options{
		Count: opts.Count,
		Delay: max(opts.Delay, 0),
		Kinds: kinds,
	},
		batch.WithRenderer(renderer),
		batch.WithPacer(r.Pacer),
		batch.WithLogger(r.Logger),
		batch.WithProgress(progress),
	)
	r.Logger.Info("rendered charts",
		"requested", opts.Count,
		"rendered", len(handles),
		"duration", time.Since(start))
	return handles, err
}

// Export converts handles into a document. The result is not written to
// disk; see Save.
func (r *Runner) Export(ctx context.Context, handles []*chart.Handle, opts Options, progress export.Progress) (*export.Result, error) {
	opts.Logger = r.Logger
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}

	snap := r.Snapshotter
	if snap == nil {
		var err error
		if snap, err = raster.New(opts.Raster, opts.Scale); err != nil {
			return nil, err
		}
	}

	ex := export.New(snap,
		export.WithBasePx(opts.BasePx),
		export.WithCache(r.Cache, r.Keyer),
		export.WithLogger(r.Logger),
		export.WithProgress(progress),
	)
	return ex.Export(ctx, handles, opts.Filename)
}

// Save writes an export result to opts.OutputDir and returns the path.
func (r *Runner) Save(res *export.Result, opts Options) (string, error) {
	opts.SetExportDefaults()
	return res.Document.Save(opts.OutputDir, res.Filename)
}
