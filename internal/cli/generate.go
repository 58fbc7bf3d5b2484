package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/chart"
	"github.com/matzehuels/chartdeck/pkg/export"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/raster"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// generateFlags holds the command-line flags for the generate command.
type generateFlags struct {
	count     int
	delay     time.Duration
	kinds     string
	width     int
	height    int
	seed      uint64
	basePx    float64
	scale     float64
	raster    string
	filename  string
	outputDir string
	svgDir    string
	cacheDir  string
	noCache   bool
}

// generateCommand creates the generate command: render a batch and export it.
func (c *CLI) generateCommand() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render random charts and export them to a Word document",
		Long: `Render a batch of random charts and export them to a Word document.

Every chart gets its own page in the document, embedded once as SVG with a
PNG fallback for viewers without vector support. Charts whose conversion
fails are skipped; the rest keep their order.

Values not given as flags come from the config file, then from built-in
defaults.`,
		Example: `  chartdeck generate -n 25
  chartdeck generate -n 5 --kinds line,spline --raster oksvg -o out/
  chartdeck generate -n 3 --seed 42 --svg-dir svg/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.generateOptions(cmd, f)
			return c.runGenerate(cmd.Context(), opts, f)
		},
	}

	cmd.Flags().IntVarP(&f.count, "count", "n", pipeline.DefaultCount, fmt.Sprintf("number of charts (%d-%d)", pipeline.MinAmount, pipeline.MaxAmount))
	cmd.Flags().DurationVar(&f.delay, "delay", pipeline.DefaultDelay, "pause after each chart")
	cmd.Flags().StringVar(&f.kinds, "kinds", "", "allowed chart kinds, comma-separated (default all: "+chart.KindNames()+")")
	cmd.Flags().IntVar(&f.width, "width", pipeline.DefaultWidth, "chart width in pixels")
	cmd.Flags().IntVar(&f.height, "height", pipeline.DefaultHeight, "chart height in pixels")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed for reproducible charts (0 = random)")
	cmd.Flags().Float64Var(&f.basePx, "base-px", pipeline.DefaultBasePx, "font size that em/rem resolve against")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "raster scale factor")
	cmd.Flags().StringVar(&f.raster, "raster", pipeline.DefaultRaster, "raster backend: "+strings.Join(raster.Backends, ", "))
	cmd.Flags().StringVar(&f.filename, "filename", pipeline.DefaultFilename, "document name without extension")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", ".", "output directory")
	cmd.Flags().StringVar(&f.svgDir, "svg-dir", "", "also write each chart's SVG into this directory")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "conversion cache directory")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the conversion cache")

	return cmd
}

// generateOptions layers explicitly set flags over the config file.
func (c *CLI) generateOptions(cmd *cobra.Command, f generateFlags) pipeline.Options {
	opts := c.baseOptions()
	changed := cmd.Flags().Changed

	if changed("count") || opts.Count == 0 {
		opts.Count = f.count
	}
	if changed("delay") {
		opts.Delay = pipeline.ExplicitDelay(f.delay)
	}
	if changed("kinds") {
		opts.Kinds = splitList(f.kinds)
	}
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("base-px") {
		opts.BasePx = f.basePx
	}
	if changed("scale") {
		opts.Scale = f.scale
	}
	if changed("raster") {
		opts.Raster = f.raster
	}
	if changed("filename") {
		opts.Filename = f.filename
	}
	if changed("output") {
		opts.OutputDir = f.outputDir
	}
	opts.Seed = f.seed
	return opts
}

// runGenerate renders, exports and saves one batch.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, f generateFlags) error {
	// Fail fast on export settings before spending time on rendering.
	if err := opts.ValidateForExport(); err != nil {
		return err
	}

	runner, err := c.newRunner(surface.NewMemory(), nil, f.cacheDir, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Cache.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Laden van grafieken")
	spinner.Start()
	handles, err := runner.Generate(ctx, opts, func(done, total int) {
		spinner.SetMessage(progressLine("Laden van grafiek nr.", done, total))
	})
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Rendered %d charts", len(handles)))

	if f.svgDir != "" {
		if err := writeSVGs(f.svgDir, handles, opts.BasePx); err != nil {
			return err
		}
	}

	prog = newProgress(c.Logger)
	spinner = newSpinnerWithContext(ctx, "Afbeeldingen genereren")
	spinner.Start()
	res, err := runner.Export(ctx, handles, opts, func(done, total int) {
		spinner.SetMessage(progressLine("Afbeelding generen van grafiek nr.", done, total))
	})
	if err != nil {
		spinner.StopWithError("Export failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Converted %d charts", res.Exported))

	path, err := runner.Save(res, opts)
	if err != nil {
		return err
	}

	printSuccess("Document written")
	printFile(path)
	printExportStats(res.Exported, res.Skipped, len(res.Data))
	if res.Skipped > 0 {
		printWarning("%d charts could not be converted; run with --verbose for details", res.Skipped)
	}
	printNextStep("Inspect it", "chartdeck inspect "+path)
	return nil
}

// writeSVGs writes the post-processed vector output of every chart to dir.
func writeSVGs(dir string, handles []*chart.Handle, basePx float64) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	ex := export.New(nil, export.WithBasePx(basePx))
	for _, h := range handles {
		data, err := ex.Vector(h)
		if err != nil {
			printWarning("skipping %s: %v", h.ID(), err)
			continue
		}
		path := filepath.Join(dir, h.ID()+".svg")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
