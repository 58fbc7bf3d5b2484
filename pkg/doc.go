// Package pkg provides the core libraries for chartdeck.
//
// # Overview
//
// chartdeck renders batches of random charts and bundles them into a single
// Word document, one chart per page, each embedded once as SVG with a PNG
// fallback. The pkg directory is organized into three areas:
//
//  1. Rendering - random data, charts and the surface they are drawn on
//  2. Export - vector post-processing, rasterization and document assembly
//  3. Orchestration - the pipeline runner, sessions and the HTTP front-end
//
// # Architecture
//
// The data flow through chartdeck:
//
//	amount (1-500)
//	     ↓
//	[batch] loop: [randdata] series → [chart] spec → [surface] element
//	     ↓
//	[export]: per chart, [raster] PNG snapshot + [svgfont] SVG post-processing
//	     ↓
//	[docx]: one section per chart, SVG primary with PNG fallback
//	     ↓
//	alle-grafieken.docx
//
// # Quick Start
//
//	runner := pipeline.NewRunner(surface.NewMemory(), nil, nil, logger)
//	opts := pipeline.Options{Count: 25}
//	handles, err := runner.Generate(ctx, opts, nil)
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Export(ctx, handles, opts, nil)
//	if err != nil {
//	    return err
//	}
//	path, err := runner.Save(res, opts)
//
// # Main Packages
//
// ## Rendering
//
// [randdata] - Uniform random integers and series with an injectable source.
//
// [chart] - Chart kinds, specs and rendering to SVG and PNG via go-chart.
//
// [surface] - The container charts are appended to, addressed by element ID.
//
// [batch] - The sequential render loop with a pause after every chart.
//
// ## Export
//
// [svgfont] - Rewrites em/rem font sizes to px.
//
// [raster] - PNG snapshot backends: native, rsvg-convert and oksvg.
//
// [docx] - Assembles and inspects the OOXML package.
//
// [export] - Collects conversion pairs, skipping failed charts, and assembles
// the document.
//
// ## Orchestration
//
// [pipeline] - Defaults, validation and the Runner shared by every front-end.
//
// [session] - Per-user chart state and the one-action-at-a-time Controller.
//
// [server] - The HTTP front-end.
//
// [cache] - Conversion cache backends (memory, file, Redis).
//
// [config] - The optional TOML configuration file.
//
// [observability] - Hooks for batch, export and HTTP events.
//
// [errors] - Error codes shared across packages.
//
// [randdata]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/randdata
// [chart]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/chart
// [surface]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/surface
// [batch]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/batch
// [svgfont]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/svgfont
// [raster]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/raster
// [docx]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/docx
// [export]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/export
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/chartdeck/pkg/errors
package pkg
