// Package cli implements the chartdeck command-line interface.
//
// The commands share one [CLI] value that carries the logger, the loaded
// configuration file and the conversion cache settings.
//
// # Commands
//
//   - generate: render a batch of random charts and export them to .docx
//   - interactive: terminal UI with amount input, live progress and export
//   - serve: HTTP front-end with one session per browser
//   - fontfix: convert em/rem font sizes in an SVG file to px
//   - inspect: list the sections and image encodings of a .docx
//   - cache: manage the conversion cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports every batch and export event through the observability hooks.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/buildinfo"
	"github.com/matzehuels/chartdeck/pkg/cache"
	"github.com/matzehuels/chartdeck/pkg/config"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/raster"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "chartdeck"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: &config.Config{},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "chartdeck renders random charts and exports them to Word",
		Long:              `chartdeck renders batches of random charts and bundles them into a single .docx with a vector image and a raster fallback per chart.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.persistentPreRun,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/chartdeck/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.interactiveCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.fontfixCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner drawing onto s. snap may be nil to pick
// the raster backend from the options of each export.
func (c *CLI) newRunner(s surface.Surface, snap raster.Snapshotter, cacheDirFlag string, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(cacheDirFlag, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(s, snap, cc, c.Logger), nil
}

// newCache opens the file cache at dir, the configured cache_dir, or the XDG
// cache directory, in that order.
func (c *CLI) newCache(dir string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if dir == "" {
		dir = c.cacheDir()
	}
	if dir == "" {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("using file cache", "dir", fc.Dir())
	return fc, nil
}

// cacheDir returns the configured cache directory, or the XDG default.
// It returns "" when neither can be determined.
func (c *CLI) cacheDir() string {
	if c.Config.CacheDir != "" {
		return c.Config.CacheDir
	}
	dir, err := cacheDir()
	if err != nil {
		return ""
	}
	return dir
}

// baseOptions returns the pipeline options from the config file.
func (c *CLI) baseOptions() pipeline.Options {
	opts := c.Config.Options()
	opts.Logger = c.Logger
	return opts
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/chartdeck/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
