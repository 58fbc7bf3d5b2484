package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/config"
	"github.com/matzehuels/chartdeck/pkg/observability"
)

// persistentPreRun runs before every command: it applies --verbose, loads the
// config file and attaches the logger to the command context.
func (c *CLI) persistentPreRun(cmd *cobra.Command, args []string) error {
	level := LogInfo
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}

	if c.verbose {
		c.registerHooks()
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// registerHooks routes batch and export events to the debug log.
func (c *CLI) registerHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetBatchHooks(h)
	observability.SetExportHooks(h)
}
