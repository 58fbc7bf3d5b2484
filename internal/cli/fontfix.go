package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/svgfont"
)

// fontfixCommand creates the fontfix command, which runs the vector
// post-processor on an SVG file.
func (c *CLI) fontfixCommand() *cobra.Command {
	var (
		output string
		basePx float64
	)

	cmd := &cobra.Command{
		Use:   "fontfix [file.svg]",
		Short: "Convert em/rem font sizes in an SVG to px",
		Long: `Convert em/rem font sizes in an SVG to px.

Word and most rasterizers ignore relative font sizes. fontfix rewrites every
font-size attribute and every font-size declaration inside a style attribute
from em or rem to px, using --base-px as the size of 1em. Other values are left
alone. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFontfix(args[0], output, basePx)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().Float64Var(&basePx, "base-px", svgfont.DefaultBasePx, "font size of 1em in px")

	return cmd
}

func (c *CLI) runFontfix(input, output string, basePx float64) error {
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	fixed, err := svgfont.ConvertFontSizes(data, basePx)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = os.Stdout.Write(fixed)
		return err
	}
	if err := os.WriteFile(output, fixed, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	c.Logger.Debug("font sizes converted", "input", input, "output", output, "base_px", basePx)
	printSuccess("Wrote %s", output)
	return nil
}
