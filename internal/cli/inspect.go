package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/pkg/docx"
)

// inspectCommand creates the inspect command for exported documents.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file.docx]",
		Short: "List the sections and image encodings of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := docx.InspectFile(args[0])
			if err != nil {
				return err
			}
			printReport(args[0], report)
			if missing := countIncomplete(report); missing > 0 {
				return fmt.Errorf("%d images lack an SVG or PNG encoding", missing)
			}
			return nil
		},
	}
}

func printReport(path string, r *docx.Report) {
	printKeyValue("File", path)
	printKeyValue("Sections", fmt.Sprint(r.Sections))
	printKeyValue("Images", fmt.Sprint(len(r.Images)))
	fmt.Println()

	rows := make([][]string, len(r.Images))
	for i, img := range r.Images {
		both := StyleSuccess.Render(iconSuccess)
		if !img.HasBothEncodings() {
			both = StyleWarning.Render(iconWarning)
		}
		rows[i] = []string{
			fmt.Sprint(img.Section),
			img.Name,
			fmt.Sprintf("%dx%d", img.Width, img.Height),
			formatBytes(img.SVGSize),
			formatBytes(img.PNGSize),
			both,
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Section", "Name", "Extent", "SVG", "PNG", "Both").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Println(t.Render())
}

func countIncomplete(r *docx.Report) int {
	n := 0
	for _, img := range r.Images {
		if !img.HasBothEncodings() {
			n++
		}
	}
	return n
}
