package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tordrt/reldiagram"
)

var (
	format         string
	outputDir      string
	hover          string
	splitThreshold int
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Lay out the diagram and write it in a chosen format",
	Args:  cobra.NoArgs,
	RunE:  runLayout,
}

func init() {
	layoutCmd.Flags().StringVarP(&format, "format", "f", reldiagram.FormatText, "Output format: text, markdown, mermaid or json")
	layoutCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output (text or markdown)")
	layoutCmd.Flags().StringVar(&hover, "hover", "", "Table to highlight in json output (schema.table)")
	layoutCmd.Flags().IntVar(&splitThreshold, "split-threshold", 0, "Split into multiple files when table count exceeds this (requires --output-dir)")
}

func runLayout(cmd *cobra.Command, args []string) error {
	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	schemas, err := readSchemas(cmd.Context())
	if err != nil {
		return err
	}
	d := reldiagram.BuildDiagram(schemas, parseTableList(colors), cfg.Layout.Options())

	shouldSplit := outputDir != "" && (splitThreshold == 0 || len(d.Nodes) > splitThreshold)
	if shouldSplit {
		if err := reldiagram.FormatDiagram(d, &reldiagram.OutputOptions{OutputDir: outputDir, Format: format}); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}

	return writeOutput(func(w io.Writer) error {
		err := reldiagram.FormatDiagram(d, &reldiagram.OutputOptions{Writer: w, Format: format, Hovered: hover})
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	})
}
