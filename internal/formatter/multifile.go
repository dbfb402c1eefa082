package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/reldiagram/internal/diagram"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// MultiFileFormatter writes the diagram to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file plus one file per table
func (f *MultiFileFormatter) Format(d *diagram.Diagram) error {
	if f.OutputFormat != formatMarkdown && f.OutputFormat != formatText {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", f.OutputFormat)
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(d); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, node := range d.Nodes {
		if err := f.writeNodeFile(node); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", node.ID, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeOverview(d *diagram.Diagram) error {
	filename := filepath.Join(f.OutputDir, "_overview"+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	// Sort tables alphabetically
	nodes := make([]diagram.Node, len(d.Nodes))
	copy(nodes, d.Nodes)
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})

	if f.OutputFormat == formatMarkdown {
		writeMarkdownOverview(file, nodes, f.getFileExtension())
	} else {
		writeTextOverview(file, nodes, f.getFileExtension())
	}
	return nil
}

func writeMarkdownOverview(w io.Writer, nodes []diagram.Node, ext string) {
	_, _ = fmt.Fprintf(w, "# Diagram Overview\n\n")
	_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<schema>.<table>%s`\n\n", ext)
	_, _ = fmt.Fprintf(w, "## Tables\n\n")

	for _, node := range nodes {
		_, _ = fmt.Fprintf(w, "- **%s** (tier %d)", node.ID, node.Tier)
		if targets := referencedTables(node); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintln(w)
	}
}

func writeTextOverview(w io.Writer, nodes []diagram.Node, ext string) {
	_, _ = fmt.Fprintf(w, "DIAGRAM OVERVIEW\n")
	_, _ = fmt.Fprintf(w, "Each table has a file: <schema>.<table>%s\n\n", ext)

	for _, node := range nodes {
		_, _ = fmt.Fprintf(w, "%s", node.ID)
		if targets := referencedTables(node); len(targets) > 0 {
			_, _ = fmt.Fprintf(w, " (references: %s)", strings.Join(targets, ","))
		}
		_, _ = fmt.Fprintln(w)
	}
}

// referencedTables lists the distinct tables a node points at, in column order
func referencedTables(node diagram.Node) []string {
	seen := make(map[string]bool)
	var targets []string
	for _, col := range node.Table.Columns {
		for _, fk := range col.ForeignKeys {
			id := fk.Target().Table().ID()
			if !seen[id] {
				seen[id] = true
				targets = append(targets, id)
			}
		}
	}
	return targets
}

func (f *MultiFileFormatter) writeNodeFile(node diagram.Node) error {
	filename := filepath.Join(f.OutputDir, node.ID+f.getFileExtension())

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if f.OutputFormat == formatMarkdown {
		return NewMarkdownFormatter(file).FormatNode(node)
	}
	return NewTextFormatter(file).FormatNode(node)
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}
