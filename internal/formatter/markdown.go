package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/reldiagram/internal/diagram"
)

// MarkdownFormatter formats the diagram as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the diagram in markdown format
func (f *MarkdownFormatter) Format(d *diagram.Diagram) error {
	_, _ = fmt.Fprintln(f.writer, "# Entity Relationship Diagram")
	_, _ = fmt.Fprintln(f.writer)

	for _, node := range d.Nodes {
		if err := f.formatNode(node); err != nil {
			return err
		}
	}
	return nil
}

// FormatNode formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatNode(node diagram.Node) error {
	return f.formatNode(node)
}

func (f *MarkdownFormatter) formatNode(node diagram.Node) error {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", node.ID)

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for i, col := range node.Table.Columns {
		if keys := markdownKeys(node.Markers[i]); keys != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, col.Type, keys)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, col.Type)
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	var references []string
	for _, col := range node.Table.Columns {
		for _, fk := range col.ForeignKeys {
			references = append(references, fmt.Sprintf("- %s → %s%s", col.Name, fk.Target().ID(), constraintSuffix(fk.Constrained)))
		}
	}
	if len(references) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, strings.Join(references, "\n"))
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(node.ForeignKeysReferencingTable) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Referenced by")
		_, _ = fmt.Fprintln(f.writer)
		for _, ref := range node.ForeignKeysReferencingTable {
			_, _ = fmt.Fprintf(f.writer, "- %s → %s%s\n", ref.Local().ID(), ref.ForeignColumnName, constraintSuffix(ref.Constrained))
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	return nil
}

func markdownKeys(m diagram.ColumnMarker) string {
	switch m {
	case diagram.MarkerPrimary:
		return "PK"
	case diagram.MarkerForeign:
		return "FK"
	case diagram.MarkerPrimaryForeign:
		return "PK, FK"
	default:
		return ""
	}
}
