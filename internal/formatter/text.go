package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/reldiagram/internal/diagram"
)

// Formatter writes a laid-out diagram in one output format
type Formatter interface {
	Format(d *diagram.Diagram) error
}

// TextFormatter formats the diagram as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every node in placement order
func (f *TextFormatter) Format(d *diagram.Diagram) error {
	for i, node := range d.Nodes {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}

		if err := f.formatNode(node); err != nil {
			return err
		}
	}
	return nil
}

// FormatNode formats a single table (exported for use by multifile formatter)
func (f *TextFormatter) FormatNode(node diagram.Node) error {
	return f.formatNode(node)
}

func (f *TextFormatter) formatNode(node diagram.Node) error {
	pkStr := ""
	if len(node.Table.PrimaryKey) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(node.Table.PrimaryKey, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", node.ID, pkStr)
	_, _ = fmt.Fprintf(f.writer, "  tier %d at (%g, %g), %gx%g, color %s\n",
		node.Tier, node.Position.X, node.Position.Y, node.Width, node.Height, colorOrNone(node.Color))

	for i, col := range node.Table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s: %s%s\n", col.Name, col.Type, markerSuffix(node.Markers[i]))
	}

	var relations []string
	for _, col := range node.Table.Columns {
		for _, fk := range col.ForeignKeys {
			relations = append(relations, fmt.Sprintf("%s → %s%s", col.Name, fk.Target().ID(), constraintSuffix(fk.Constrained)))
		}
	}
	if len(relations) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  RELATIONS:")
		for _, r := range relations {
			_, _ = fmt.Fprintf(f.writer, "    %s\n", r)
		}
	}

	if len(node.ForeignKeysReferencingTable) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  REFERENCED BY:")
		for _, ref := range node.ForeignKeysReferencingTable {
			_, _ = fmt.Fprintf(f.writer, "    %s → %s%s\n", ref.Local().ID(), ref.ForeignColumnName, constraintSuffix(ref.Constrained))
		}
	}

	return nil
}

func markerSuffix(m diagram.ColumnMarker) string {
	switch m {
	case diagram.MarkerPrimary:
		return " PK"
	case diagram.MarkerForeign:
		return " FK"
	case diagram.MarkerPrimaryForeign:
		return " PK FK"
	default:
		return ""
	}
}

func constraintSuffix(constrained bool) string {
	if constrained {
		return ""
	}
	return " (unconstrained)"
}

func colorOrNone(color string) string {
	if color == "" {
		return "none"
	}
	return color
}
