package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/reldiagram/internal/diagram"
)

// MermaidFormatter writes the diagram as a Mermaid erDiagram
type MermaidFormatter struct {
	writer io.Writer
}

// NewMermaidFormatter creates a new Mermaid formatter
func NewMermaidFormatter(w io.Writer) *MermaidFormatter {
	return &MermaidFormatter{writer: w}
}

// Format writes one entity per node and one relationship per edge.
// Unconstrained relationships are drawn with a dotted line.
func (f *MermaidFormatter) Format(d *diagram.Diagram) error {
	var sb strings.Builder
	sb.WriteString("erDiagram\n")

	for _, node := range d.Nodes {
		fmt.Fprintf(&sb, "    %s {\n", mermaidName(node.ID))
		for i, col := range node.Table.Columns {
			fmt.Fprintf(&sb, "        %s %s", col.Type, mermaidName(col.Name))
			if keys := markdownKeys(node.Markers[i]); keys != "" {
				fmt.Fprintf(&sb, " %s", keys)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("    }\n")
	}

	if len(d.Edges) > 0 {
		sb.WriteString("\n")
	}
	for _, e := range d.Edges {
		line := "||--o{"
		if e.Deletable {
			line = "||..o{"
		}
		fmt.Fprintf(&sb, "    %s %s %s : %q\n",
			mermaidName(e.TargetNode()), line, mermaidName(e.SourceNode()), e.Source.ColumnName)
	}

	_, err := io.WriteString(f.writer, sb.String())
	return err
}

// mermaidName maps an identifier onto the characters Mermaid accepts in
// entity and attribute names
func mermaidName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, id)
}
