package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tordrt/reldiagram/internal/diagram"
)

// Surface is what the diagram canvas consumes: positioned table nodes with
// their column handles, and styled edges between those handles
type Surface struct {
	Nodes []SurfaceNode `json:"nodes"`
	Edges []SurfaceEdge `json:"edges"`
}

type SurfaceNode struct {
	ID             string           `json:"id"`
	Type           string           `json:"type"`
	Position       diagram.Position `json:"position"`
	Data           SurfaceNodeData  `json:"data"`
	Width          float64          `json:"width"`
	Height         float64          `json:"height"`
	SourcePosition string           `json:"sourcePosition"`
	TargetPosition string           `json:"targetPosition"`
}

type SurfaceNodeData struct {
	ID                          string                      `json:"id"`
	Table                       diagram.TableWithSchemaName `json:"table"`
	ForeignKeysReferencingTable []diagram.Reference         `json:"foreignKeysReferencingTable"`
	Color                       string                      `json:"color"`
	Markers                     []diagram.ColumnMarker      `json:"markers"`
	Handles                     []diagram.Handle            `json:"handles"`
}

type SurfaceEdge struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	SourceHandle string    `json:"sourceHandle"`
	Target       string    `json:"target"`
	TargetHandle string    `json:"targetHandle"`
	Type         string    `json:"type"`
	Deletable    bool      `json:"deletable"`
	Style        EdgeStyle `json:"style"`
	ZIndex       int       `json:"zIndex"`
}

type EdgeStyle struct {
	Stroke      string `json:"stroke"`
	StrokeWidth int    `json:"strokeWidth"`
}

// Render builds the canvas view of d. hovered is the id of the node under
// the pointer, or ""; connecting tells whether a connection is being drawn.
func Render(d *diagram.Diagram, hovered string, connecting bool) Surface {
	surface := Surface{
		Nodes: make([]SurfaceNode, len(d.Nodes)),
		Edges: make([]SurfaceEdge, 0, len(d.Edges)),
	}

	for i, node := range d.Nodes {
		refs := node.ForeignKeysReferencingTable
		if refs == nil {
			refs = []diagram.Reference{}
		}
		surface.Nodes[i] = SurfaceNode{
			ID:       node.ID,
			Type:     "table",
			Position: node.Position,
			Data: SurfaceNodeData{
				ID:                          node.ID,
				Table:                       node.Table,
				ForeignKeysReferencingTable: refs,
				Color:                       node.Color,
				Markers:                     node.Markers,
				Handles:                     diagram.Handles(node, d.Options.RowHeight, connecting),
			},
			Width:          node.Width,
			Height:         node.Height,
			SourcePosition: "left",
			TargetPosition: "right",
		}
	}

	for _, e := range diagram.StyleEdges(d.Edges, d.Nodes, hovered) {
		surface.Edges = append(surface.Edges, SurfaceEdge{
			ID:           e.ID,
			Source:       e.SourceNode(),
			SourceHandle: e.Source.ColumnName,
			Target:       e.TargetNode(),
			TargetHandle: e.Target.ColumnName,
			Type:         "betweenTables",
			Deletable:    e.Deletable,
			Style:        EdgeStyle{Stroke: e.Stroke, StrokeWidth: e.StrokeWidth},
			ZIndex:       e.ZIndex,
		})
	}

	return surface
}

// RenderFormatter writes the canvas view as indented JSON
type RenderFormatter struct {
	writer     io.Writer
	Hovered    string
	Connecting bool
}

// NewRenderFormatter creates a new JSON render formatter
func NewRenderFormatter(w io.Writer) *RenderFormatter {
	return &RenderFormatter{writer: w}
}

func (f *RenderFormatter) Format(d *diagram.Diagram) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Render(d, f.Hovered, f.Connecting)); err != nil {
		return fmt.Errorf("failed to encode diagram: %w", err)
	}
	return nil
}
