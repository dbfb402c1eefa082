package diagram

import "sort"

const (
	// DefaultStroke is the stroke of edges that are not highlighted
	DefaultStroke = "rgb(var(--react-erd__secondary-color))"

	edgeZIndex = 500
)

// HoverState tracks which node the pointer is over
type HoverState struct {
	hovered string
}

// Enter records that the pointer entered the node with the given id
func (h *HoverState) Enter(nodeID string) {
	h.hovered = nodeID
}

// Leave clears the hovered node
func (h *HoverState) Leave() {
	h.hovered = ""
}

// Hovered returns the hovered node id, or "" when none is
func (h *HoverState) Hovered() string {
	return h.hovered
}

// StyledEdge is an edge with its drawing attributes
type StyledEdge struct {
	Edge
	Highlighted bool   `json:"highlighted"`
	Stroke      string `json:"stroke"`
	StrokeWidth int    `json:"strokeWidth"`
	ZIndex      int    `json:"zIndex"`
}

// StyleEdges styles edges for the hovered node. Edges touching it are
// highlighted in the color of their target node and moved to the end so
// they are drawn on top; the relative order within each group is kept.
func StyleEdges(edges []Edge, nodes []Node, hovered string) []StyledEdge {
	colors := make(map[string]string, len(nodes))
	for _, n := range nodes {
		colors[n.ID] = n.Color
	}

	styled := make([]StyledEdge, len(edges))
	for i, e := range edges {
		s := StyledEdge{Edge: e, Stroke: DefaultStroke, StrokeWidth: 1, ZIndex: edgeZIndex}
		if hovered != "" && (e.SourceNode() == hovered || e.TargetNode() == hovered) {
			s.Highlighted = true
			s.Stroke = colors[e.TargetNode()]
			s.StrokeWidth = 2
		}
		styled[i] = s
	}

	sort.SliceStable(styled, func(i, j int) bool {
		return !styled[i].Highlighted && styled[j].Highlighted
	})
	return styled
}
