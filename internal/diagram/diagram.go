// Package diagram turns a schema collection into a laid-out entity
// relationship diagram: one node per table and one edge per foreign key.
//
// Nodes and edges are pure derivations of the schema collection and are
// recomputed in full whenever it changes.
package diagram

import "github.com/tordrt/reldiagram/internal/schema"

// DefaultColors is d3's schemeCategory10 followed by schemeTableau10
var DefaultColors = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// Diagram is the derived view of a schema collection
type Diagram struct {
	Nodes   []Node        `json:"nodes"`
	Edges   []Edge        `json:"edges"`
	Options LayoutOptions `json:"-"`
}

// Build derives nodes and edges from schemas. When colors is empty
// DefaultColors is used.
func Build(schemas []schema.Schema, colors []string, opts LayoutOptions) *Diagram {
	if len(colors) == 0 {
		colors = DefaultColors
	}
	opts = opts.withDefaults()
	return &Diagram{
		Nodes:   Layout(NewGraph(schemas), colors, opts),
		Edges:   Edges(schemas),
		Options: opts,
	}
}

// Node returns the node with the given id
func (d *Diagram) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given id
func (d *Diagram) Edge(id string) (Edge, bool) {
	for _, e := range d.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// OutgoingEdges returns the edges starting from the node with the given id
func (d *Diagram) OutgoingEdges(nodeID string) []Edge {
	var out []Edge
	for _, e := range d.Edges {
		if e.SourceNode() == nodeID {
			out = append(out, e)
		}
	}
	return out
}
