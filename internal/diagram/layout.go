package diagram

import "github.com/tordrt/reldiagram/internal/schema"

const (
	DefaultTierWidth = 350
	DefaultRowHeight = 21
	DefaultPadding   = 25
	DefaultNodeWidth = 250
)

// LayoutOptions controls node spacing
type LayoutOptions struct {
	// TierWidth is the horizontal distance between dependency tiers
	TierWidth float64
	// RowHeight is the height of the title row and of every column row
	RowHeight float64
	// Padding is the vertical gap kept below every node
	Padding float64
	// NodeWidth is the rendered width of a table box
	NodeWidth float64
}

// DefaultLayoutOptions returns the standard spacing
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		TierWidth: DefaultTierWidth,
		RowHeight: DefaultRowHeight,
		Padding:   DefaultPadding,
		NodeWidth: DefaultNodeWidth,
	}
}

func (o LayoutOptions) withDefaults() LayoutOptions {
	d := DefaultLayoutOptions()
	if o.TierWidth <= 0 {
		o.TierWidth = d.TierWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = d.RowHeight
	}
	if o.Padding <= 0 {
		o.Padding = d.Padding
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	return o
}

// Position is the top-left corner of a node
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a placed table
type Node struct {
	ID       string   `json:"id"`
	Tier     int      `json:"tier"`
	Position Position `json:"position"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Color    string   `json:"color"`

	Table                       TableWithSchemaName `json:"table"`
	ForeignKeysReferencingTable []Reference         `json:"foreignKeysReferencingTable"`
	Markers                     []ColumnMarker      `json:"markers"`
}

// Ref returns the reference of the node's table
func (n Node) Ref() schema.TableRef {
	return n.Table.Ref()
}

// Bottom returns the y coordinate of the node's lower edge
func (n Node) Bottom() float64 {
	return n.Position.Y + n.Height
}

// frame is one tier of the depth-first placement: the tables still to visit
// in that tier and the running bottom of everything placed from it so far
type frame struct {
	tier   int
	queue  []int
	next   int
	bottom float64

	// the node most recently placed from this frame, whose children are
	// being laid out in the frame above it on the stack
	placedY      float64
	placedHeight float64
}

// Layout assigns every table of g a tier and a vertical slot. Tables with no
// outgoing foreign keys form tier 0; the tables referencing a node are laid
// out in the next tier, starting level with it. Each table is placed once,
// by the first path that reaches it. Tables that no root reaches (cycles,
// self references) seed additional passes below everything placed before.
// Colors are assigned cyclically in placement order.
func Layout(g *Graph, colors []string, opts LayoutOptions) []Node {
	opts = opts.withDefaults()
	l := &layouter{
		graph:  g,
		colors: colors,
		opts:   opts,
		placed: make([]bool, len(g.Tables)),
		nodes:  make([]Node, 0, len(g.Tables)),
	}

	var roots []int
	for i := range g.Tables {
		if g.IsRoot(i) {
			roots = append(roots, i)
		}
	}
	bottom := l.place(roots, 0)

	for i := range g.Tables {
		if !l.placed[i] {
			bottom = l.place([]int{i}, bottom)
		}
	}
	return l.nodes
}

type layouter struct {
	graph  *Graph
	colors []string
	opts   LayoutOptions
	placed []bool
	nodes  []Node
}

// place lays out tables as tier 0 starting at y and returns the bottom of
// everything it placed, or y when nothing was placed
func (l *layouter) place(tables []int, y float64) float64 {
	stack := []*frame{{tier: 0, queue: tables, bottom: y}}
	var childBottom float64
	returning := false

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if returning {
			f.bottom = max(f.placedY+f.placedHeight+l.opts.Padding, childBottom)
			returning = false
		}

		for f.next < len(f.queue) && l.placed[f.queue[f.next]] {
			f.next++
		}
		if f.next == len(f.queue) {
			stack = stack[:len(stack)-1]
			childBottom = f.bottom
			returning = true
			continue
		}

		i := f.queue[f.next]
		f.next++
		f.placedY = f.bottom
		f.placedHeight = l.height(i)
		l.add(i, f.tier, f.placedY, f.placedHeight)

		stack = append(stack, &frame{
			tier:   f.tier + 1,
			queue:  l.graph.Children(i),
			bottom: f.placedY,
		})
	}
	return childBottom
}

func (l *layouter) height(i int) float64 {
	return l.opts.RowHeight + l.opts.RowHeight*float64(len(l.graph.Tables[i].Columns))
}

func (l *layouter) add(i, tier int, y, height float64) {
	t := l.graph.Tables[i]
	color := ""
	if len(l.colors) > 0 {
		color = l.colors[len(l.nodes)%len(l.colors)]
	}
	l.placed[i] = true
	l.nodes = append(l.nodes, Node{
		ID:   t.Ref().ID(),
		Tier: tier,
		Position: Position{
			X: float64(tier+1) * l.opts.TierWidth,
			Y: y,
		},
		Width:                       l.opts.NodeWidth,
		Height:                      height,
		Color:                       color,
		Table:                       t,
		ForeignKeysReferencingTable: l.graph.Incoming(i),
		Markers:                     Markers(t.Table),
	})
}
