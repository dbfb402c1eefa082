package diagram

import "github.com/tordrt/reldiagram/internal/schema"

// ColumnMarker tells which key icon a column row carries
type ColumnMarker int

const (
	MarkerPlain ColumnMarker = iota
	MarkerPrimary
	MarkerForeign
	MarkerPrimaryForeign
)

func (m ColumnMarker) String() string {
	switch m {
	case MarkerPrimary:
		return "primary"
	case MarkerForeign:
		return "foreign"
	case MarkerPrimaryForeign:
		return "primaryForeign"
	default:
		return "plain"
	}
}

func (m ColumnMarker) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// MarkerFor derives the marker of one column. Only constrained foreign keys
// count, since unconstrained ones exist only in the diagram.
func MarkerFor(table schema.Table, column schema.Column) ColumnMarker {
	foreign := false
	for _, fk := range column.ForeignKeys {
		if fk.Constrained {
			foreign = true
			break
		}
	}
	primary := table.PrimaryKey.Contains(column.Name)

	switch {
	case foreign && primary:
		return MarkerPrimaryForeign
	case foreign:
		return MarkerForeign
	case primary:
		return MarkerPrimary
	default:
		return MarkerPlain
	}
}

// Markers derives the marker of every column of table, in column order
func Markers(table schema.Table) []ColumnMarker {
	markers := make([]ColumnMarker, len(table.Columns))
	for i, c := range table.Columns {
		markers[i] = MarkerFor(table, c)
	}
	return markers
}

// Handle is a connection anchor on a column row. Every column has a source
// handle on the left and a target handle on the right, both named after
// the column.
type Handle struct {
	ID   string     `json:"id"`
	Type HandleType `json:"type"`
	// Top is the vertical offset of the handle inside the node
	Top float64 `json:"top"`
	// Active reports whether the handle currently accepts pointer events
	Active bool `json:"active"`
}

type HandleType string

const (
	HandleSource HandleType = "source"
	HandleTarget HandleType = "target"
)

// Handles returns the handles of node. While a connection is being drawn
// only target handles are active, otherwise only source handles are.
func Handles(node Node, rowHeight float64, connecting bool) []Handle {
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	handles := make([]Handle, 0, 2*len(node.Table.Columns))
	for i, c := range node.Table.Columns {
		top := rowHeight*1.5 + float64(i)*rowHeight + 5
		handles = append(handles,
			Handle{ID: c.Name, Type: HandleSource, Top: top, Active: !connecting},
			Handle{ID: c.Name, Type: HandleTarget, Top: top, Active: connecting},
		)
	}
	return handles
}
