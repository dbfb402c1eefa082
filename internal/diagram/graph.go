package diagram

import "github.com/tordrt/reldiagram/internal/schema"

// TableWithSchemaName is a table tagged with the schema that owns it
type TableWithSchemaName struct {
	schema.Table
	SchemaName string `json:"schemaName"`
}

// Ref returns the table's reference identifier
func (t TableWithSchemaName) Ref() schema.TableRef {
	return schema.TableRef{SchemaName: t.SchemaName, TableName: t.Name}
}

// Reference is a foreign key pointing at a table, together with the column
// that holds it
type Reference struct {
	schema.SpecifiedForeignKey
	Constrained bool `json:"constrained"`
}

// Graph is the flattened, reference-indexed view of a schema collection.
// Tables keep the collection's order; no sort is applied.
type Graph struct {
	Tables []TableWithSchemaName

	index    map[string]int
	incoming [][]Reference
	children [][]int
}

// NewGraph flattens schemas into a Graph. Foreign keys whose target is not in
// the collection are kept on their column but contribute no graph edge.
func NewGraph(schemas []schema.Schema) *Graph {
	g := &Graph{index: make(map[string]int)}
	for _, s := range schemas {
		for _, t := range s.Tables {
			g.index[schema.Ref(s.Name, t.Name)] = len(g.Tables)
			g.Tables = append(g.Tables, TableWithSchemaName{Table: t, SchemaName: s.Name})
		}
	}

	g.incoming = make([][]Reference, len(g.Tables))
	g.children = make([][]int, len(g.Tables))
	for i, t := range g.Tables {
		linked := make(map[int]bool)
		for _, c := range t.Columns {
			for _, fk := range c.ForeignKeys {
				target, ok := g.index[fk.Target().Table().ID()]
				if !ok {
					continue
				}
				g.incoming[target] = append(g.incoming[target], Reference{
					SpecifiedForeignKey: schema.Specify(t.Ref().Column(c.Name), fk.Target()),
					Constrained:         fk.Constrained,
				})
				if !linked[target] {
					linked[target] = true
					g.children[target] = append(g.children[target], i)
				}
			}
		}
	}
	return g
}

// Lookup returns the position of a table in Tables
func (g *Graph) Lookup(ref schema.TableRef) (int, bool) {
	i, ok := g.index[ref.ID()]
	return i, ok
}

// Incoming returns every foreign key across the collection that targets the
// table at position i
func (g *Graph) Incoming(i int) []Reference {
	return g.incoming[i]
}

// Children returns the positions of tables holding a foreign key to table i
func (g *Graph) Children(i int) []int {
	return g.children[i]
}

// IsRoot reports whether table i has no outgoing foreign keys at all
func (g *Graph) IsRoot(i int) bool {
	for _, c := range g.Tables[i].Columns {
		if len(c.ForeignKeys) > 0 {
			return false
		}
	}
	return true
}
