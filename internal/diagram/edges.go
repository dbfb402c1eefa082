package diagram

import "github.com/tordrt/reldiagram/internal/schema"

// Edge is one foreign key drawn between two column handles
type Edge struct {
	ID        string           `json:"id"`
	Source    schema.ColumnRef `json:"source"`
	Target    schema.ColumnRef `json:"target"`
	Deletable bool             `json:"deletable"`
}

// EdgeID returns the identifier of the edge from local to foreign
func EdgeID(local, foreign schema.ColumnRef) string {
	return local.ID() + ":" + foreign.ID()
}

// SourceNode returns the id of the node the edge starts from
func (e Edge) SourceNode() string { return e.Source.Table().ID() }

// TargetNode returns the id of the node the edge points at
func (e Edge) TargetNode() string { return e.Target.Table().ID() }

// ForeignKey describes the edge as a SpecifiedForeignKey
func (e Edge) ForeignKey() schema.SpecifiedForeignKey {
	return schema.Specify(e.Source, e.Target)
}

// Edges derives one edge per foreign key in the collection
func Edges(schemas []schema.Schema) []Edge {
	var edges []Edge
	for _, s := range schemas {
		for _, t := range s.Tables {
			for _, c := range t.Columns {
				local := schema.ColumnRef{SchemaName: s.Name, TableName: t.Name, ColumnName: c.Name}
				for _, fk := range c.ForeignKeys {
					edges = append(edges, Edge{
						ID:        EdgeID(local, fk.Target()),
						Source:    local,
						Target:    fk.Target(),
						Deletable: !fk.Constrained,
					})
				}
			}
		}
	}
	return edges
}
