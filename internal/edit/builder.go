package edit

import "github.com/tordrt/reldiagram/internal/schema"

type columnEdit func([]schema.ForeignKey) []schema.ForeignKey

// builder collects foreign key edits per column and materializes them into
// a new collection. Schemas, tables and columns on the path to an edited
// column are copied; everything else is shared with the base collection.
// Foreign key slices of edited columns are always freshly allocated.
type builder struct {
	base  []schema.Schema
	edits map[schema.ColumnRef][]columnEdit
}

func newBuilder(base []schema.Schema) *builder {
	return &builder{base: base, edits: make(map[schema.ColumnRef][]columnEdit)}
}

// addForeignKey appends an unconstrained foreign key from local to foreign
func (b *builder) addForeignKey(local, foreign schema.ColumnRef) {
	b.edits[local] = append(b.edits[local], func(fks []schema.ForeignKey) []schema.ForeignKey {
		return append(fks, schema.ForeignKey{
			ForeignSchemaName: foreign.SchemaName,
			ForeignTableName:  foreign.TableName,
			ForeignColumnName: foreign.ColumnName,
			Constrained:       false,
		})
	})
}

// removeForeignKey drops every foreign key on local that targets foreign
func (b *builder) removeForeignKey(local, foreign schema.ColumnRef) {
	b.edits[local] = append(b.edits[local], func(fks []schema.ForeignKey) []schema.ForeignKey {
		kept := fks[:0]
		for _, fk := range fks {
			if fk.Target() != foreign {
				kept = append(kept, fk)
			}
		}
		return kept
	})
}

func (b *builder) build() []schema.Schema {
	out := make([]schema.Schema, len(b.base))
	copy(out, b.base)
	if len(b.edits) == 0 {
		return out
	}

	for si := range out {
		s := &out[si]
		var tables []schema.Table
		for ti, t := range s.Tables {
			var columns []schema.Column
			for ci, c := range t.Columns {
				edits := b.edits[schema.ColumnRef{SchemaName: s.Name, TableName: t.Name, ColumnName: c.Name}]
				if len(edits) == 0 {
					continue
				}
				if columns == nil {
					columns = append([]schema.Column(nil), t.Columns...)
				}
				fks := make([]schema.ForeignKey, len(c.ForeignKeys), len(c.ForeignKeys)+1)
				copy(fks, c.ForeignKeys)
				for _, edit := range edits {
					fks = edit(fks)
				}
				columns[ci].ForeignKeys = fks
			}
			if columns == nil {
				continue
			}
			if tables == nil {
				tables = append([]schema.Table(nil), s.Tables...)
			}
			tables[ti].Columns = columns
		}
		if tables != nil {
			s.Tables = tables
		}
	}
	return out
}
