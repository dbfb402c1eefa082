package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/reldiagram/internal/schema"
)

// SchemaExtractor reads one database schema into the diagram's schema model
type SchemaExtractor interface {
	// ExtractSchema extracts the given tables, or every table when tables
	// is empty
	ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error)
}

// foreignKeyColumn is one column pair of a foreign key constraint as the
// database catalog reports it
type foreignKeyColumn struct {
	column        string
	foreignSchema string
	foreignTable  string
	foreignColumn string
}

// newColumn builds a column from its catalog name and SQL type
func newColumn(name, sqlType string) schema.Column {
	return schema.Column{
		Name:        name,
		Type:        schema.ClassifyType(sqlType),
		ForeignKeys: []schema.ForeignKey{},
	}
}

// attachForeignKeys adds every catalog foreign key to the column that holds
// it. Keys read from a database are enforced there, so they are constrained.
func attachForeignKeys(columns []schema.Column, fks []foreignKeyColumn) {
	for _, fk := range fks {
		for i := range columns {
			if columns[i].Name != fk.column {
				continue
			}
			columns[i].ForeignKeys = append(columns[i].ForeignKeys, schema.ForeignKey{
				ForeignSchemaName: fk.foreignSchema,
				ForeignTableName:  fk.foreignTable,
				ForeignColumnName: fk.foreignColumn,
				Constrained:       true,
			})
			break
		}
	}
}

// extractTables runs extract for every table name, keeping their order
func extractTables(ctx context.Context, names []string, extract func(context.Context, string) (*schema.Table, error)) ([]schema.Table, error) {
	tables := make([]schema.Table, 0, len(names))
	for _, name := range names {
		table, err := extract(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		tables = append(tables, *table)
	}
	return tables, nil
}

// quoteIdent quotes an identifier for statements that cannot take it as a
// bound parameter
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
