package schema

import (
	"fmt"
	"strings"
)

// Ref joins the non-empty parts of an identifier with dots
func Ref(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

// TableRef identifies a table across the whole schema collection
type TableRef struct {
	SchemaName string `json:"schemaName"`
	TableName  string `json:"tableName"`
}

// ID returns the node identifier "schema.table"
func (r TableRef) ID() string {
	return Ref(r.SchemaName, r.TableName)
}

// Column returns a reference to one of the table's columns
func (r TableRef) Column(name string) ColumnRef {
	return ColumnRef{SchemaName: r.SchemaName, TableName: r.TableName, ColumnName: name}
}

// ColumnRef identifies one endpoint of a relationship
type ColumnRef struct {
	SchemaName string `json:"schemaName"`
	TableName  string `json:"tableName"`
	ColumnName string `json:"columnName"`
}

// ID returns "schema.table.column"
func (r ColumnRef) ID() string {
	return Ref(r.SchemaName, r.TableName, r.ColumnName)
}

// Table returns the owning table's reference
func (r ColumnRef) Table() TableRef {
	return TableRef{SchemaName: r.SchemaName, TableName: r.TableName}
}

func (r ColumnRef) String() string {
	return r.ID()
}

// ParseColumnRef parses "schema.table.column". The schema part may itself
// contain dots; table and column names may not.
func ParseColumnRef(s string) (ColumnRef, error) {
	col := strings.LastIndex(s, ".")
	if col <= 0 || col == len(s)-1 {
		return ColumnRef{}, fmt.Errorf("invalid column reference %q (want schema.table.column)", s)
	}
	tbl := strings.LastIndex(s[:col], ".")
	if tbl <= 0 || tbl == col-1 {
		return ColumnRef{}, fmt.Errorf("invalid column reference %q (want schema.table.column)", s)
	}
	return ColumnRef{
		SchemaName: s[:tbl],
		TableName:  s[tbl+1 : col],
		ColumnName: s[col+1:],
	}, nil
}
