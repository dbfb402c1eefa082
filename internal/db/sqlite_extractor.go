package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/tordrt/reldiagram/internal/schema"
)

// defaultSQLiteSchema is the name SQLite gives the main database file
const defaultSQLiteSchema = "main"

// SQLiteExtractor handles schema extraction from SQLite
type SQLiteExtractor struct {
	client     *SQLiteClient
	schemaName string
}

// NewSQLiteExtractor creates a new SQLite schema extractor. The extracted
// schema is named schemaName, "main" when empty.
func NewSQLiteExtractor(client *SQLiteClient, schemaName string) *SQLiteExtractor {
	if schemaName == "" {
		schemaName = defaultSQLiteSchema
	}
	return &SQLiteExtractor{
		client:     client,
		schemaName: schemaName,
	}
}

// ExtractSchema extracts the complete schema for specified tables
// If tables is empty, extracts all tables in the database
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	extracted, err := extractTables(ctx, tableNames, e.extractTable)
	if err != nil {
		return nil, err
	}

	return &schema.Schema{Name: e.schemaName, Tables: extracted}, nil
}

// getTableNames returns the list of tables to extract
func (e *SQLiteExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

// extractTable extracts all information for a single table
func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	columns, pk, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}

	fks, err := e.extractForeignKeys(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	attachForeignKeys(columns, fks)

	return &schema.Table{Name: tableName, PrimaryKey: pk, Columns: columns}, nil
}

// extractColumns extracts the columns of a table and its primary key, which
// PRAGMA table_info reports as each column's position in the key
func (e *SQLiteExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, schema.PrimaryKey, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	type keyPart struct {
		position int
		column   string
	}

	var columns []schema.Column
	var keyParts []keyPart

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, err
		}

		if pk > 0 {
			keyParts = append(keyParts, keyPart{position: pk, column: name})
		}
		columns = append(columns, newColumn(name, colType))
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(keyParts, func(i, j int) bool { return keyParts[i].position < keyParts[j].position })
	var pk schema.PrimaryKey
	for _, p := range keyParts {
		pk = append(pk, p.column)
	}

	return columns, pk, nil
}

// extractForeignKeys extracts foreign key column pairs. A foreign key that
// names no target column references the target table's primary key.
func (e *SQLiteExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]foreignKeyColumn, error) {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	type implicitTarget struct {
		index int
		seq   int
	}

	var fks []foreignKeyColumn
	var implicit []implicitTarget

	for rows.Next() {
		var id, seq int
		var targetTable, fromCol, onUpdate, onDelete, match string
		var toCol sql.NullString

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			rows.Close()
			return nil, err
		}

		if !toCol.Valid {
			implicit = append(implicit, implicitTarget{index: len(fks), seq: seq})
		}
		fks = append(fks, foreignKeyColumn{
			column:        fromCol,
			foreignSchema: e.schemaName,
			foreignTable:  targetTable,
			foreignColumn: toCol.String,
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, t := range implicit {
		fk := &fks[t.index]
		_, pk, err := e.extractColumns(ctx, fk.foreignTable)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve primary key of %s: %w", fk.foreignTable, err)
		}
		if t.seq < len(pk) {
			fk.foreignColumn = pk[t.seq]
		}
	}

	return fks, nil
}
