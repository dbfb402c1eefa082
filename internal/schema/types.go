package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DataType is the display category of a column
type DataType string

const (
	TypeBinary       DataType = "binary"
	TypeNumber       DataType = "number"
	TypeBoolean      DataType = "boolean"
	TypeText         DataType = "text"
	TypeDatetime     DataType = "datetime"
	TypeHierarchical DataType = "hierarchical"
	TypeGeometric    DataType = "geometric"
	TypeMoney        DataType = "money"
	TypeOther        DataType = "other"
)

var dataTypes = map[DataType]bool{
	TypeBinary:       true,
	TypeNumber:       true,
	TypeBoolean:      true,
	TypeText:         true,
	TypeDatetime:     true,
	TypeHierarchical: true,
	TypeGeometric:    true,
	TypeMoney:        true,
	TypeOther:        true,
}

// Valid reports whether t is one of the known data types
func (t DataType) Valid() bool {
	return dataTypes[t]
}

// UnmarshalYAML rejects data types outside the closed enumeration
func (t *DataType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if !DataType(s).Valid() {
		return fmt.Errorf("line %d: unknown data type %q", value.Line, s)
	}
	*t = DataType(s)
	return nil
}

// Schema represents a named group of tables
type Schema struct {
	Name   string  `yaml:"name" json:"name"`
	Tables []Table `yaml:"tables" json:"tables"`
}

// Table represents a database table
type Table struct {
	Name       string     `yaml:"name" json:"name"`
	PrimaryKey PrimaryKey `yaml:"primaryKey" json:"primaryKey"`
	Columns    []Column   `yaml:"columns" json:"columns"`
}

// Column represents a table column
type Column struct {
	Name        string       `yaml:"name" json:"name"`
	Type        DataType     `yaml:"type" json:"type"`
	ForeignKeys []ForeignKey `yaml:"foreignKeys" json:"foreignKeys"`
}

// ForeignKey represents a reference from a column to another table's column.
// Constrained foreign keys are enforced by the source data and cannot be
// deleted through the editor.
type ForeignKey struct {
	ForeignSchemaName string `yaml:"foreignSchemaName" json:"foreignSchemaName"`
	ForeignTableName  string `yaml:"foreignTableName" json:"foreignTableName"`
	ForeignColumnName string `yaml:"foreignColumnName" json:"foreignColumnName"`
	Constrained       bool   `yaml:"constrained" json:"constrained"`
}

// Target returns the column the foreign key points at
func (fk ForeignKey) Target() ColumnRef {
	return ColumnRef{
		SchemaName: fk.ForeignSchemaName,
		TableName:  fk.ForeignTableName,
		ColumnName: fk.ForeignColumnName,
	}
}

// SpecifiedForeignKey is a foreign key together with the column that owns it
type SpecifiedForeignKey struct {
	LocalSchemaName   string `json:"localSchemaName"`
	LocalTableName    string `json:"localTableName"`
	LocalColumnName   string `json:"localColumnName"`
	ForeignSchemaName string `json:"foreignSchemaName"`
	ForeignTableName  string `json:"foreignTableName"`
	ForeignColumnName string `json:"foreignColumnName"`
}

// Specify builds a SpecifiedForeignKey from its two endpoints
func Specify(local, foreign ColumnRef) SpecifiedForeignKey {
	return SpecifiedForeignKey{
		LocalSchemaName:   local.SchemaName,
		LocalTableName:    local.TableName,
		LocalColumnName:   local.ColumnName,
		ForeignSchemaName: foreign.SchemaName,
		ForeignTableName:  foreign.TableName,
		ForeignColumnName: foreign.ColumnName,
	}
}

func (fk SpecifiedForeignKey) Local() ColumnRef {
	return ColumnRef{SchemaName: fk.LocalSchemaName, TableName: fk.LocalTableName, ColumnName: fk.LocalColumnName}
}

func (fk SpecifiedForeignKey) Foreign() ColumnRef {
	return ColumnRef{SchemaName: fk.ForeignSchemaName, TableName: fk.ForeignTableName, ColumnName: fk.ForeignColumnName}
}

func (fk SpecifiedForeignKey) String() string {
	return fk.Local().ID() + " -> " + fk.Foreign().ID()
}

// FindTable returns the table identified by ref, or nil
func FindTable(schemas []Schema, ref TableRef) *Table {
	for i := range schemas {
		if schemas[i].Name != ref.SchemaName {
			continue
		}
		for j := range schemas[i].Tables {
			if schemas[i].Tables[j].Name == ref.TableName {
				return &schemas[i].Tables[j]
			}
		}
	}
	return nil
}

// FindColumn returns the column identified by ref, or nil
func FindColumn(schemas []Schema, ref ColumnRef) *Column {
	table := FindTable(schemas, ref.Table())
	if table == nil {
		return nil
	}
	for i := range table.Columns {
		if table.Columns[i].Name == ref.ColumnName {
			return &table.Columns[i]
		}
	}
	return nil
}
