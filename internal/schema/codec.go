package schema

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Decode reads a schema collection document. JSON documents are accepted as
// well since they are valid YAML.
func Decode(r io.Reader) ([]Schema, error) {
	var schemas []Schema
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&schemas); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode schemas: %w", err)
	}
	normalize(schemas)
	return schemas, nil
}

// Encode writes a schema collection document as YAML
func Encode(w io.Writer, schemas []Schema) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(schemas); err != nil {
		return fmt.Errorf("failed to encode schemas: %w", err)
	}
	return enc.Close()
}

// normalize replaces missing foreign key lists with empty ones so that a
// decoded document compares equal to one built in code
func normalize(schemas []Schema) {
	for i := range schemas {
		for j := range schemas[i].Tables {
			cols := schemas[i].Tables[j].Columns
			for k := range cols {
				if cols[k].ForeignKeys == nil {
					cols[k].ForeignKeys = []ForeignKey{}
				}
			}
		}
	}
}
