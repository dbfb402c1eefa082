package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// PrimaryKey lists the primary key columns of a table. Documents may spell a
// single-column key as a plain string and a composite key as a list.
type PrimaryKey []string

// Contains reports whether column is part of the key
func (pk PrimaryKey) Contains(column string) bool {
	for _, c := range pk {
		if c == column {
			return true
		}
	}
	return false
}

// Composite reports whether the key spans more than one column
func (pk PrimaryKey) Composite() bool {
	return len(pk) > 1
}

func (pk *PrimaryKey) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*pk = nil
			return nil
		}
		*pk = PrimaryKey{s}
		return nil
	case yaml.SequenceNode:
		var cols []string
		if err := value.Decode(&cols); err != nil {
			return err
		}
		*pk = cols
		return nil
	default:
		return fmt.Errorf("line %d: primary key must be a string or a list of strings", value.Line)
	}
}

func (pk PrimaryKey) MarshalYAML() (interface{}, error) {
	if len(pk) == 1 {
		return pk[0], nil
	}
	return []string(pk), nil
}

func (pk *PrimaryKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*pk = nil
		} else {
			*pk = PrimaryKey{s}
		}
		return nil
	}
	var cols []string
	if err := json.Unmarshal(data, &cols); err != nil {
		return fmt.Errorf("primary key must be a string or a list of strings: %w", err)
	}
	*pk = cols
	return nil
}

func (pk PrimaryKey) MarshalJSON() ([]byte, error) {
	if len(pk) == 1 {
		return json.Marshal(pk[0])
	}
	if pk == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(pk))
}
