package schema

import (
	"errors"
	"fmt"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// ErrUnresolved is matched by every UnresolvedError
var ErrUnresolved = errors.New("reference not found")

// UnresolvedError reports a column reference that does not exist in the
// schema collection
type UnresolvedError struct {
	Ref        ColumnRef
	Suggestion string
}

func (e *UnresolvedError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("column %s not found (did you mean %s?)", e.Ref.ID(), e.Suggestion)
	}
	return fmt.Sprintf("column %s not found", e.Ref.ID())
}

func (e *UnresolvedError) Is(err error) bool {
	return err == ErrUnresolved
}

// maxSuggestionDistance bounds how different a suggestion may be
const maxSuggestionDistance = 3

// Resolve checks that ref names an existing column. On failure the error
// suggests the closest existing column identifier.
func Resolve(schemas []Schema, ref ColumnRef) error {
	if FindColumn(schemas, ref) != nil {
		return nil
	}
	return &UnresolvedError{Ref: ref, Suggestion: closestColumn(schemas, ref.ID())}
}

func closestColumn(schemas []Schema, id string) string {
	best := ""
	bestDistance := maxSuggestionDistance + 1
	target := []rune(id)
	for _, s := range schemas {
		for _, t := range s.Tables {
			for _, c := range t.Columns {
				candidate := Ref(s.Name, t.Name, c.Name)
				d := levenshtein.DistanceForStrings(target, []rune(candidate), levenshtein.DefaultOptions)
				if d < bestDistance {
					best, bestDistance = candidate, d
				}
			}
		}
	}
	return best
}

// Validate checks the invariants the diagram relies on: schema names, table
// references and column references are unique, and every foreign key points
// at an existing column.
func Validate(schemas []Schema) error {
	var errs []error
	schemaNames := make(map[string]bool)
	tables := make(map[string]bool)
	for _, s := range schemas {
		if schemaNames[s.Name] {
			errs = append(errs, fmt.Errorf("duplicate schema %q", s.Name))
		}
		schemaNames[s.Name] = true
		for _, t := range s.Tables {
			tableID := Ref(s.Name, t.Name)
			if tables[tableID] {
				errs = append(errs, fmt.Errorf("duplicate table %s", tableID))
			}
			tables[tableID] = true
			columns := make(map[string]bool)
			for _, c := range t.Columns {
				if columns[c.Name] {
					errs = append(errs, fmt.Errorf("duplicate column %s", Ref(tableID, c.Name)))
				}
				columns[c.Name] = true
				if !c.Type.Valid() {
					errs = append(errs, fmt.Errorf("column %s: unknown data type %q", Ref(tableID, c.Name), c.Type))
				}
			}
			for _, pk := range t.PrimaryKey {
				if !columns[pk] {
					errs = append(errs, fmt.Errorf("table %s: primary key column %q not found", tableID, pk))
				}
			}
		}
	}

	for _, s := range schemas {
		for _, t := range s.Tables {
			for _, c := range t.Columns {
				for _, fk := range c.ForeignKeys {
					if err := Resolve(schemas, fk.Target()); err != nil {
						errs = append(errs, fmt.Errorf("foreign key on %s: %w", Ref(s.Name, t.Name, c.Name), err))
					}
				}
			}
		}
	}
	return errors.Join(errs...)
}
