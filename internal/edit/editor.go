// Package edit turns connect, retarget and delete gestures on a diagram into
// new schema collections.
//
// The editor never changes the collection it was given. Every accepted edit
// produces a new collection, reported through OnSchemasChange and returned in
// the Result; the caller decides whether to adopt it and feeds it back with
// SetSchemas.
package edit

import (
	"fmt"

	"github.com/tordrt/reldiagram/internal/diagram"
	"github.com/tordrt/reldiagram/internal/schema"
)

// Handlers are the optional notifications fired by the editor. A nil
// handler is not called.
type Handlers struct {
	OnSchemasChange                          func(schemas []schema.Schema)
	OnCreateForeignKey                       func(fk schema.SpecifiedForeignKey)
	OnDeleteForeignKey                       func(fk schema.SpecifiedForeignKey)
	OnAttemptToRecreateExistingRelationship  func(fk schema.SpecifiedForeignKey)
	OnAttemptToConnectColumnToItself         func(column schema.ColumnRef)
	OnAttemptToDeleteConstrainedRelationship func(fk schema.SpecifiedForeignKey)
}

// Connection is a proposed relationship from a source column to a target
// column
type Connection struct {
	Source schema.ColumnRef `json:"source"`
	Target schema.ColumnRef `json:"target"`
}

// ForeignKey describes the connection as a SpecifiedForeignKey
func (c Connection) ForeignKey() schema.SpecifiedForeignKey {
	return schema.Specify(c.Source, c.Target)
}

func (c Connection) complete() bool {
	return c.Source.TableName != "" && c.Source.ColumnName != "" &&
		c.Target.TableName != "" && c.Target.ColumnName != ""
}

// Outcome tells what an edit did
type Outcome int

const (
	OutcomeRejected Outcome = iota
	OutcomeCreated
	OutcomeDeleted
	OutcomeRetargeted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeRetargeted:
		return "retargeted"
	default:
		return "rejected"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is the outcome of one gesture. Schemas is nil when the gesture was
// rejected. A constrained deletion is not rejected: it carries a Violation
// alongside the new collection.
type Result struct {
	Outcome   Outcome
	Schemas   []schema.Schema
	Created   *schema.SpecifiedForeignKey
	Deleted   *schema.SpecifiedForeignKey
	Violation error
}

// Editor validates gestures against the current schema collection. It is
// not safe for concurrent use.
type Editor struct {
	schemas    []schema.Schema
	edges      map[string]bool
	handlers   Handlers
	connecting bool
}

// NewEditor creates an editor over schemas
func NewEditor(schemas []schema.Schema, handlers Handlers) *Editor {
	e := &Editor{handlers: handlers}
	e.SetSchemas(schemas)
	return e
}

// SetSchemas replaces the collection gestures are checked against
func (e *Editor) SetSchemas(schemas []schema.Schema) {
	e.schemas = schemas
	e.edges = make(map[string]bool)
	for _, edge := range diagram.Edges(schemas) {
		e.edges[edge.ID] = true
	}
}

// Schemas returns the current collection
func (e *Editor) Schemas() []schema.Schema {
	return e.schemas
}

// Connecting reports whether a connect gesture is in progress
func (e *Editor) Connecting() bool {
	return e.connecting
}

// Connect runs a complete connect gesture for conn
func (e *Editor) Connect(conn Connection) (Result, error) {
	return e.connect(conn)
}

// Delete removes the relationship drawn as edge, as a retarget gesture that
// never recorded a new endpoint would
func (e *Editor) Delete(edge diagram.Edge) (Result, error) {
	return e.remove(edge, nil)
}

func (e *Editor) connect(conn Connection) (Result, error) {
	if !conn.complete() {
		return Result{}, ErrIncompleteConnection
	}
	fk := conn.ForeignKey()

	if e.edges[diagram.EdgeID(conn.Source, conn.Target)] {
		if h := e.handlers.OnAttemptToRecreateExistingRelationship; h != nil {
			h(fk)
		}
		return Result{
			Outcome:   OutcomeRejected,
			Violation: &ViolationError{Kind: DuplicateRelationship, ForeignKey: fk},
		}, nil
	}
	if conn.Source == conn.Target {
		if h := e.handlers.OnAttemptToConnectColumnToItself; h != nil {
			h(conn.Source)
		}
		return Result{
			Outcome:   OutcomeRejected,
			Violation: &ViolationError{Kind: SelfConnection, Column: conn.Source},
		}, nil
	}

	if err := e.resolve(conn); err != nil {
		return Result{}, err
	}

	b := newBuilder(e.schemas)
	b.addForeignKey(conn.Source, conn.Target)
	next := b.build()

	e.notifySchemas(next)
	if h := e.handlers.OnCreateForeignKey; h != nil {
		h(fk)
	}
	return Result{Outcome: OutcomeCreated, Schemas: next, Created: &fk}, nil
}

// remove deletes the relationship drawn as edge and, when pending is set,
// adds the relationship it was dragged to, as one new collection
func (e *Editor) remove(edge diagram.Edge, pending *Connection) (Result, error) {
	if err := schema.Resolve(e.schemas, edge.Source); err != nil {
		return Result{}, fmt.Errorf("failed to resolve edge source: %w", err)
	}
	if pending != nil {
		if !pending.complete() {
			return Result{}, ErrIncompleteConnection
		}
		if err := e.resolve(*pending); err != nil {
			return Result{}, err
		}
	}

	deleted := edge.ForeignKey()
	res := Result{Outcome: OutcomeDeleted, Deleted: &deleted}
	b := newBuilder(e.schemas)

	if !edge.Deletable {
		res.Violation = &ViolationError{Kind: ConstrainedDeletion, ForeignKey: deleted}
		if h := e.handlers.OnAttemptToDeleteConstrainedRelationship; h != nil {
			h(deleted)
		}
	}
	if h := e.handlers.OnDeleteForeignKey; h != nil {
		h(deleted)
	}
	b.removeForeignKey(edge.Source, edge.Target)

	if pending != nil {
		created := pending.ForeignKey()
		res.Outcome = OutcomeRetargeted
		res.Created = &created
		if h := e.handlers.OnCreateForeignKey; h != nil {
			h(created)
		}
		b.addForeignKey(pending.Source, pending.Target)
	}

	res.Schemas = b.build()
	e.notifySchemas(res.Schemas)
	return res, nil
}

func (e *Editor) resolve(conn Connection) error {
	if err := schema.Resolve(e.schemas, conn.Source); err != nil {
		return fmt.Errorf("failed to resolve connection source: %w", err)
	}
	if err := schema.Resolve(e.schemas, conn.Target); err != nil {
		return fmt.Errorf("failed to resolve connection target: %w", err)
	}
	return nil
}

func (e *Editor) notifySchemas(schemas []schema.Schema) {
	if h := e.handlers.OnSchemasChange; h != nil {
		h(schemas)
	}
}
