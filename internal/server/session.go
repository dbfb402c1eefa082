package server

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tordrt/reldiagram/internal/diagram"
	"github.com/tordrt/reldiagram/internal/edit"
	"github.com/tordrt/reldiagram/internal/schema"
)

var (
	ErrUnknownGesture = errors.New("unknown gesture")
	ErrUnknownEdge    = errors.New("unknown edge")
)

// DefaultGestureTTL is how long a retarget gesture may stay open before it
// is discarded as abandoned
const DefaultGestureTTL = 5 * time.Minute

// Event is one notification fired by the editor during a gesture
type Event struct {
	Kind       string                      `json:"kind"`
	ForeignKey *schema.SpecifiedForeignKey `json:"foreignKey,omitempty"`
	Column     *schema.ColumnRef           `json:"column,omitempty"`
}

// GestureResult is what a finished gesture reports back to the client
type GestureResult struct {
	Outcome   edit.Outcome                `json:"outcome"`
	Created   *schema.SpecifiedForeignKey `json:"created,omitempty"`
	Deleted   *schema.SpecifiedForeignKey `json:"deleted,omitempty"`
	Violation string                      `json:"violation,omitempty"`
	Kind      string                      `json:"violationKind,omitempty"`
	Events    []Event                     `json:"events"`
}

// Session is one shared editing session. Accepted edits are adopted
// immediately, so every client sees the latest collection.
type Session struct {
	mu       sync.Mutex
	editor   *edit.Editor
	colors   []string
	opts     diagram.LayoutOptions
	gestures map[uuid.UUID]*openGesture
	ttl      time.Duration
	now      func() time.Time
	events   []Event
	logger   *slog.Logger
}

type openGesture struct {
	gesture *edit.RetargetGesture
	started time.Time
}

// NewSession creates a session editing schemas
func NewSession(schemas []schema.Schema, colors []string, opts diagram.LayoutOptions, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		colors:   colors,
		opts:     opts,
		gestures: make(map[uuid.UUID]*openGesture),
		ttl:      DefaultGestureTTL,
		now:      time.Now,
		logger:   logger,
	}
	s.editor = edit.NewEditor(schemas, s.handlers())
	return s
}

func (s *Session) handlers() edit.Handlers {
	record := func(kind string, fk *schema.SpecifiedForeignKey, col *schema.ColumnRef) {
		s.events = append(s.events, Event{Kind: kind, ForeignKey: fk, Column: col})
		attrs := []any{slog.String("kind", kind)}
		if fk != nil {
			attrs = append(attrs, slog.String("local", fk.Local().ID()), slog.String("foreign", fk.Foreign().ID()))
		}
		if col != nil {
			attrs = append(attrs, slog.String("column", col.ID()))
		}
		s.logger.Info("diagram edit", attrs...)
	}

	return edit.Handlers{
		OnSchemasChange: func(schemas []schema.Schema) {
			record("schemas-change", nil, nil)
		},
		OnCreateForeignKey: func(fk schema.SpecifiedForeignKey) {
			record("create-foreign-key", &fk, nil)
		},
		OnDeleteForeignKey: func(fk schema.SpecifiedForeignKey) {
			record("delete-foreign-key", &fk, nil)
		},
		OnAttemptToRecreateExistingRelationship: func(fk schema.SpecifiedForeignKey) {
			record("duplicate-relationship", &fk, nil)
		},
		OnAttemptToConnectColumnToItself: func(column schema.ColumnRef) {
			record("self-connection", nil, &column)
		},
		OnAttemptToDeleteConstrainedRelationship: func(fk schema.SpecifiedForeignKey) {
			record("constrained-deletion", &fk, nil)
		},
	}
}

// Diagram lays out the current collection
func (s *Session) Diagram() *diagram.Diagram {
	s.mu.Lock()
	defer s.mu.Unlock()
	return diagram.Build(s.editor.Schemas(), s.colors, s.opts)
}

// Connecting reports whether a connect gesture is in progress
func (s *Session) Connecting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Connecting()
}

func (s *Session) Schemas() []schema.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Schemas()
}

// SetSchemas replaces the collection after validating it. Open retarget
// gestures are dropped since their edges may no longer exist.
func (s *Session) SetSchemas(schemas []schema.Schema) error {
	if err := schema.Validate(schemas); err != nil {
		return fmt.Errorf("invalid schemas: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.SetSchemas(schemas)
	clear(s.gestures)
	return nil
}

// Connect runs a whole connect gesture
func (s *Session) Connect(conn edit.Connection) (GestureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.editor.StartConnect()
	defer func() { _ = g.End() }()
	return s.finish(g.Complete(conn))
}

// Delete removes the relationship with the given edge id
func (s *Session) Delete(edgeID string) (GestureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge, err := s.edge(edgeID)
	if err != nil {
		return GestureResult{}, err
	}
	return s.finish(s.editor.Delete(edge))
}

// SetGestureTTL changes how long retarget gestures stay open. A non-positive
// ttl restores DefaultGestureTTL.
func (s *Session) SetGestureTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		ttl = DefaultGestureTTL
	}
	s.ttl = ttl
}

// StartRetarget opens a retarget gesture and returns its id. Gestures older
// than the session's TTL are discarded first.
func (s *Session) StartRetarget() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	id := uuid.New()
	s.gestures[id] = &openGesture{gesture: s.editor.StartRetarget(), started: now}
	return id
}

func (s *Session) sweep(now time.Time) {
	for id, g := range s.gestures {
		if now.Sub(g.started) > s.ttl {
			delete(s.gestures, id)
			s.logger.Debug("retarget gesture expired", slog.String("id", id.String()))
		}
	}
}

// UpdateRetarget records the endpoint an edge was dragged to
func (s *Session) UpdateRetarget(id uuid.UUID, conn edit.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gesture(id)
	if err != nil {
		return err
	}
	return g.Update(conn)
}

// EndRetarget closes the gesture, moving the relationship with the given
// edge id to the recorded endpoint or deleting it when none was recorded
func (s *Session) EndRetarget(id uuid.UUID, edgeID string) (GestureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gesture(id)
	if err != nil {
		return GestureResult{}, err
	}
	edge, err := s.edge(edgeID)
	if err != nil {
		return GestureResult{}, err
	}
	delete(s.gestures, id)
	return s.finish(g.End(edge))
}

// gesture returns the open gesture with id. An expired gesture is removed
// and reported as unknown.
func (s *Session) gesture(id uuid.UUID) (*edit.RetargetGesture, error) {
	g, ok := s.gestures[id]
	if ok && s.now().Sub(g.started) > s.ttl {
		delete(s.gestures, id)
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGesture, id)
	}
	return g.gesture, nil
}

func (s *Session) edge(id string) (diagram.Edge, error) {
	for _, e := range diagram.Edges(s.editor.Schemas()) {
		if e.ID == id {
			return e, nil
		}
	}
	return diagram.Edge{}, fmt.Errorf("%w: %s", ErrUnknownEdge, id)
}

// finish adopts the collection a gesture produced and collects the events
// it fired. Must be called with mu held.
func (s *Session) finish(res edit.Result, err error) (GestureResult, error) {
	events := s.events
	s.events = nil
	if err != nil {
		return GestureResult{}, err
	}

	if res.Schemas != nil {
		s.editor.SetSchemas(res.Schemas)
	}
	out := GestureResult{
		Outcome: res.Outcome,
		Created: res.Created,
		Deleted: res.Deleted,
		Events:  events,
	}
	if out.Events == nil {
		out.Events = []Event{}
	}
	if res.Violation != nil {
		out.Violation = res.Violation.Error()
		var v *edit.ViolationError
		if errors.As(res.Violation, &v) {
			out.Kind = v.Kind.String()
		}
	}
	return out, nil
}
