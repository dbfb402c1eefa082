package edit

import "github.com/tordrt/reldiagram/internal/diagram"

// ConnectGesture is a new connection being drawn from a source handle.
// While it is open the editor reports Connecting.
type ConnectGesture struct {
	editor *Editor
	done   bool
}

// StartConnect opens a connect gesture
func (e *Editor) StartConnect() *ConnectGesture {
	e.connecting = true
	return &ConnectGesture{editor: e}
}

// Complete handles the connection the gesture produced
func (g *ConnectGesture) Complete(conn Connection) (Result, error) {
	if g.done {
		return Result{}, ErrGestureFinished
	}
	return g.editor.connect(conn)
}

// End closes the gesture
func (g *ConnectGesture) End() error {
	if g.done {
		return ErrGestureFinished
	}
	g.done = true
	g.editor.connecting = false
	return nil
}

// RetargetGesture is an existing edge being dragged off its endpoint. The
// endpoint it is dropped on, if any, is recorded by Update and consumed by
// End. Each gesture starts with nothing recorded.
type RetargetGesture struct {
	editor  *Editor
	pending *Connection
	done    bool
}

// StartRetarget opens a retarget gesture
func (e *Editor) StartRetarget() *RetargetGesture {
	return &RetargetGesture{editor: e}
}

// Update records conn as the edge's new endpoints. Later updates replace
// earlier ones.
func (g *RetargetGesture) Update(conn Connection) error {
	if g.done {
		return ErrGestureFinished
	}
	g.pending = &conn
	return nil
}

// Pending returns the recorded connection, if any
func (g *RetargetGesture) Pending() (Connection, bool) {
	if g.pending == nil {
		return Connection{}, false
	}
	return *g.pending, true
}

// End removes the relationship drawn as edge and creates the recorded one,
// emitting a single new collection for both
func (g *RetargetGesture) End(edge diagram.Edge) (Result, error) {
	if g.done {
		return Result{}, ErrGestureFinished
	}
	g.done = true
	pending := g.pending
	g.pending = nil
	return g.editor.remove(edge, pending)
}
