package edit

import (
	"errors"
	"fmt"

	"github.com/tordrt/reldiagram/internal/schema"
)

var (
	// ErrDuplicateRelationship is matched by violations reporting a connection
	// that already exists as an edge.
	ErrDuplicateRelationship = errors.New("relationship already exists")

	// ErrSelfConnection is matched by violations reporting a column connected
	// to itself.
	ErrSelfConnection = errors.New("cannot connect a column to itself")

	// ErrConstrainedDeletion is matched by violations reporting the removal of
	// a relationship enforced by a database constraint.
	ErrConstrainedDeletion = errors.New("relationship is enforced by a constraint")

	// ErrGestureFinished is returned when a gesture is used after it ended.
	ErrGestureFinished = errors.New("gesture already ended")

	// ErrIncompleteConnection is returned when a connection is missing a
	// table or column on either end.
	ErrIncompleteConnection = errors.New("connection is missing an endpoint")
)

// ViolationKind classifies an edit the editor refused or flagged
type ViolationKind int

const (
	DuplicateRelationship ViolationKind = iota + 1
	SelfConnection
	ConstrainedDeletion
)

func (k ViolationKind) String() string {
	switch k {
	case DuplicateRelationship:
		return "duplicate-relationship"
	case SelfConnection:
		return "self-connection"
	case ConstrainedDeletion:
		return "constrained-deletion"
	default:
		return fmt.Sprintf("ViolationKind(%d)", int(k))
	}
}

func (k ViolationKind) sentinel() error {
	switch k {
	case DuplicateRelationship:
		return ErrDuplicateRelationship
	case SelfConnection:
		return ErrSelfConnection
	case ConstrainedDeletion:
		return ErrConstrainedDeletion
	default:
		return nil
	}
}

// ViolationError describes a policy violation. ForeignKey is set for
// duplicate and constrained violations, Column for self connections.
type ViolationError struct {
	Kind       ViolationKind
	ForeignKey schema.SpecifiedForeignKey
	Column     schema.ColumnRef
}

// Error implements the error interface.
func (e *ViolationError) Error() string {
	if e.Kind == SelfConnection {
		return fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.Column)
	}
	return fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.ForeignKey)
}

// Is reports whether target is the sentinel for the violation's kind, so
// errors.Is(err, ErrSelfConnection) works on a *ViolationError.
func (e *ViolationError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// IsViolation reports whether err is a policy violation of any kind
func IsViolation(err error) bool {
	var v *ViolationError
	return errors.As(err, &v)
}
