package tree

import (
	"errors"
	"fmt"
)

// Errors returned by arena and mutator operations. Operations wrap them in
// an *OpError; use errors.Is to test for a particular kind.
var (
	// ErrUnknownHandle is returned for handles never issued by the arena,
	// the zero handle, handles issued by another arena, and handles issued
	// before the last Reset.
	ErrUnknownHandle = errors.New("unknown handle")
	// ErrAlreadyAttached is returned when linking a node that is not orphan.
	ErrAlreadyAttached = errors.New("node is already attached")
	// ErrNoParent is returned for sibling-relative insertion against an orphan.
	ErrNoParent = errors.New("sibling has no parent")
	// ErrNotAnElement is returned when an element accessor targets another kind.
	ErrNotAnElement = errors.New("node is not an element")
	// ErrNotATemplate is returned when asking a non-template for its contents.
	ErrNotATemplate = errors.New("element is not a template")
	// ErrNotADocument is returned when a document operation targets another kind.
	ErrNotADocument = errors.New("node is not a document")
	// ErrHierarchy is returned when a link would make a node its own ancestor.
	ErrHierarchy = errors.New("node would become its own ancestor")
	// ErrInvalidData is returned when allocating a node without data,
	// including a nil pointer of one of the node data types.
	ErrInvalidData = errors.New("node data is nil")
	// ErrArenaFull is returned when the arena has issued every index.
	ErrArenaFull = errors.New("arena is full")
	// ErrInvariantViolation is returned when the linkage is inconsistent.
	ErrInvariantViolation = errors.New("tree invariant violated")
)

// OpError records the operation and handle that failed.
type OpError struct {
	Op     string
	Handle Handle
	Err    error
}

func (e *OpError) Error() string {
	if e.Handle.IsZero() {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Handle, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op string, h Handle, err error) error {
	return &OpError{Op: op, Handle: h, Err: err}
}

// InvariantError describes a linkage inconsistency found on a node.
type InvariantError struct {
	Handle Handle
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v at %s: %s", ErrInvariantViolation, e.Handle, e.Reason)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

func invariant(h Handle, format string, args ...any) error {
	return &InvariantError{Handle: h, Reason: fmt.Sprintf(format, args...)}
}
