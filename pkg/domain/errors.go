package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTransition is matched by errors.Is for every *InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNoOp is matched by errors.Is for every *NoOpError.
	ErrNoOp = errors.New("no-op transition")

	// ErrUnknownNode is returned when an operation references a node absent from the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned when an operation references an edge absent from the graph.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrSessionNotFound is returned when a session ID cannot be found.
	ErrSessionNotFound = errors.New("session not found")
)

// Problem is a single defect found while validating a definition.
type Problem struct {
	Field  string // e.g. "edges[3].target"
	Reason string
}

func (p Problem) String() string {
	if p.Field == "" {
		return p.Reason
	}
	return fmt.Sprintf("%s: %s", p.Field, p.Reason)
}

// ValidationError reports a malformed graph definition. It is fatal:
// traversal must not start on a definition that failed validation.
type ValidationError struct {
	GraphID  string
	Problems []Problem
}

func (e *ValidationError) Error() string {
	prefix := "invalid graph definition"
	if e.GraphID != "" {
		prefix = fmt.Sprintf("invalid graph definition %q", e.GraphID)
	}
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %s", prefix, e.Problems[0])
	}
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = fmt.Sprintf("  %d. %s", i+1, p)
	}
	return fmt.Sprintf("%s: %d problems:\n%s", prefix, len(e.Problems), strings.Join(parts, "\n"))
}

// InvalidTransitionError is returned by Advance when the edge does not
// originate at the current node. State is left unchanged.
type InvalidTransitionError struct {
	CurrentNodeID string
	EdgeID        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("edge %q does not leave node %q", e.EdgeID, e.CurrentNodeID)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NoOpError is returned by Back on an empty path and by JumpTo for a node
// not on the recorded path. Callers are expected to ignore it silently.
type NoOpError struct {
	Op     string
	Reason string
}

func (e *NoOpError) Error() string {
	return fmt.Sprintf("%s ignored: %s", e.Op, e.Reason)
}

func (e *NoOpError) Is(target error) bool {
	return target == ErrNoOp
}

// IsRecoverable reports whether err is an in-session traversal error that
// must never break the UI.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrNoOp) ||
		errors.Is(err, ErrUnknownNode) || errors.Is(err, ErrUnknownEdge)
}
