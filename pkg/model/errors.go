package model

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors. Structured error types below wrap these so callers
// can branch with errors.Is while still getting the full context.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnknownField = errors.New("unknown field")
	ErrUnknownState = errors.New("unknown parser state")
	ErrCyclicGraph  = errors.New("control graph contains a cycle")
)

// NotFoundError reports an unknown table, action, node or host name.
// It is an ordinary query result, never fatal.
type NotFoundError struct {
	Kind string // "table", "action", "node", "host"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UnknownFieldError reports a field expression that does not resolve against
// the loaded header definitions.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field expression %q", e.Field)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// UnknownStateError reports an unrecognized parser state name.
type UnknownStateError struct {
	State string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown parser state %q", e.State)
}

func (e *UnknownStateError) Is(target error) bool { return target == ErrUnknownState }

// CyclicGraphError reports a cycle in a control graph. Pipelines are
// feed-forward; a cycle is a design error in the input program and is fatal
// at load time. Cycle carries one witness cycle as node names.
type CyclicGraphError struct {
	Graph string
	Cycle []string
}

func (e *CyclicGraphError) Error() string {
	if len(e.Cycle) == 0 {
		return fmt.Sprintf("control graph %q contains a cycle", e.Graph)
	}
	return fmt.Sprintf("control graph %q contains a cycle: %s", e.Graph, strings.Join(e.Cycle, " -> "))
}

func (e *CyclicGraphError) Is(target error) bool { return target == ErrCyclicGraph }
