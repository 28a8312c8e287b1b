package chatflow

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKind           = errors.New("chatflow: unknown node kind")
	ErrDuplicateSourceHandle = errors.New("chatflow: source handle already connected")
	ErrNodeNotFound          = errors.New("chatflow: node not found")
	ErrEdgeNotFound          = errors.New("chatflow: edge not found")
	ErrFlowNotFound          = errors.New("chatflow: flow not found")
	ErrMissingNodeData       = errors.New("chatflow: node data is missing")
	ErrEmptyContent          = errors.New("chatflow: node content is empty")
)

// UnknownKindError is returned when a node is created or checked with a kind
// that is not in the registry.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownKind.Error(), e.Kind)
}

func (e *UnknownKindError) Unwrap() error { return ErrUnknownKind }

// DuplicateSourceHandleError is returned by AddEdge when the (source, sourceHandle)
// pair already has an outgoing edge.
type DuplicateSourceHandleError struct {
	Source       string
	SourceHandle string
	ExistingEdge string
}

func (e *DuplicateSourceHandleError) Error() string {
	handle := e.SourceHandle
	if handle == "" {
		handle = "default"
	}
	return fmt.Sprintf("%s: %s/%s is used by edge %s", ErrDuplicateSourceHandle.Error(), e.Source, handle, e.ExistingEdge)
}

func (e *DuplicateSourceHandleError) Unwrap() error { return ErrDuplicateSourceHandle }
