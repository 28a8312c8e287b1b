package chatflow

import "time"

// Position is a node's location on the editor canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Payload holds the kind-specific fields of a node (message text, image URL, ...).
type Payload map[string]any

// Node is a single step in a conversation flow.
type Node struct {
	ID       string   `json:"id"`
	Kind     string   `json:"type"`
	Position Position `json:"position"`
	Data     Payload  `json:"data"`
}

// Edge is a directed connection from one node's output handle to another's input handle.
// An empty handle refers to the node's default handle.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Flow is a named, persisted snapshot of a graph.
type Flow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// clone returns a copy of p. Nested values are shared.
func (p Payload) clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// sourceKey identifies the (source, sourceHandle) pair an edge leaves from.
func sourceKey(e Edge) string {
	handle := e.SourceHandle
	if handle == "" {
		handle = "default"
	}
	return e.Source + "-" + handle
}
