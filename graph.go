package chatflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Graph is the in-memory node/edge snapshot owned by one editor session.
// It is not safe for concurrent use.
type Graph struct {
	kinds *Registry
	nodes []Node
	edges []Edge
	now   func() time.Time
}

// NewGraph returns an empty graph whose nodes are created from kinds.
// A nil registry means DefaultKinds.
func NewGraph(kinds *Registry) *Graph {
	if kinds == nil {
		kinds = DefaultKinds()
	}
	return &Graph{kinds: kinds, now: time.Now}
}

// LoadGraph returns a graph holding a copy of a loaded snapshot.
func LoadGraph(kinds *Registry, nodes []Node, edges []Edge) *Graph {
	g := NewGraph(kinds)
	g.nodes = append([]Node(nil), nodes...)
	g.edges = append([]Edge(nil), edges...)
	return g
}

// Nodes returns a copy of the node list in insertion order.
func (g *Graph) Nodes() []Node { return append([]Node(nil), g.nodes...) }

// Edges returns a copy of the edge list in insertion order.
func (g *Graph) Edges() []Edge { return append([]Edge(nil), g.edges...) }

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	if i := g.nodeIndex(id); i >= 0 {
		return g.nodes[i], true
	}
	return Node{}, false
}

// AddNode creates a node of the given kind at pos. custom is shallow-merged
// over the kind's default payload.
func (g *Graph) AddNode(kind string, pos Position, custom Payload) (Node, error) {
	d, ok := g.kinds.Lookup(kind)
	if !ok {
		return Node{}, &UnknownKindError{Kind: kind}
	}

	data := make(Payload, len(d.Defaults)+len(custom))
	for k, v := range d.Defaults {
		data[k] = copyValue(v)
	}
	for k, v := range custom {
		data[k] = v
	}

	n := Node{
		ID:       fmt.Sprintf("%s_%d_%s", kind, g.now().UnixMilli(), uuid.NewString()),
		Kind:     kind,
		Position: pos,
		Data:     data,
	}
	g.nodes = append(g.nodes, n)
	return n, nil
}

// AddEdge connects source to target. It fails without modifying the graph if
// the (source, sourceHandle) pair already has an outgoing edge.
// Endpoints are not checked for existence.
func (g *Graph) AddEdge(source, target, sourceHandle, targetHandle string) (Edge, error) {
	e := Edge{
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}

	key := sourceKey(e)
	for _, existing := range g.edges {
		if sourceKey(existing) == key {
			return Edge{}, &DuplicateSourceHandleError{
				Source:       source,
				SourceHandle: sourceHandle,
				ExistingEdge: existing.ID,
			}
		}
	}

	e.ID = uuid.NewString()
	g.edges = append(g.edges, e)
	return e, nil
}

// UpdateNodePayload shallow-merges partial into the node's payload.
func (g *Graph) UpdateNodePayload(id string, partial Payload) error {
	i := g.nodeIndex(id)
	if i < 0 {
		return ErrNodeNotFound
	}

	data := g.nodes[i].Data.clone()
	if data == nil {
		data = make(Payload, len(partial))
	}
	for k, v := range partial {
		data[k] = v
	}
	g.nodes[i].Data = data
	return nil
}

// MoveNode sets the node's canvas position.
func (g *Graph) MoveNode(id string, pos Position) error {
	i := g.nodeIndex(id)
	if i < 0 {
		return ErrNodeNotFound
	}
	g.nodes[i].Position = pos
	return nil
}

// RemoveNode deletes a node and every edge attached to it.
func (g *Graph) RemoveNode(id string) error {
	i := g.nodeIndex(id)
	if i < 0 {
		return ErrNodeNotFound
	}
	g.nodes = append(g.nodes[:i:i], g.nodes[i+1:]...)

	kept := g.edges[:0:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return nil
}

// RemoveEdge deletes an edge by id.
func (g *Graph) RemoveEdge(id string) error {
	for i, e := range g.edges {
		if e.ID == id {
			g.edges = append(g.edges[:i:i], g.edges[i+1:]...)
			return nil
		}
	}
	return ErrEdgeNotFound
}

// IncomingEdges returns the edges that end at id.
func (g *Graph) IncomingEdges(id string) []Edge { return IncomingEdges(g.edges, id) }

// OutgoingEdges returns the edges that start at id.
func (g *Graph) OutgoingEdges(id string) []Edge { return OutgoingEdges(g.edges, id) }

// NodesWithoutIncoming returns the graph's root nodes.
func (g *Graph) NodesWithoutIncoming() []Node { return NodesWithoutIncoming(g.nodes, g.edges) }

func (g *Graph) nodeIndex(id string) int {
	for i, n := range g.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// IncomingEdges returns the edges whose target is id, in edge order.
func IncomingEdges(edges []Edge, id string) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// OutgoingEdges returns the edges whose source is id, in edge order.
func OutgoingEdges(edges []Edge, id string) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// NodesWithoutIncoming returns, in node order, the nodes no edge points to.
func NodesWithoutIncoming(nodes []Node, edges []Edge) []Node {
	targets := make(map[string]bool, len(edges))
	for _, e := range edges {
		targets[e.Target] = true
	}

	var out []Node
	for _, n := range nodes {
		if !targets[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// copyValue copies the slice and map values defaults are built from so nodes
// never share them.
func copyValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = copyValue(x)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = copyValue(x)
		}
		return out
	default:
		return v
	}
}
