package chatflow

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNode_MergesDefaults(t *testing.T) {
	g := NewGraph(nil)

	n, err := g.AddNode(KindMessage, Position{X: 10, Y: 20}, Payload{"text": "hello"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(n.ID, KindMessage+"_"), "id %q should start with the kind", n.ID)
	assert.Equal(t, KindMessage, n.Kind)
	assert.Equal(t, Position{X: 10, Y: 20}, n.Position)
	assert.Equal(t, "hello", n.Data["text"])
	assert.Equal(t, "Send Message", n.Data["label"])
	assert.Len(t, g.Nodes(), 1)
}

func TestAddNode_UnknownKind(t *testing.T) {
	g := NewGraph(nil)

	_, err := g.AddNode("carousel", Position{}, nil)
	require.ErrorIs(t, err, ErrUnknownKind)

	var uk *UnknownKindError
	require.ErrorAs(t, err, &uk)
	assert.Equal(t, "carousel", uk.Kind)
	assert.Empty(t, g.Nodes())
}

func TestAddNode_UniqueIDsWithinOneMillisecond(t *testing.T) {
	g := NewGraph(nil)
	g.now = func() time.Time { return time.UnixMilli(1700000000000) }

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		n, err := g.AddNode(KindMessage, Position{}, nil)
		require.NoError(t, err)
		require.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestAddNode_DefaultsAreNotShared(t *testing.T) {
	g := NewGraph(nil)

	a, err := g.AddNode(KindCondition, Position{}, nil)
	require.NoError(t, err)
	b, err := g.AddNode(KindCondition, Position{}, nil)
	require.NoError(t, err)

	a.Data["branches"].([]any)[0] = "Maybe"
	assert.Equal(t, "Yes", b.Data["branches"].([]any)[0])

	d, _ := g.kinds.Lookup(KindCondition)
	assert.Equal(t, "Yes", d.Defaults["branches"].([]any)[0])
}

func TestAddEdge_RejectsSecondEdgeFromSameHandle(t *testing.T) {
	g := NewGraph(nil)

	first, err := g.AddEdge("a", "b", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = g.AddEdge("a", "c", "", "")
	require.ErrorIs(t, err, ErrDuplicateSourceHandle)

	var dup *DuplicateSourceHandleError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.ExistingEdge)
	assert.Len(t, g.Edges(), 1)
}

func TestAddEdge_DefaultHandleMatchesNamedDefault(t *testing.T) {
	g := NewGraph(nil)

	_, err := g.AddEdge("a", "b", "", "")
	require.NoError(t, err)

	_, err = g.AddEdge("a", "c", "default", "")
	require.ErrorIs(t, err, ErrDuplicateSourceHandle)
}

func TestAddEdge_DistinctHandlesAllowed(t *testing.T) {
	g := NewGraph(nil)

	_, err := g.AddEdge("cond", "yes", "yes", "")
	require.NoError(t, err)
	_, err = g.AddEdge("cond", "no", "no", "")
	require.NoError(t, err)

	assert.Len(t, g.OutgoingEdges("cond"), 2)
}

func TestUpdateNodePayload(t *testing.T) {
	g := NewGraph(nil)
	n, err := g.AddNode(KindMessage, Position{}, nil)
	require.NoError(t, err)

	require.NoError(t, g.UpdateNodePayload(n.ID, Payload{"text": "updated"}))

	got, ok := g.Node(n.ID)
	require.True(t, ok)
	assert.Equal(t, "updated", got.Data["text"])
	assert.Equal(t, "Send Message", got.Data["label"])

	// The node returned by AddNode is a snapshot.
	assert.Equal(t, "Enter your message here...", n.Data["text"])

	assert.ErrorIs(t, g.UpdateNodePayload("missing", Payload{"text": "x"}), ErrNodeNotFound)
}

func TestMoveNode(t *testing.T) {
	g := NewGraph(nil)
	n, err := g.AddNode(KindMessage, Position{}, nil)
	require.NoError(t, err)

	require.NoError(t, g.MoveNode(n.ID, Position{X: 5, Y: 6}))
	got, _ := g.Node(n.ID)
	assert.Equal(t, Position{X: 5, Y: 6}, got.Position)

	assert.ErrorIs(t, g.MoveNode("missing", Position{}), ErrNodeNotFound)
}

func TestRemoveNode_DropsAttachedEdges(t *testing.T) {
	g := LoadGraph(nil,
		[]Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[]Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "c"},
			{ID: "e3", Source: "a", Target: "c", SourceHandle: "alt"},
		},
	)

	require.NoError(t, g.RemoveNode("b"))

	assert.Equal(t, []Node{{ID: "a"}, {ID: "c"}}, g.Nodes())
	assert.Equal(t, []Edge{{ID: "e3", Source: "a", Target: "c", SourceHandle: "alt"}}, g.Edges())
	assert.ErrorIs(t, g.RemoveNode("b"), ErrNodeNotFound)
}

func TestRemoveEdge_FreesSourceHandle(t *testing.T) {
	g := NewGraph(nil)
	e, err := g.AddEdge("a", "b", "", "")
	require.NoError(t, err)

	require.NoError(t, g.RemoveEdge(e.ID))
	assert.ErrorIs(t, g.RemoveEdge(e.ID), ErrEdgeNotFound)

	_, err = g.AddEdge("a", "c", "", "")
	assert.NoError(t, err)
}

func TestLoadGraph_CopiesInput(t *testing.T) {
	nodes := []Node{{ID: "a"}}
	g := LoadGraph(nil, nodes, nil)

	require.NoError(t, g.RemoveNode("a"))
	assert.Equal(t, "a", nodes[0].ID)
}

func TestEdgeQueries_PreserveOrder(t *testing.T) {
	edges := []Edge{
		{ID: "e1", Source: "a", Target: "c"},
		{ID: "e2", Source: "b", Target: "c"},
		{ID: "e3", Source: "c", Target: "d"},
		{ID: "e4", Source: "a", Target: "d", SourceHandle: "h2"},
	}

	assert.Equal(t, []Edge{edges[0], edges[1]}, IncomingEdges(edges, "c"))
	assert.Equal(t, []Edge{edges[0], edges[3]}, OutgoingEdges(edges, "a"))
	assert.Empty(t, IncomingEdges(edges, "a"))
	assert.Empty(t, OutgoingEdges(edges, "ghost"))
}

func TestNodesWithoutIncoming(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	edges := []Edge{
		{ID: "e1", Source: "a", Target: "b"},
		// dangling endpoints are ignored rather than rejected
		{ID: "e2", Source: "ghost", Target: "d"},
		{ID: "e3", Source: "b", Target: "nowhere"},
	}

	roots := NodesWithoutIncoming(nodes, edges)
	assert.Equal(t, []Node{{ID: "a"}, {ID: "c"}}, roots)
	assert.Equal(t, roots, LoadGraph(nil, nodes, edges).NodesWithoutIncoming())
}
