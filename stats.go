package chatflow

// Stats summarises a flow's shape for debugging and analytics.
type Stats struct {
	TotalNodes  int            `json:"totalNodes"`
	TotalEdges  int            `json:"totalEdges"`
	NodesByKind map[string]int `json:"nodesByType"`
	StartNodes  int            `json:"startNodes"`
	EndNodes    int            `json:"endNodes"`
	IsConnected bool           `json:"isConnected"`
	HasDeadEnds bool           `json:"hasDeadEnds"`
	HasCycle    bool           `json:"hasCycle"`
}

// Statistics computes Stats for a snapshot.
func Statistics(nodes []Node, edges []Edge) Stats {
	byKind := make(map[string]int)
	for _, n := range nodes {
		byKind[n.Kind]++
	}

	sources := make(map[string]bool, len(edges))
	for _, e := range edges {
		sources[e.Source] = true
	}
	ends := 0
	for _, n := range nodes {
		if !sources[n.ID] {
			ends++
		}
	}

	starts := len(NodesWithoutIncoming(nodes, edges))
	return Stats{
		TotalNodes:  len(nodes),
		TotalEdges:  len(edges),
		NodesByKind: byKind,
		StartNodes:  starts,
		EndNodes:    ends,
		IsConnected: len(nodes) <= 1 || starts == 1,
		HasDeadEnds: ends > 0,
		HasCycle:    hasCycle(nodes, edges),
	}
}

// hasCycle reports whether the edges form a cycle, using DFS colouring.
// Endpoints that match no node still take part in the walk.
func hasCycle(nodes []Node, edges []Edge) bool {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	// Walk nodes first, then edge-only endpoints, so the result is deterministic.
	var order []string
	state := make(map[string]int)
	add := func(id string) {
		if _, ok := state[id]; !ok {
			state[id] = unvisited
			order = append(order, id)
		}
	}
	for _, n := range nodes {
		add(n.ID)
	}
	for _, e := range edges {
		add(e.Source)
		add(e.Target)
	}

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}

	for _, id := range order {
		if state[id] == unvisited && dfs(id) {
			return true
		}
	}
	return false
}
