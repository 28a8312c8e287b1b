package chatflow

// ReasonCode identifies which rule decided a verdict.
type ReasonCode string

const (
	ReasonEmptyFlow            ReasonCode = "EMPTY_FLOW"
	ReasonSingleNode           ReasonCode = "SINGLE_NODE"
	ReasonMultipleEmptyTargets ReasonCode = "MULTIPLE_EMPTY_TARGETS"
	ReasonEmptyTextNodes       ReasonCode = "EMPTY_TEXT_NODES"
	ReasonDuplicateSource      ReasonCode = "DUPLICATE_SOURCE"
	ReasonFlowValid            ReasonCode = "FLOW_VALID"
)

// Messages shown to the user for each reason code.
var reasonMessages = map[ReasonCode]string{
	ReasonEmptyFlow:            "Flow is empty but valid",
	ReasonSingleNode:           "Single node flow is valid",
	ReasonMultipleEmptyTargets: "Cannot save Flow: More than one node has empty target handles",
	ReasonEmptyTextNodes:       "Some text nodes have empty content",
	ReasonDuplicateSource:      "Source handle has multiple outgoing connections",
	ReasonFlowValid:            "Flow is valid",
}

// Message returns the user-facing message for the code.
func (c ReasonCode) Message() string { return reasonMessages[c] }

// Verdict is the outcome of validating a flow.
type Verdict struct {
	IsValid bool       `json:"isValid"`
	Reason  ReasonCode `json:"reasonCode"`
	Message string     `json:"message"`
	Details Details    `json:"details"`
}

// Details carries the diagnostic fields of a verdict. NodeCount and EdgeCount
// are always set; the rest depend on the deciding rule.
type Details struct {
	NodeCount           int      `json:"nodeCount"`
	EdgeCount           int      `json:"edgeCount"`
	NodesWithoutTargets int      `json:"nodesWithoutTargets,omitempty"`
	ProblematicNodes    []string `json:"problematicNodes,omitempty"`
	EmptyNodes          []string `json:"emptyNodes,omitempty"`
	DuplicateSource     string   `json:"duplicateSource,omitempty"`
	ConflictingEdges    []string `json:"conflictingEdges,omitempty"`
}

// Validator checks flows before they are saved.
type Validator struct {
	kinds *Registry
}

// NewValidator returns a validator that looks up content rules in kinds.
// A nil registry means DefaultKinds.
func NewValidator(kinds *Registry) *Validator {
	if kinds == nil {
		kinds = DefaultKinds()
	}
	return &Validator{kinds: kinds}
}

var defaultValidator = NewValidator(nil)

// Validate checks nodes and edges with the built-in kinds.
func Validate(nodes []Node, edges []Edge) Verdict {
	return defaultValidator.Validate(nodes, edges)
}

// Validate runs the save rules in order and returns the first failure, or a
// valid verdict. It does not modify its inputs.
func (v *Validator) Validate(nodes []Node, edges []Edge) Verdict {
	details := Details{NodeCount: len(nodes), EdgeCount: len(edges)}

	switch len(nodes) {
	case 0:
		return verdict(true, ReasonEmptyFlow, details)
	case 1:
		return verdict(true, ReasonSingleNode, details)
	}

	roots := NodesWithoutIncoming(nodes, edges)
	details.NodesWithoutTargets = len(roots)
	if len(roots) > 1 {
		details.ProblematicNodes = nodeIDs(roots)
		return verdict(false, ReasonMultipleEmptyTargets, details)
	}

	if empty := v.emptyContentNodes(nodes); len(empty) > 0 {
		return verdict(false, ReasonEmptyTextNodes, Details{
			NodeCount:  details.NodeCount,
			EdgeCount:  details.EdgeCount,
			EmptyNodes: empty,
		})
	}

	if key, first, second, ok := duplicateSource(edges); ok {
		return verdict(false, ReasonDuplicateSource, Details{
			NodeCount:        details.NodeCount,
			EdgeCount:        details.EdgeCount,
			DuplicateSource:  key,
			ConflictingEdges: []string{first, second},
		})
	}

	return verdict(true, ReasonFlowValid, details)
}

func (v *Validator) emptyContentNodes(nodes []Node) []string {
	var out []string
	for _, n := range nodes {
		d, ok := v.kinds.Lookup(n.Kind)
		if !ok || d.ContentField == "" {
			continue
		}
		if !hasContent(n.Data, d.ContentField) {
			out = append(out, n.ID)
		}
	}
	return out
}

// duplicateSource finds the first edge that reuses an earlier edge's
// (source, sourceHandle) pair.
func duplicateSource(edges []Edge) (key, first, second string, ok bool) {
	seen := make(map[string]string, len(edges))
	for _, e := range edges {
		k := sourceKey(e)
		if prev, dup := seen[k]; dup {
			return k, prev, e.ID, true
		}
		seen[k] = e.ID
	}
	return "", "", "", false
}

func verdict(valid bool, reason ReasonCode, details Details) Verdict {
	return Verdict{
		IsValid: valid,
		Reason:  reason,
		Message: reason.Message(),
		Details: details,
	}
}

func nodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
