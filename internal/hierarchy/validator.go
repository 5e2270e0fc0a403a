package hierarchy

import "context"

// Walk caps are defensive limits against pathological or corrupt parent
// chains, not correctness bounds for legitimately deep hierarchies.
const (
	MaxCycleWalkDepth = 50
	MaxPathWalkDepth  = 20
)

// Node is the minimal department projection the validator walks.
type Node struct {
	ID       string
	Name     string
	ParentID *string
}

// NodeReader resolves a department node by id. Returning a nil node with
// a nil error means the id does not resolve.
type NodeReader interface {
	Node(ctx context.Context, id string) (*Node, error)
}

// Validator performs read-only integrity checks over the parent-pointer
// chain of the department tree.
type Validator struct {
	nodes NodeReader
}

// NewValidator builds the validator.
func NewValidator(nodes NodeReader) *Validator {
	return &Validator{nodes: nodes}
}

// DetectCycle reports whether setting proposedParentID as the parent of
// departmentID would create a cycle. Lookup failures terminate the walk
// as "no cycle": the check fails open on data-integrity gaps rather than
// blocking legitimate writes.
func (v *Validator) DetectCycle(ctx context.Context, departmentID, proposedParentID string) bool {
	if departmentID == proposedParentID {
		return true
	}

	visited := map[string]struct{}{departmentID: {}}
	current := proposedParentID
	for depth := 0; depth < MaxCycleWalkDepth; depth++ {
		if _, seen := visited[current]; seen {
			return true
		}
		visited[current] = struct{}{}

		node, err := v.nodes.Node(ctx, current)
		if err != nil || node == nil || node.ParentID == nil {
			return false
		}
		current = *node.ParentID
	}
	return false
}

// ResolveAncestorPath returns the breadcrumb path from the root down to
// the given department inclusive, walking parent references upward and
// prepending each visited node.
func (v *Validator) ResolveAncestorPath(ctx context.Context, departmentID string) []Node {
	path := make([]Node, 0, 4)
	current := departmentID
	for depth := 0; depth < MaxPathWalkDepth; depth++ {
		node, err := v.nodes.Node(ctx, current)
		if err != nil || node == nil {
			break
		}
		path = append([]Node{*node}, path...)
		if node.ParentID == nil {
			break
		}
		current = *node.ParentID
	}
	return path
}
