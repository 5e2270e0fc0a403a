package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapNodeReader struct {
	nodes map[string]*Node
	err   error
}

func (r mapNodeReader) Node(_ context.Context, id string) (*Node, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.nodes[id], nil
}

func strPtr(s string) *string { return &s }

// chain builds a linear tree: root <- a <- b <- c ...
func chainReader(ids ...string) mapNodeReader {
	nodes := make(map[string]*Node, len(ids))
	for i, id := range ids {
		node := &Node{ID: id, Name: id}
		if i > 0 {
			node.ParentID = strPtr(ids[i-1])
		}
		nodes[id] = node
	}
	return mapNodeReader{nodes: nodes}
}

func TestDetectCycleSelfParent(t *testing.T) {
	v := NewValidator(mapNodeReader{nodes: map[string]*Node{}})
	assert.True(t, v.DetectCycle(context.Background(), "eng", "eng"))
}

func TestDetectCycleAncestorChain(t *testing.T) {
	// root <- a <- b <- c. Reparenting any ancestor under its own
	// descendant must be rejected.
	v := NewValidator(chainReader("root", "a", "b", "c"))
	ctx := context.Background()

	assert.True(t, v.DetectCycle(ctx, "root", "c"))
	assert.True(t, v.DetectCycle(ctx, "a", "c"))
	assert.True(t, v.DetectCycle(ctx, "a", "b"))
}

func TestDetectCycleUnrelatedBranch(t *testing.T) {
	reader := chainReader("root", "a", "b")
	reader.nodes["d"] = &Node{ID: "d", Name: "d", ParentID: strPtr("root")}
	v := NewValidator(reader)
	ctx := context.Background()

	assert.False(t, v.DetectCycle(ctx, "d", "b"))
	assert.False(t, v.DetectCycle(ctx, "b", "d"))
}

func TestDetectCycleMissingNodeFailsOpen(t *testing.T) {
	v := NewValidator(mapNodeReader{nodes: map[string]*Node{}})
	assert.False(t, v.DetectCycle(context.Background(), "eng", "ghost"))
}

func TestDetectCycleReaderErrorFailsOpen(t *testing.T) {
	v := NewValidator(mapNodeReader{err: errors.New("connection reset")})
	assert.False(t, v.DetectCycle(context.Background(), "eng", "sales"))
}

func TestDetectCycleDepthBound(t *testing.T) {
	ids := make([]string, 0, MaxCycleWalkDepth+10)
	for i := 0; i < MaxCycleWalkDepth+10; i++ {
		ids = append(ids, fmt.Sprintf("n%d", i))
	}
	v := NewValidator(chainReader(ids...))

	// The walk stops at the cap before ever reaching the target, so a
	// cycle deeper than the cap is not reported.
	assert.False(t, v.DetectCycle(context.Background(), ids[0], ids[len(ids)-1]))
}

func TestResolveAncestorPathOrdersRootFirst(t *testing.T) {
	v := NewValidator(chainReader("root", "a", "b"))

	path := v.ResolveAncestorPath(context.Background(), "b")
	require.Len(t, path, 3)
	assert.Equal(t, "root", path[0].ID)
	assert.Equal(t, "a", path[1].ID)
	assert.Equal(t, "b", path[2].ID)
}

func TestResolveAncestorPathSingleNode(t *testing.T) {
	v := NewValidator(chainReader("root"))

	path := v.ResolveAncestorPath(context.Background(), "root")
	require.Len(t, path, 1)
	assert.Equal(t, "root", path[0].ID)
}

func TestResolveAncestorPathMissingDepartment(t *testing.T) {
	v := NewValidator(mapNodeReader{nodes: map[string]*Node{}})
	assert.Empty(t, v.ResolveAncestorPath(context.Background(), "ghost"))
}

func TestResolveAncestorPathDepthBound(t *testing.T) {
	ids := make([]string, 0, MaxPathWalkDepth+5)
	for i := 0; i < MaxPathWalkDepth+5; i++ {
		ids = append(ids, fmt.Sprintf("n%d", i))
	}
	v := NewValidator(chainReader(ids...))

	path := v.ResolveAncestorPath(context.Background(), ids[len(ids)-1])
	assert.Len(t, path, MaxPathWalkDepth)
}
