package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/nxpost/internal/node"
)

// Tree builds an arena for tests using names as handles. Names must be
// unique within one Tree; the arena itself does not require that.
type Tree struct {
	t      *testing.T
	Arena  *node.Arena
	byName map[string]node.Tag
}

// NewTree returns an empty Tree.
func NewTree(t *testing.T) *Tree {
	t.Helper()
	return &Tree{t: t, Arena: node.NewArena(), byName: make(map[string]node.Tag)}
}

// Op declares an operation.
func (tr *Tree) Op(name, tool string) *Tree {
	tr.t.Helper()
	tr.declare(name, tr.Arena.AddOperation(name, tool))
	return tr
}

// Group declares a group whose members are previously declared names.
func (tr *Tree) Group(name string, members ...string) *Tree {
	tr.t.Helper()
	tr.declare(name, tr.Arena.AddGroup(name))
	for _, m := range members {
		tr.Link(name, m)
	}
	return tr
}

// Link adds child to the members of parent. Use it for shared members and
// cycles.
func (tr *Tree) Link(parent, child string) *Tree {
	tr.t.Helper()
	require.NoError(tr.t, tr.Arena.Link(tr.tag(parent), tr.tag(child)))
	return tr
}

// Node returns the node declared under name.
func (tr *Tree) Node(name string) node.Node {
	tr.t.Helper()
	n, ok := tr.Arena.Node(tr.tag(name))
	require.True(tr.t, ok)
	return n
}

// Children returns the members of the group declared under name.
func (tr *Tree) Children(name string) []node.Node {
	tr.t.Helper()
	children, err := tr.Node(name).Children()
	require.NoError(tr.t, err)
	return children
}

func (tr *Tree) declare(name string, tag node.Tag) {
	tr.t.Helper()
	_, exists := tr.byName[name]
	require.False(tr.t, exists, "name %q declared twice", name)
	tr.byName[name] = tag
}

func (tr *Tree) tag(name string) node.Tag {
	tr.t.Helper()
	tag, ok := tr.byName[name]
	require.True(tr.t, ok, "name %q was not declared", name)
	return tag
}
