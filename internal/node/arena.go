// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file implements Arena, the in-memory owner of a session hierarchy.
//
// Nodes are stored once and refer to their members by Tag, so sharing a
// group between parents or linking a group into its own subtree is just
// another edge. The arena is built once by a loader and is read-only
// afterwards.
package node

import (
	"fmt"
)

// Arena owns a set of nodes and the membership edges between them.
type Arena struct {
	nodes []*arenaNode
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

type arenaNode struct {
	arena    *Arena
	tag      Tag
	name     string
	kind     Kind
	tool     string
	members  []Tag
	problems []error
}

// AddGroup creates a new group and returns its tag.
func (a *Arena) AddGroup(name string) Tag {
	return a.add(name, KindGroup, "")
}

// AddOperation creates a new operation using the given tool (may be empty).
func (a *Arena) AddOperation(name, tool string) Tag {
	return a.add(name, KindOperation, tool)
}

func (a *Arena) add(name string, kind Kind, tool string) Tag {
	n := &arenaNode{
		arena: a,
		tag:   Tag(len(a.nodes) + 1),
		name:  name,
		kind:  kind,
		tool:  tool,
	}
	a.nodes = append(a.nodes, n)
	return n.tag
}

// Link appends child to the members of parent. A child may be linked under
// any number of parents, including itself.
func (a *Arena) Link(parent, child Tag) error {
	p, ok := a.lookup(parent)
	if !ok {
		return fmt.Errorf("parent node %d does not exist", parent)
	}
	if p.kind != KindGroup {
		return fmt.Errorf("cannot add members to operation %q", p.name)
	}
	if _, ok := a.lookup(child); !ok {
		return fmt.Errorf("child node %d does not exist", child)
	}
	p.members = append(p.members, child)
	return nil
}

// LinkError records a member that could not be resolved. It is reported by
// the parent's Children call.
func (a *Arena) LinkError(parent Tag, err error) error {
	p, ok := a.lookup(parent)
	if !ok {
		return fmt.Errorf("parent node %d does not exist", parent)
	}
	p.problems = append(p.problems, err)
	return nil
}

// Node returns the node with the given tag.
func (a *Arena) Node(tag Tag) (Node, bool) {
	n, ok := a.lookup(tag)
	if !ok {
		return nil, false
	}
	return n, true
}

// Len returns the number of nodes in the arena.
func (a *Arena) Len() int {
	return len(a.nodes)
}

func (a *Arena) lookup(tag Tag) (*arenaNode, bool) {
	if tag == 0 || int(tag) > len(a.nodes) {
		return nil, false
	}
	return a.nodes[tag-1], true
}

func (n *arenaNode) Tag() Tag     { return n.tag }
func (n *arenaNode) Name() string { return n.name }
func (n *arenaNode) Kind() Kind   { return n.kind }
func (n *arenaNode) Tool() string { return n.tool }

func (n *arenaNode) Children() ([]Node, error) {
	if n.kind != KindGroup {
		return nil, nil
	}
	children := make([]Node, 0, len(n.members))
	for _, tag := range n.members {
		children = append(children, n.arena.nodes[tag-1])
	}
	switch len(n.problems) {
	case 0:
		return children, nil
	case 1:
		return children, n.problems[0]
	default:
		return children, fmt.Errorf("%w (and %d more)", n.problems[0], len(n.problems)-1)
	}
}
