// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Node, the read-only view of one member of a CAM process
// group hierarchy.
//
// Why an interface and not a struct?
//
// The hierarchy belongs to the CAM session. The core never builds or mutates
// it; it only walks it for the duration of one report or one lookup. Keeping
// Node an interface lets the snapshot loader, tests and any future live
// session adapter hand the same traversal code their own representation.
//
// Why a Tag?
//
// A CAM session allows one group object to be a member of more than one
// parent, and nothing stops a broken session from making a group its own
// descendant. The structure is therefore a directed graph, not a tree, and
// names are only unique among siblings. Traversal deduplicates by Tag, the
// identity of the underlying object, never by name.
package node

import (
	"errors"
	"fmt"
)

// Tag is the identity of a node within one session.
type Tag uint64

// Kind distinguishes program groups from leaf operations.
type Kind int

const (
	// KindGroup is a program group that may hold child groups and operations.
	KindGroup Kind = iota
	// KindOperation is a leaf machining operation.
	KindOperation
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindOperation:
		return "operation"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one group or operation in the CAM hierarchy.
type Node interface {
	Tag() Tag
	Name() string
	Kind() Kind
	// Children returns the ordered members of a group. Operations return
	// nil. A non-nil error may be accompanied by the members that could
	// still be read.
	Children() ([]Node, error)
}

// Tooled is implemented by operations that know their cutting tool.
type Tooled interface {
	Tool() string
}

var (
	// ErrGroupNotFound is returned when no group with the requested name is
	// reachable from the search root.
	ErrGroupNotFound = errors.New("group not found")
	// ErrOperationNotFound is returned when no operation with the requested
	// name is reachable from the search root.
	ErrOperationNotFound = errors.New("operation not found")
)

// SafeName returns the display name of n, substituting placeholders for
// missing nodes, empty names and names that cannot be read.
func SafeName(n Node) (name string) {
	if n == nil {
		return "<null>"
	}
	defer func() {
		if r := recover(); r != nil {
			name = "<no-name>"
		}
	}()
	if name = n.Name(); name != "" {
		return name
	}
	return "<unnamed>"
}

// SafeKind returns the kind of n and false when n is nil or its kind cannot
// be read.
func SafeKind(n Node) (kind Kind, ok bool) {
	if n == nil {
		return 0, false
	}
	defer func() {
		if r := recover(); r != nil {
			kind, ok = 0, false
		}
	}()
	return n.Kind(), true
}

// SafeChildren reads the members of n, converting a panic raised by the
// session implementation into an error so one bad node cannot take the
// caller down.
func SafeChildren(n Node) (children []Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			children = nil
			err = fmt.Errorf("cannot read members of %q: %v", SafeName(n), r)
		}
	}()
	if n.Kind() != KindGroup {
		return nil, nil
	}
	return n.Children()
}
