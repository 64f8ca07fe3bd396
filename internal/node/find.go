package node

import (
	"fmt"
)

// Visitor is called for every node reached by Walk. parent is the node
// through which n was first reached and is nil for the root. Returning false
// stops the walk.
type Visitor func(n, parent Node) bool

// Walk visits root and every node reachable from it in depth-first
// pre-order, following member order. Each identity is visited at most once,
// so shared members and cycles are safe. Members that cannot be read are
// skipped.
func Walk(root Node, fn Visitor) {
	if root == nil {
		return
	}
	visited := make(map[Tag]struct{})

	var visit func(n, parent Node) bool
	visit = func(n, parent Node) bool {
		if _, seen := visited[n.Tag()]; seen {
			return true
		}
		visited[n.Tag()] = struct{}{}

		if !fn(n, parent) {
			return false
		}

		children, _ := SafeChildren(n)
		for _, child := range children {
			if child == nil {
				continue
			}
			if !visit(child, n) {
				return false
			}
		}
		return true
	}
	visit(root, nil)
}

// FindOperation returns the first operation named name in traversal order.
// Duplicate names are not disambiguated further.
func FindOperation(root Node, name string) (Node, error) {
	found := find(root, name, KindOperation)
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, name)
	}
	return found, nil
}

// FindGroup returns the first group named name in traversal order,
// including root itself.
func FindGroup(root Node, name string) (Node, error) {
	found := find(root, name, KindGroup)
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, name)
	}
	return found, nil
}

// FindOwningGroup returns the group that directly holds the first operation
// named opName.
func FindOwningGroup(root Node, opName string) (Node, error) {
	var owner Node
	Walk(root, func(n, parent Node) bool {
		if n.Kind() == KindOperation && n.Name() == opName && parent != nil {
			owner = parent
			return false
		}
		return true
	})
	if owner == nil {
		return nil, fmt.Errorf("%w: no group holds operation %q", ErrGroupNotFound, opName)
	}
	return owner, nil
}

// Resolve returns the group named name, or the group owning the operation
// named name when no such group exists.
func Resolve(root Node, name string) (Node, error) {
	if group, err := FindGroup(root, name); err == nil {
		return group, nil
	}
	return FindOwningGroup(root, name)
}

func find(root Node, name string, kind Kind) Node {
	var found Node
	Walk(root, func(n, _ Node) bool {
		if n.Kind() == kind && n.Name() == name {
			found = n
			return false
		}
		return true
	})
	return found
}
