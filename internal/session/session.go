// Package session defines the interface to a CAM session: the open part and
// its process group tree. It abstracts away where the session comes from.
package session

import (
	"context"
	"errors"

	"github.com/vk/nxpost/internal/node"
)

var (
	// ErrNoActiveWorkpiece means no part is open.
	ErrNoActiveWorkpiece = errors.New("no active workpiece")
	// ErrCAMNotActivated means a part is open but has no CAM setup.
	ErrCAMNotActivated = errors.New("CAM is not activated for the workpiece")
)

// Session is a read-only view of the CAM state.
type Session interface {
	// PartName returns the name of the open part, or "" when none is open.
	PartName() string

	// WorkpieceRoot returns the root group of the program view.
	WorkpieceRoot(ctx context.Context) (node.Node, error)

	// GroupCollection returns the top-level groups under root, in session
	// order. Operations directly under root are not included.
	GroupCollection(ctx context.Context, root node.Node) ([]node.Node, error)
}

// Factory opens a Session. Different implementations can read snapshots,
// talk to a live CAM host and so on.
type Factory interface {
	Open(ctx context.Context) (Session, error)
}
