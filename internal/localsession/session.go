// Package localsession provides a concrete implementation of the
// session.Session and session.Factory interfaces backed by a session
// snapshot loaded from local files.
package localsession

import (
	"context"
	"fmt"

	"github.com/vk/nxpost/internal/config"
	"github.com/vk/nxpost/internal/ctxlog"
	"github.com/vk/nxpost/internal/node"
	"github.com/vk/nxpost/internal/session"
)

// Factory implements session.Factory by loading a snapshot through a
// config.Loader.
type Factory struct {
	Loader config.Loader
	Paths  []string
}

// Open loads the snapshot and builds a Session from it.
func (f *Factory) Open(ctx context.Context) (session.Session, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("localsession.Factory.Open called", "paths", f.Paths)

	snap, err := f.Loader.LoadSnapshot(ctx, f.Paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}
	return New(ctx, snap), nil
}

// Session implements session.Session over an in-memory arena.
type Session struct {
	part    *config.Part
	arena   *node.Arena
	rootTag node.Tag
	hasRoot bool
}

var _ session.Session = (*Session)(nil)

// New builds the node graph of snap. Member references to unknown labels do
// not fail the build; they become read errors of the referring group.
func New(ctx context.Context, snap *config.Snapshot) *Session {
	logger := ctxlog.FromContext(ctx)
	s := &Session{part: snap.Part, arena: node.NewArena()}

	tags := make(map[string]node.Tag, len(snap.Groups)+len(snap.Operations))
	for _, g := range snap.Groups {
		tags[g.Label] = s.arena.AddGroup(g.Name)
	}
	for _, o := range snap.Operations {
		tags[o.Label] = s.arena.AddOperation(o.Name, o.Tool)
	}

	for _, g := range snap.Groups {
		parent := tags[g.Label]
		for _, member := range g.Members {
			child, ok := tags[member]
			if !ok {
				logger.Warn("Group references an unknown member.", "group", g.Label, "member", member)
				_ = s.arena.LinkError(parent, fmt.Errorf("unknown member %q", member))
				continue
			}
			// Both tags come from this arena, so Link cannot fail here.
			_ = s.arena.Link(parent, child)
		}
	}

	if snap.Part != nil && snap.Part.Root != "" {
		s.rootTag, s.hasRoot = tags[snap.Part.Root]
	}

	logger.Debug("Session graph built.", "nodes", s.arena.Len(), "has_root", s.hasRoot)
	return s
}

// PartName returns the part name, or "" when no part is open.
func (s *Session) PartName() string {
	if s.part == nil {
		return ""
	}
	return s.part.Name
}

// WorkpieceRoot returns the part's root group.
func (s *Session) WorkpieceRoot(ctx context.Context) (node.Node, error) {
	switch {
	case s.part == nil:
		return nil, session.ErrNoActiveWorkpiece
	case !s.part.CAMSetup:
		return nil, fmt.Errorf("%w: %q", session.ErrCAMNotActivated, s.part.Name)
	case !s.hasRoot:
		return nil, fmt.Errorf("%w: part %q has no root group", session.ErrCAMNotActivated, s.part.Name)
	}
	root, _ := s.arena.Node(s.rootTag)
	return root, nil
}

// GroupCollection returns the groups directly under root.
func (s *Session) GroupCollection(ctx context.Context, root node.Node) ([]node.Node, error) {
	members, err := node.SafeChildren(root)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Root members partially unreadable.", "root", node.SafeName(root), "error", err)
	}
	groups := make([]node.Node, 0, len(members))
	for _, m := range members {
		if m != nil && m.Kind() == node.KindGroup {
			groups = append(groups, m)
		}
	}
	return groups, nil
}
