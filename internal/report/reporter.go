package report

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/nxpost/internal/classify"
	"github.com/vk/nxpost/internal/ctxlog"
	"github.com/vk/nxpost/internal/node"
)

// Line markers.
const (
	GroupMarker     = "- "
	OperationMarker = "• "
	toolLabel       = "  tool: "
	noTool          = "<none>"
)

// Reporter renders the group hierarchy of a session as indented text.
type Reporter struct {
	rules  *classify.Rules
	policy Policy
}

// New creates a Reporter. A nil rules value classifies nothing as a setup
// group and excludes nothing.
func New(rules *classify.Rules, policy Policy) *Reporter {
	return &Reporter{rules: rules, policy: policy}
}

// Structure walks a group collection. Only members classified as setup
// groups are entered; everything else at the top level is ignored.
func (r *Reporter) Structure(ctx context.Context, groups []node.Node) string {
	logger := ctxlog.FromContext(ctx)

	setups := make([]topLevel, 0, len(groups))
	for _, g := range groups {
		entry, keep := r.classifyTop(ctx, g)
		if keep {
			setups = append(setups, entry)
		}
	}

	if r.policy.SortSetups {
		slices.SortStableFunc(setups, func(a, b topLevel) int {
			return strings.Compare(a.name, b.name)
		})
	}

	w := r.newWalker(ctx)
	for _, e := range setups {
		if e.err != nil {
			w.errorLine(0, e.err)
			continue
		}
		w.visit(e.node, 0, w.group)
	}

	logger.Debug("Structure report rendered.", "setup_groups", len(setups), "visited", len(w.visited), "lines", w.lines)
	return w.sb.String()
}

// topLevel is one entry of the group collection that made it into the
// report: a setup group, or the error raised while classifying an entry.
type topLevel struct {
	node node.Node
	name string
	err  error
}

// classifyTop decides whether g is a setup group. A panic raised by the
// session object keeps the entry as an error so it is reported in place.
func (r *Reporter) classifyTop(ctx context.Context, g node.Node) (entry topLevel, keep bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ctxlog.FromContext(ctx).Warn("Cannot classify top-level group.", "group", node.SafeName(g), "panic", rec)
			entry = topLevel{name: node.SafeName(g), err: fmt.Errorf("cannot read group %q: %v", node.SafeName(g), rec)}
			keep = true
		}
	}()

	if g == nil || g.Kind() != node.KindGroup {
		return topLevel{}, false
	}
	name := g.Name()
	if !r.rules.IsSetupGroup(name) {
		ctxlog.FromContext(ctx).Debug("Skipping non-setup top-level group.", "group", node.SafeName(g))
		return topLevel{}, false
	}
	return topLevel{node: g, name: name}, true
}

// Subtree walks from a single selected group without applying the setup
// filter to it. Service groups below it are still handled per policy.
func (r *Reporter) Subtree(ctx context.Context, start node.Node) string {
	w := r.newWalker(ctx)
	if start != nil {
		w.visit(start, 0, w.group)
	}
	ctxlog.FromContext(ctx).Debug("Subtree report rendered.", "start", node.SafeName(start), "visited", len(w.visited), "lines", w.lines)
	return w.sb.String()
}

func (r *Reporter) newWalker(ctx context.Context) *walker {
	return &walker{
		ctx:     ctx,
		rules:   r.rules,
		policy:  r.policy,
		indent:  r.policy.indent(),
		visited: make(map[node.Tag]struct{}),
	}
}

// walker holds the state of one traversal.
type walker struct {
	ctx     context.Context
	rules   *classify.Rules
	policy  Policy
	indent  string
	visited map[node.Tag]struct{}
	sb      strings.Builder
	lines   int
}

// enter marks n as visited and reports whether it was new.
func (w *walker) enter(n node.Node) bool {
	if _, seen := w.visited[n.Tag()]; seen {
		ctxlog.FromContext(w.ctx).Debug("Node already reported, skipping.", "node", node.SafeName(n), "tag", n.Tag())
		return false
	}
	w.visited[n.Tag()] = struct{}{}
	return true
}

func (w *walker) group(n node.Node, depth int) {
	if !w.enter(n) {
		return
	}
	w.line(depth, GroupMarker+node.SafeName(n))
	w.members(n, depth+1)
}

func (w *walker) members(n node.Node, depth int) {
	children, err := node.SafeChildren(n)
	if err != nil {
		ctxlog.FromContext(w.ctx).Warn("Cannot read group members.", "group", node.SafeName(n), "error", err)
		w.errorLine(depth, err)
	}

	for _, child := range children {
		if child == nil {
			continue
		}
		w.visit(child, depth, w.member)
	}
}

func (w *walker) member(child node.Node, depth int) {
	switch child.Kind() {
	case node.KindOperation:
		w.operation(child, depth)
	case node.KindGroup:
		if w.rules.ShouldExclude(child.Name()) {
			w.excluded(child, depth)
			return
		}
		w.group(child, depth)
	}
}

// visit renders n with render. A panic raised by the session object while n
// is rendered becomes an error line at depth and the walk moves on to the
// next sibling.
func (w *walker) visit(n node.Node, depth int, render func(node.Node, int)) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(w.ctx).Warn("Cannot read session object.", "node", node.SafeName(n), "panic", r)
			w.errorLine(depth, fmt.Errorf("cannot read %q: %v", node.SafeName(n), r))
		}
	}()
	render(n, depth)
}

func (w *walker) errorLine(depth int, err error) {
	w.line(depth, "[error: "+err.Error()+"]")
}

func (w *walker) excluded(n node.Node, depth int) {
	if w.policy.Excluded != ExcludeHoist {
		ctxlog.FromContext(w.ctx).Debug("Service group excluded.", "group", node.SafeName(n))
		return
	}
	if !w.enter(n) {
		return
	}
	w.members(n, depth)
}

func (w *walker) operation(n node.Node, depth int) {
	if !w.enter(n) {
		return
	}
	if w.policy.GroupsOnly {
		return
	}
	w.line(depth, OperationMarker+node.SafeName(n))
	if w.policy.ShowTools {
		tool := noTool
		if t, ok := n.(node.Tooled); ok && t.Tool() != "" {
			tool = t.Tool()
		}
		w.line(depth, toolLabel+tool)
	}
}

func (w *walker) line(depth int, text string) {
	w.sb.WriteString(strings.Repeat(w.indent, depth))
	w.sb.WriteString(text)
	w.sb.WriteByte('\n')
	w.lines++
}
