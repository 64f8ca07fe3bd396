package report

import (
	"fmt"
	"strings"
)

// ExcludedMode controls what happens to a group whose name marks it as a
// service group.
type ExcludedMode int

const (
	// ExcludeSkip omits the group and everything below it.
	ExcludeSkip ExcludedMode = iota
	// ExcludeHoist omits the group line but reports its members in its
	// place, at the same depth.
	ExcludeHoist
)

// String implements fmt.Stringer.
func (m ExcludedMode) String() string {
	switch m {
	case ExcludeSkip:
		return "skip"
	case ExcludeHoist:
		return "hoist"
	default:
		return fmt.Sprintf("ExcludedMode(%d)", int(m))
	}
}

// ParseExcludedMode converts a settings or flag value into an ExcludedMode.
// The empty string selects ExcludeSkip.
func ParseExcludedMode(s string) (ExcludedMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return ExcludeSkip, nil
	case "hoist":
		return ExcludeHoist, nil
	default:
		return ExcludeSkip, fmt.Errorf("invalid excluded mode %q: must be 'skip' or 'hoist'", s)
	}
}

// DefaultIndent is the unit repeated once per depth level.
const DefaultIndent = "    "

// Policy selects one of the supported report variants.
type Policy struct {
	// SortSetups sorts the top-level setup groups by name before traversal.
	// Deeper levels always keep session order.
	SortSetups bool
	// Excluded selects how service groups are handled.
	Excluded ExcludedMode
	// GroupsOnly omits operation lines, leaving the bare group structure.
	GroupsOnly bool
	// ShowTools adds the cutting tool of every operation.
	ShowTools bool
	// Indent is repeated once per depth level. Empty means DefaultIndent.
	Indent string
}

// DefaultPolicy returns the canonical report variant.
func DefaultPolicy() Policy {
	return Policy{Indent: DefaultIndent}
}

func (p Policy) indent() string {
	if p.Indent == "" {
		return DefaultIndent
	}
	return p.Indent
}
