// Package report renders the CAM program group hierarchy as indented text.
//
// The walk is a depth-first pre-order traversal over a graph rather than a
// tree: a group may be a member of several parents, and a damaged session
// can even contain cycles. Every node is entered at most once, tracked by
// identity, so the cost is bounded by the number of reachable nodes.
//
// Failures below the top level never abort a report. A group whose members
// cannot be read gets an inline "[error: ...]" line and its siblings are
// still reported.
package report
