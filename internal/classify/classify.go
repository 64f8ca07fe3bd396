// Package classify decides which program groups are setup roots worth
// reporting and which are service groups (geometry, blanks, coordinate
// systems) to suppress. Matching is by name prefix, ignoring case in every
// script the shop floor uses, Cyrillic included.
package classify

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultSetupPrefixes are the names a setup group starts with, in the
// English and Russian conventions seen in production sessions.
var DefaultSetupPrefixes = []string{
	"SETUP-", "SETUP_",
	"УСТАНОВ-", "УСТАНОВ_",
	"SETTING-", "SETTING_",
	"SET-", "SET_",
	"УСТ_", "УСТ-",
}

// DefaultExcludePrefixes name service subgroups that never appear in a report.
var DefaultExcludePrefixes = []string{
	"WORKPIECE",
	"GEOMETRY",
	"MCS",
	"BLANK",
	"ЗАГОТОВ",
	"ГЕОМЕТР",
	"NONE",
}

// Rules holds the two prefix sets. The zero value matches nothing.
type Rules struct {
	setup   []string
	exclude []string
}

// NewRules folds the given prefixes once so that every later match is a
// plain prefix test. Empty prefixes are dropped.
func NewRules(setupPrefixes, excludePrefixes []string) *Rules {
	return &Rules{
		setup:   foldAll(setupPrefixes),
		exclude: foldAll(excludePrefixes),
	}
}

// DefaultRules returns rules built from the default prefix sets.
func DefaultRules() *Rules {
	return NewRules(DefaultSetupPrefixes, DefaultExcludePrefixes)
}

// IsSetupGroup reports whether name starts with any setup prefix.
func (r *Rules) IsSetupGroup(name string) bool {
	return r != nil && hasAnyPrefix(name, r.setup)
}

// ShouldExclude reports whether name starts with any exclude prefix.
func (r *Rules) ShouldExclude(name string) bool {
	return r != nil && hasAnyPrefix(name, r.exclude)
}

// SetupPrefixes returns the folded setup prefixes.
func (r *Rules) SetupPrefixes() []string {
	return append([]string(nil), r.setup...)
}

// ExcludePrefixes returns the folded exclude prefixes.
func (r *Rules) ExcludePrefixes() []string {
	return append([]string(nil), r.exclude...)
}

func hasAnyPrefix(name string, folded []string) bool {
	if name == "" || len(folded) == 0 {
		return false
	}
	name = fold(name)
	for _, p := range folded {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func foldAll(prefixes []string) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		out = append(out, fold(p))
	}
	return out
}

// fold uses a fresh Caser per call: a Caser keeps state between calls and
// must not be shared.
func fold(s string) string {
	return cases.Fold().String(s)
}
