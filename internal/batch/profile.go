package batch

import (
	"fmt"
	"slices"
	"strings"
)

// Target is one postprocessor run per program, with the file extension the
// machine expects.
type Target struct {
	Postprocessor string
	Extension     string
}

// Profile is a named list of targets, usually one per machine of a given
// axis count.
type Profile struct {
	Name    string
	Targets []Target
}

// Profile names. ModeAuto is not a profile; it selects one per program.
const (
	Profile3X = "3x"
	Profile4X = "4x"
	Profile5X = "5x"
	ModeAuto  = "auto"
)

// Profiles maps a profile name to its targets.
type Profiles map[string]Profile

// DefaultProfiles returns the built-in machine profiles.
func DefaultProfiles() Profiles {
	return Profiles{
		Profile3X: {Name: Profile3X, Targets: []Target{
			{Postprocessor: "DMU-60T", Extension: ".i"},
			{Postprocessor: "OKUMA_MB-46VAE_3X", Extension: ".min"},
			{Postprocessor: "HAAS-VF2", Extension: ".txt"},
		}},
		Profile4X: {Name: Profile4X, Targets: []Target{
			{Postprocessor: "OKUMA_MB-46VAE_4X", Extension: ".min"},
		}},
		Profile5X: {Name: Profile5X, Targets: []Target{
			{Postprocessor: "DMU-5axis", Extension: ".i"},
		}},
	}
}

// Merge returns a copy of p with every profile of override replacing the
// one of the same name.
func (p Profiles) Merge(override Profiles) Profiles {
	out := make(Profiles, len(p)+len(override))
	for name, prof := range p {
		out[name] = prof
	}
	for name, prof := range override {
		prof.Name = name
		out[name] = prof
	}
	return out
}

// Names returns the profile names in sorted order.
func (p Profiles) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks that mode names a known profile or auto.
func (p Profiles) Validate(mode string) error {
	if mode == ModeAuto {
		for _, required := range []string{Profile3X, Profile4X, Profile5X} {
			if _, ok := p[required]; !ok {
				return fmt.Errorf("auto mode needs profile %q", required)
			}
		}
		return nil
	}
	if _, ok := p[mode]; !ok {
		return fmt.Errorf("unknown profile %q: expected one of %s or %q", mode, strings.Join(p.Names(), ", "), ModeAuto)
	}
	return nil
}

// Select returns the profile used for the program named programName. In
// auto mode the axis count is read from the name: "_5X_" selects 5x, "_4X_"
// selects 4x, anything else 3x.
func (p Profiles) Select(mode, programName string) Profile {
	if mode != ModeAuto {
		return p[mode]
	}
	return p[DetectProfile(programName)]
}

// DetectProfile infers the axis profile from a program name.
func DetectProfile(programName string) string {
	upper := strings.ToUpper(programName)
	switch {
	case strings.Contains(upper, "_5X_"):
		return Profile5X
	case strings.Contains(upper, "_4X_"):
		return Profile4X
	default:
		return Profile3X
	}
}

// ShortName is the program name up to the first underscore. Output files
// are named after it.
func ShortName(programName string) string {
	short, _, _ := strings.Cut(programName, "_")
	return short
}
