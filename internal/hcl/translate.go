package hcl

import (
	"fmt"
	"time"

	"github.com/vk/nxpost/internal/config"
)

// translateSettings converts the HCL-specific settings schema into the
// agnostic model. Defaults are applied by the caller.
func translateSettings(root *settingsRoot) (*config.Settings, error) {
	s := &config.Settings{}

	if c := root.Classification; c != nil {
		s.Classification = config.Classification{
			SetupPrefixes:   c.SetupPrefixes,
			ExcludePrefixes: c.ExcludePrefixes,
		}
	}
	if r := root.Registry; r != nil {
		s.Registry = config.Registry{Path: r.Path, Encoding: r.Encoding}
	}
	if r := root.Report; r != nil {
		s.Report = config.Report{
			SortSetups: r.SortSetups,
			Excluded:   r.Excluded,
			Indent:     r.Indent,
			GroupsOnly: r.GroupsOnly,
			ShowTools:  r.ShowTools,
			SaveDir:    r.SaveDir,
		}
	}
	if p := root.Post; p != nil {
		s.Post = config.Post{Extension: p.Extension, Units: p.Units, OutputDir: p.OutputDir}
	}
	if b := root.Batch; b != nil {
		s.Batch.Overwrite = b.Overwrite
	}

	engine, err := translateEngines(root.Engines)
	if err != nil {
		return nil, err
	}
	s.Engine = engine

	profiles, err := translateProfiles(root.Profiles)
	if err != nil {
		return nil, err
	}
	s.Batch.Profiles = profiles

	return s, nil
}

func translateEngines(blocks []*engineBlock) (config.Engine, error) {
	if len(blocks) == 0 {
		return config.Engine{}, nil
	}
	if len(blocks) > 1 {
		return config.Engine{}, fmt.Errorf("only one engine block is allowed, found %d", len(blocks))
	}

	b := blocks[0]
	e := config.Engine{Kind: b.Kind}
	timeout, err := parseTimeout(b.Timeout)
	if err != nil {
		return config.Engine{}, fmt.Errorf("engine %q: %w", b.Kind, err)
	}

	switch b.Kind {
	case config.EngineSocketIO:
		e.SocketIO = &config.SocketIOEngine{
			URL:                b.URL,
			Namespace:          b.Namespace,
			Timeout:            timeout,
			InsecureSkipVerify: b.InsecureSkipVerify,
		}
	case config.EngineCommand:
		e.Command = &config.CommandEngine{
			Command: b.Command,
			Dir:     b.Dir,
			Timeout: timeout,
		}
	}
	return e, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse timeout: %w", err)
	}
	return d, nil
}

func translateProfiles(blocks []*profileBlock) (map[string][]config.Target, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	profiles := make(map[string][]config.Target, len(blocks))
	for _, p := range blocks {
		if _, dup := profiles[p.Name]; dup {
			return nil, fmt.Errorf("profile %q is defined more than once", p.Name)
		}
		targets := make([]config.Target, 0, len(p.Targets))
		for _, t := range p.Targets {
			targets = append(targets, config.Target{Postprocessor: t.Postprocessor, Extension: t.Extension})
		}
		profiles[p.Name] = targets
	}
	return profiles, nil
}

// translateSnapshot converts the merged snapshot schema into the agnostic
// model. Labels must be unique across groups and operations.
func translateSnapshot(root *snapshotRoot) (*config.Snapshot, error) {
	s := &config.Snapshot{}

	switch len(root.Parts) {
	case 0:
	case 1:
		p := root.Parts[0]
		camSetup := true
		if p.CAMSetup != nil {
			camSetup = *p.CAMSetup
		}
		s.Part = &config.Part{Name: p.Name, CAMSetup: camSetup, Root: p.Root}
	default:
		return nil, fmt.Errorf("snapshot declares %d part blocks, expected at most one", len(root.Parts))
	}

	labels := make(map[string]string)
	claim := func(kind, label string) error {
		if prev, ok := labels[label]; ok {
			return fmt.Errorf("duplicate label %q: already used by a %s", label, prev)
		}
		labels[label] = kind
		return nil
	}

	for _, g := range root.Groups {
		if err := claim("group", g.Label); err != nil {
			return nil, err
		}
		name := g.Name
		if name == "" {
			name = g.Label
		}
		s.Groups = append(s.Groups, &config.Group{Label: g.Label, Name: name, Members: g.Members})
	}
	for _, o := range root.Operations {
		if err := claim("operation", o.Label); err != nil {
			return nil, err
		}
		name := o.Name
		if name == "" {
			name = o.Label
		}
		s.Operations = append(s.Operations, &config.Operation{Label: o.Label, Name: name, Tool: o.Tool})
	}

	if s.Part != nil && s.Part.CAMSetup && s.Part.Root != "" {
		if kind, ok := labels[s.Part.Root]; !ok || kind != "group" {
			return nil, fmt.Errorf("part %q: root %q is not a declared group", s.Part.Name, s.Part.Root)
		}
	}
	return s, nil
}
