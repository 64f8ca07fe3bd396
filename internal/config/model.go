package config

import (
	"time"
)

// Settings is the unified, format-agnostic representation of the user
// settings file.
type Settings struct {
	Classification Classification
	Registry       Registry
	Report         Report
	Engine         Engine
	Post           Post
	Batch          Batch
}

// Classification holds the group name prefixes. A nil slice means "use the
// built-in list"; an empty non-nil slice disables the rule.
type Classification struct {
	SetupPrefixes   []string
	ExcludePrefixes []string
}

// Registry locates the postprocessor catalog.
type Registry struct {
	Path     string
	Encoding string
}

// Report controls the structure report.
type Report struct {
	SortSetups bool
	Excluded   string
	Indent     string
	GroupsOnly bool
	ShowTools  bool
	SaveDir    string
}

// Engine kinds.
const (
	EngineSocketIO = "socketio"
	EngineCommand  = "command"
)

// Engine selects and configures the post engine. Kind is empty when no
// engine block was given.
type Engine struct {
	Kind     string
	SocketIO *SocketIOEngine
	Command  *CommandEngine
}

// SocketIOEngine talks to a remote post server.
type SocketIOEngine struct {
	URL                string
	Namespace          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// CommandEngine runs a local post command.
type CommandEngine struct {
	Command string
	Dir     string
	Timeout time.Duration
}

// Post holds defaults for single-operation dispatch.
type Post struct {
	Extension string
	Units     string
	OutputDir string
}

// Batch holds the batch profiles and overwrite policy. Profiles override
// the built-in profile of the same name.
type Batch struct {
	Overwrite string
	Profiles  map[string][]Target
}

// Target is one postprocessor/extension pair of a batch profile.
type Target struct {
	Postprocessor string
	Extension     string
}

// Defaults.
const (
	DefaultIndent          = "    "
	DefaultExcluded        = "skip"
	DefaultExtension       = ".nc"
	DefaultUnits           = "metric"
	DefaultOverwrite       = "always"
	DefaultNamespace       = "/"
	DefaultSocketIOTimeout = 2 * time.Minute
)

// DefaultSettings returns settings with every default applied.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills every unset field with its default.
func (s *Settings) ApplyDefaults() {
	if s.Report.Indent == "" {
		s.Report.Indent = DefaultIndent
	}
	if s.Report.Excluded == "" {
		s.Report.Excluded = DefaultExcluded
	}
	if s.Post.Extension == "" {
		s.Post.Extension = DefaultExtension
	}
	if s.Post.Units == "" {
		s.Post.Units = DefaultUnits
	}
	if s.Batch.Overwrite == "" {
		s.Batch.Overwrite = DefaultOverwrite
	}
	if sio := s.Engine.SocketIO; sio != nil {
		if sio.Namespace == "" {
			sio.Namespace = DefaultNamespace
		}
		if sio.Timeout == 0 {
			sio.Timeout = DefaultSocketIOTimeout
		}
	}
}

// --- Session Snapshot Models ---

// Snapshot is a frozen view of a CAM session: the open part and its group
// graph. Labels are the identities of nodes; names are what users see.
type Snapshot struct {
	Part       *Part
	Groups     []*Group
	Operations []*Operation
}

// Part is the open workpiece.
type Part struct {
	Name     string
	CAMSetup bool
	Root     string
}

// Group is a group node and the labels of its members, in order.
type Group struct {
	Label   string
	Name    string
	Members []string
}

// Operation is a leaf node.
type Operation struct {
	Label string
	Name  string
	Tool  string
}
