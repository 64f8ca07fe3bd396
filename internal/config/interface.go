package config

import (
	"context"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// LoadSettings reads the settings file at path and applies defaults for
	// everything it does not set. An empty path yields DefaultSettings.
	LoadSettings(ctx context.Context, path string) (*Settings, error)

	// LoadSnapshot reads a session snapshot from one or more files or
	// directories and merges their blocks.
	LoadSnapshot(ctx context.Context, paths ...string) (*Snapshot, error)
}
