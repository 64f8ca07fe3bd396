package hcl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/vk/nxpost/internal/config"
	"github.com/vk/nxpost/internal/ctxlog"
	"github.com/vk/nxpost/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	fs        afero.Fs
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a new HCL configuration loader reading through fsys.
func NewLoader(fsys afero.Fs) *Loader {
	return &Loader{fs: fsys, lookupEnv: os.LookupEnv}
}

var _ config.Loader = (*Loader)(nil)

// LoadSettings reads a single settings file. An empty path means no file,
// and the defaults are returned.
func (l *Loader) LoadSettings(ctx context.Context, path string) (*config.Settings, error) {
	logger := ctxlog.FromContext(ctx)
	if path == "" {
		logger.Debug("No settings file given, using defaults.")
		return config.DefaultSettings(), nil
	}
	logger.Debug("Loading settings file.", "path", path)

	src, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root settingsRoot
	diags = gohcl.DecodeBody(file.Body, newEvalContext(l.lookupEnv), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	settings, err := translateSettings(&root)
	if err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}

	logger.Debug("Settings loaded.", "path", path, "engine", settings.Engine.Kind, "profiles", len(settings.Batch.Profiles))
	return settings, nil
}

// LoadSnapshot parses every .hcl file under paths and merges the blocks into
// one snapshot.
func (l *Loader) LoadSnapshot(ctx context.Context, paths ...string) (*config.Snapshot, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Snapshot loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	var merged snapshotRoot

	for _, file := range hclFiles {
		src, err := afero.ReadFile(l.fs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot file %s: %w", file, err)
		}
		hclFile, diags := parser.ParseHCL(src, file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root snapshotRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		merged.Parts = append(merged.Parts, root.Parts...)
		merged.Groups = append(merged.Groups, root.Groups...)
		merged.Operations = append(merged.Operations, root.Operations...)
	}

	snapshot, err := translateSnapshot(&merged)
	if err != nil {
		return nil, err
	}

	logger.Debug("Snapshot loading complete.", "groups", len(snapshot.Groups), "operations", len(snapshot.Operations), "has_part", snapshot.Part != nil)
	return snapshot, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found. Unlike settings, a missing snapshot path is an error.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := l.fs.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("snapshot path %s does not exist: %w", path, err)
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}

		files, err := fsutil.FindFilesByExtension(l.fs, path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return allFiles, nil
}
