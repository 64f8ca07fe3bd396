package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
	"github.com/vk/nxpost/internal/ctxlog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrFileMissing is the cause recorded when the catalog file does not exist.
	ErrFileMissing = errors.New("postprocessor registry file not found")
	// ErrNoLocation is the cause recorded when no catalog path is known.
	ErrNoLocation = errors.New("postprocessor registry location unknown")
)

// Catalog is the outcome of one load: either entries or a failure cause.
type Catalog struct {
	Path    string
	Entries []Entry
	Skipped []LineIssue
	Err     error
}

// Lines returns what a report lists for this catalog: one line per entry,
// or a single diagnostic sentence when the file could not be read.
func (c *Catalog) Lines() []string {
	if c.Err != nil {
		return []string{c.Diagnostic()}
	}
	lines := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		lines = append(lines, e.String())
	}
	return lines
}

// Diagnostic returns the human-readable failure, or "" on success.
func (c *Catalog) Diagnostic() string {
	switch {
	case c.Err == nil:
		return ""
	case errors.Is(c.Err, ErrNoLocation):
		return fmt.Sprintf("Postprocessor registry location unknown: set %s or registry.path", PostDirEnv)
	case errors.Is(c.Err, ErrFileMissing):
		return fmt.Sprintf("Postprocessor registry file not found: %s", c.Path)
	default:
		return fmt.Sprintf("Cannot read postprocessor registry %s: %v", c.Path, c.Err)
	}
}

// Names returns the display names of all entries.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		names = append(names, e.DisplayName)
	}
	return names
}

// Source produces catalogs. Loader and Cache both implement it.
type Source interface {
	Load(ctx context.Context, path string) *Catalog
}

// Loader reads catalog files from a filesystem.
type Loader struct {
	fs       afero.Fs
	encoding encoding.Encoding
}

// NewLoader creates a Loader reading through fsys and decoding files with
// the named character encoding. An empty name means UTF-8.
func NewLoader(fsys afero.Fs, encodingName string) (*Loader, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &Loader{fs: fsys, encoding: enc}, nil
}

// LookupEncoding resolves the encodings catalogs are known to be written in.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251, nil
	case "cp866", "ibm866":
		return charmap.CodePage866, nil
	case "koi8-r", "koi8r":
		return charmap.KOI8R, nil
	default:
		return nil, fmt.Errorf("unsupported registry encoding %q", name)
	}
}

// Load reads and parses the catalog at path. It never returns nil and
// never fails; problems are recorded in the Catalog.
func (l *Loader) Load(ctx context.Context, path string) *Catalog {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading postprocessor registry.", "path", path)

	catalog := &Catalog{Path: path}
	if path == "" {
		catalog.Err = ErrNoLocation
		logger.Warn("Postprocessor registry unavailable.", "error", catalog.Err)
		return catalog
	}

	f, err := l.fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			catalog.Err = fmt.Errorf("%w: %s", ErrFileMissing, path)
		} else {
			catalog.Err = fmt.Errorf("failed to open registry: %w", err)
		}
		logger.Warn("Postprocessor registry unavailable.", "path", path, "error", catalog.Err)
		return catalog
	}
	defer f.Close()

	entries, issues, err := Parse(l.reader(f))
	catalog.Entries = entries
	catalog.Skipped = issues
	if err != nil {
		catalog.Entries = nil
		catalog.Err = err
		logger.Warn("Postprocessor registry could not be read.", "path", path, "error", err)
		return catalog
	}

	for _, issue := range issues {
		logger.Debug("Skipped registry line.", "path", path, "issue", issue.Error())
	}
	logger.Debug("Postprocessor registry loaded.", "path", path, "entries", len(entries), "skipped", len(issues))
	return catalog
}

func (l *Loader) reader(r io.Reader) io.Reader {
	if l.encoding == unicode.UTF8 {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}
	return transform.NewReader(r, l.encoding.NewDecoder())
}
