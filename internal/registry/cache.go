package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/vk/nxpost/internal/ctxlog"
)

// PostDirEnv names the variable pointing at the CAM postprocessor directory.
const PostDirEnv = "UGII_CAM_POST_DIR"

// DefaultFileName is the catalog file name inside the postprocessor directory.
const DefaultFileName = "template_post.dat"

// DefaultPath returns the catalog location derived from the environment, or
// "" when the postprocessor directory is not configured.
func DefaultPath() string {
	dir := os.Getenv(PostDirEnv)
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, DefaultFileName)
}

// Cache memoizes the first catalog it loads. Later calls return the same
// result, even if it was a failure or a different path is asked for, until
// Reset is called. It is safe for concurrent use.
type Cache struct {
	source Source

	mu      sync.Mutex
	catalog *Catalog
}

// NewCache wraps source.
func NewCache(source Source) *Cache {
	return &Cache{source: source}
}

// Load returns the cached catalog, loading it through the source on first use.
func (c *Cache) Load(ctx context.Context, path string) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.catalog != nil {
		if c.catalog.Path != path {
			ctxlog.FromContext(ctx).Warn(
				"Registry cache holds a different path, returning cached result.",
				"cached", c.catalog.Path, "requested", path,
			)
		}
		return c.catalog
	}

	c.catalog = c.source.Load(ctx, path)
	return c.catalog
}

// Reset drops the cached result so the next Load reads again.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.catalog = nil
	c.mu.Unlock()
}

// Loaded reports whether a result is cached.
func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog != nil
}
