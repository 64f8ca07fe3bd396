package registry

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nxpost/internal/testutil"
	"golang.org/x/text/encoding/charmap"
)

const scenarioB = "HAAS-VF2, C:\\post\\haas.tcl\n# comment\nBAD_LINE\nDMU-60T, ${UGII_CAM_POST_DIR}\\dmu.tcl,extra\n"

func newLoader(t *testing.T, fs afero.Fs, enc string) *Loader {
	t.Helper()
	l, err := NewLoader(fs, enc)
	require.NoError(t, err)
	return l
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	fs := testutil.MemFS(t, map[string]string{"post/template_post.dat": scenarioB})
	ctx, _ := testutil.Context()

	// --- Act ---
	catalog := newLoader(t, fs, "").Load(ctx, "post/template_post.dat")

	// --- Assert ---
	require.NoError(t, catalog.Err)
	assert.Equal(t, []string{"HAAS-VF2 (haas.tcl)", "DMU-60T (dmu.tcl)"}, catalog.Lines())
	assert.Equal(t, []string{"HAAS-VF2", "DMU-60T"}, catalog.Names())
	assert.Len(t, catalog.Skipped, 1)
	assert.Empty(t, catalog.Diagnostic())
}

func TestLoader_Idempotent(t *testing.T) {
	t.Parallel()
	fs := testutil.MemFS(t, map[string]string{"r.dat": scenarioB})
	ctx, _ := testutil.Context()
	l := newLoader(t, fs, "")

	first := l.Load(ctx, "r.dat")
	second := l.Load(ctx, "r.dat")

	assert.Equal(t, first.Entries, second.Entries)
}

func TestLoader_MissingFile(t *testing.T) {
	t.Parallel()
	ctx, logs := testutil.Context()
	path := filepath.Join("nowhere", "template_post.dat")

	catalog := newLoader(t, afero.NewMemMapFs(), "").Load(ctx, path)

	assert.ErrorIs(t, catalog.Err, ErrFileMissing)
	assert.Empty(t, catalog.Entries)
	assert.Equal(t, []string{"Postprocessor registry file not found: " + path}, catalog.Lines())
	assert.Contains(t, logs.String(), "Postprocessor registry unavailable")
}

func TestLoader_NoLocation(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context()

	catalog := newLoader(t, afero.NewMemMapFs(), "").Load(ctx, "")

	assert.ErrorIs(t, catalog.Err, ErrNoLocation)
	assert.Equal(t, []string{"Postprocessor registry location unknown: set UGII_CAM_POST_DIR or registry.path"}, catalog.Lines())
}

func TestLoader_Windows1251(t *testing.T) {
	t.Parallel()
	encoded, err := charmap.Windows1251.NewEncoder().String("ФРЕЗЕР-1, ${UGII_CAM_POST_DIR}\\фрезер.tcl\n")
	require.NoError(t, err)
	fs := testutil.MemFS(t, map[string]string{"r.dat": encoded})
	ctx, _ := testutil.Context()

	catalog := newLoader(t, fs, "windows-1251").Load(ctx, "r.dat")

	require.NoError(t, catalog.Err)
	assert.Equal(t, []Entry{{DisplayName: "ФРЕЗЕР-1", SourceFileName: "фрезер.tcl"}}, catalog.Entries)
}

func TestLoader_StripsUTF8BOM(t *testing.T) {
	t.Parallel()
	fs := testutil.MemFS(t, map[string]string{"r.dat": "\ufeffHAAS,haas.tcl\n"})
	ctx, _ := testutil.Context()

	catalog := newLoader(t, fs, "utf-8").Load(ctx, "r.dat")

	assert.Equal(t, []string{"HAAS"}, catalog.Names())
}

func TestNewLoader_UnknownEncoding(t *testing.T) {
	t.Parallel()
	_, err := NewLoader(afero.NewMemMapFs(), "ebcdic")
	assert.ErrorContains(t, err, `unsupported registry encoding "ebcdic"`)
}

// countingSource records how often the underlying loader was asked.
type countingSource struct {
	mu    sync.Mutex
	calls int
	inner Source
}

func (s *countingSource) Load(ctx context.Context, path string) *Catalog {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.inner.Load(ctx, path)
}

func TestCache_StickyUntilReset(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	fs := afero.NewMemMapFs()
	ctx, logs := testutil.Context()
	src := &countingSource{inner: newLoader(t, fs, "")}
	cache := NewCache(src)

	// --- Act & Assert: a failure is cached too ---
	first := cache.Load(ctx, "r.dat")
	assert.ErrorIs(t, first.Err, ErrFileMissing)
	assert.True(t, cache.Loaded())

	require.NoError(t, afero.WriteFile(fs, "r.dat", []byte(scenarioB), 0o644))
	assert.Same(t, first, cache.Load(ctx, "r.dat"))
	assert.Same(t, first, cache.Load(ctx, "other.dat"))
	assert.Contains(t, logs.String(), "Registry cache holds a different path")
	assert.Equal(t, 1, src.calls)

	// --- Act & Assert: reset reloads ---
	cache.Reset()
	assert.False(t, cache.Loaded())
	reloaded := cache.Load(ctx, "r.dat")
	require.NoError(t, reloaded.Err)
	assert.Len(t, reloaded.Entries, 2)
	assert.Equal(t, 2, src.calls)
}

func TestCache_ConcurrentLoadsReadOnce(t *testing.T) {
	t.Parallel()
	fs := testutil.MemFS(t, map[string]string{"r.dat": scenarioB})
	ctx, _ := testutil.Context()
	src := &countingSource{inner: newLoader(t, fs, "")}
	cache := NewCache(src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Load(ctx, "r.dat")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.calls)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(PostDirEnv, "")
	assert.Empty(t, DefaultPath())

	t.Setenv(PostDirEnv, filepath.Join("opt", "post"))
	assert.Equal(t, filepath.Join("opt", "post", DefaultFileName), DefaultPath())
}
