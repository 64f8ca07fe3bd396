package app

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/vk/nxpost/internal/hcl"
	"github.com/vk/nxpost/internal/postjob"
	"github.com/vk/nxpost/internal/testutil"
)

const sessionHCL = `
part "BRACKET" {
  root = "program"
}

group "program" {
  name    = "PROGRAM"
  members = ["setup1", "misc"]
}

group "setup1" {
  name    = "SETUP-1"
  members = ["p1", "wp"]
}

group "p1" {
  name    = "P1_5X_TOP"
  members = ["rough", "finish"]
}

group "wp" {
  name    = "WORKPIECE"
  members = ["probe"]
}

group "misc" {
  name = "MISC"
}

operation "rough" {
  name = "ROUGH"
  tool = "EM12"
}

operation "finish" {
  name = "FINISH"
  tool = "EM6"
}

operation "probe" {
  name = "PROBE"
}
`

const registryDat = "DMU-5axis, ${UGII_CAM_POST_DIR}\\dmu5.tcl\nHAAS-VF2, C:\\post\\haas.tcl\n"

// recordingEngine accepts every job and remembers it.
type recordingEngine struct {
	mu   sync.Mutex
	jobs []postjob.Job
	code int
}

func (e *recordingEngine) Submit(_ context.Context, job postjob.Job) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs = append(e.jobs, job)
	return e.code, nil
}

type appTest struct {
	App    *App
	Out    *testutil.SafeBuffer
	Logs   *testutil.SafeBuffer
	FS     afero.Fs
	Engine *recordingEngine
}

// setupAppTest creates an App over an in-memory filesystem holding a session
// snapshot, a registry file and the given settings text. Jobs go to a
// recording engine unless opts replace it.
func setupAppTest(t *testing.T, settings string, opts ...Option) *appTest {
	t.Helper()

	files := map[string]string{
		"session/part.hcl":       sessionHCL,
		"post/template_post.dat": registryDat,
	}
	cfg := Config{SessionPaths: []string{"session"}, LogLevel: "debug"}
	if settings != "" {
		files["nxpost.hcl"] = settings
		cfg.SettingsPath = "nxpost.hcl"
	}
	fs := testutil.MemFS(t, files)
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	out, logs := &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	eng := &recordingEngine{}
	a, err := NewApp(out, logs, fs, appConfig, hcl.NewLoader(fs), append([]Option{WithEngine(eng)}, opts...)...)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = a.Close()
		if os.Getenv("NXPOST_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return &appTest{App: a, Out: out, Logs: logs, FS: fs, Engine: eng}
}

const baseSettings = `
registry {
  path = "post/template_post.dat"
}
`
