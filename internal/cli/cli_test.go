package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nxpost/internal/app"
	"github.com/vk/nxpost/internal/hcl"
	"github.com/vk/nxpost/internal/node"
	"github.com/vk/nxpost/internal/postjob"
	"github.com/vk/nxpost/internal/session"
	"github.com/vk/nxpost/internal/testutil"
)

const snapshotHCL = `
part "HOUSING" {
  root = "program"
}

group "program" {
  name    = "PROGRAM"
  members = ["setup"]
}

group "setup" {
  name    = "SETUP_A"
  members = ["p1"]
}

group "p1" {
  name    = "P1_4X_SIDE"
  members = ["face"]
}

operation "face" {
  name = "FACE"
}
`

// factory returns an AppFactory over an in-memory session whose engine
// answers every job with code.
func factory(t *testing.T, code int) (AppFactory, *testutil.SafeBuffer) {
	t.Helper()
	fs := testutil.MemFS(t, map[string]string{"part.hcl": snapshotHCL})
	logs := &testutil.SafeBuffer{}
	eng := postjob.EngineFunc(func(context.Context, postjob.Job) (int, error) { return code, nil })
	out := &testutil.SafeBuffer{}
	return func(cfg *app.Config) (*app.App, error) {
		return app.NewApp(out, logs, fs, cfg, hcl.NewLoader(fs), app.WithEngine(eng))
	}, out
}

func TestExecute(t *testing.T) {
	testCases := []struct {
		name       string
		args       []string
		engineCode int
		wantCode   int
		wantMsg    string
		wantOut    string
	}{
		{name: "help", args: []string{}, wantCode: ExitOK, wantOut: "Usage:"},
		{name: "unknown command", args: []string{"frobnicate"}, wantCode: ExitUsage, wantMsg: `unknown command "frobnicate"`},
		{name: "unknown flag", args: []string{"report", "--nope"}, wantCode: ExitUsage, wantMsg: "unknown flag: --nope"},
		{name: "bad log level", args: []string{"posts", "--log-level", "loud"}, wantCode: ExitUsage, wantMsg: `invalid log-level "loud"`},
		{name: "post without operation", args: []string{"post", "-s", "part.hcl"}, wantCode: ExitUsage},
		{name: "post without postprocessor", args: []string{"post", "-s", "part.hcl", "FACE"}, wantCode: ExitUsage, wantMsg: "--post"},
		{name: "no session", args: []string{"report"}, wantCode: ExitSession, wantMsg: "No CAM session given"},
		{name: "report", args: []string{"report", "-s", "part.hcl"}, wantCode: ExitOK, wantOut: "P1_4X_SIDE"},
		{name: "report from unknown", args: []string{"report", "-s", "part.hcl", "--from", "NOPE"}, wantCode: ExitNotFound},
		{name: "post", args: []string{"post", "-s", "part.hcl", "-p", "HAAS-VF2", "-o", "out", "FACE"}, wantCode: ExitOK, wantOut: "finished"},
		{name: "post missing operation", args: []string{"post", "-s", "part.hcl", "-p", "HAAS-VF2", "DRILL"}, wantCode: ExitNotFound},
		{name: "post engine failure", args: []string{"post", "-s", "part.hcl", "-p", "HAAS-VF2", "FACE"}, engineCode: 9, wantCode: ExitEngine, wantMsg: "code 9"},
		{name: "batch", args: []string{"batch", "-s", "part.hcl", "-o", "out", "SETUP_A"}, wantCode: ExitOK, wantOut: "P1_4X_SIDE → 4x"},
		{name: "batch failures", args: []string{"batch", "-s", "part.hcl", "-o", "out", "SETUP_A"}, engineCode: 2, wantCode: ExitEngine, wantMsg: "1 of 1 batch jobs failed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			newApp, appOut := factory(t, tc.engineCode)
			out := &testutil.SafeBuffer{}

			// --- Act ---
			err := Execute(context.Background(), out, tc.args, newApp)

			// --- Assert ---
			if tc.wantCode == ExitOK {
				require.NoError(t, err)
				assert.Contains(t, appOut.String()+out.String(), tc.wantOut)
				return
			}
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tc.wantCode, exitErr.Code, exitErr.Message)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestExecute_HelpListsCommands(t *testing.T) {
	newApp, _ := factory(t, 0)
	out := &testutil.SafeBuffer{}

	err := Execute(context.Background(), out, []string{"--help"}, newApp)

	require.NoError(t, err)
	for _, name := range []string{"report", "posts", "post", "batch", "--session"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestToExitError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "exit error passes through", err: fmt.Errorf("wrapped: %w", &ExitError{Code: 42}), wantCode: 42},
		{name: "no workpiece", err: session.ErrNoActiveWorkpiece, wantCode: ExitSession},
		{name: "cam off", err: fmt.Errorf("open: %w", session.ErrCAMNotActivated), wantCode: ExitSession},
		{name: "group lookup", err: fmt.Errorf("%w: %q", node.ErrGroupNotFound, "X"), wantCode: ExitNotFound},
		{name: "operation lookup", err: node.ErrOperationNotFound, wantCode: ExitNotFound},
		{name: "engine", err: &postjob.EngineFailure{Code: 3}, wantCode: ExitEngine},
		{name: "other", err: errors.New("disk on fire"), wantCode: ExitFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantCode, ToExitError(tc.err).Code)
		})
	}

	assert.Nil(t, ToExitError(nil))
}
