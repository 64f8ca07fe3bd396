package command

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nxpost/internal/node"
	"github.com/vk/nxpost/internal/postjob"
	"github.com/vk/nxpost/internal/testutil"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()
	_, err := New("   ", "", 0)
	assert.ErrorContains(t, err, "post command is empty")

	_, err = New(`postrun "unterminated`, "", 0)
	assert.ErrorContains(t, err, "failed to parse post command")
}

func TestArgs_SubstitutesPlaceholders(t *testing.T) {
	t.Parallel()
	e, err := New(`postrun -p {post} --out "{output}" --listing={listing} {kind}:{target} {units}`, "", 0)
	require.NoError(t, err)
	job := postjob.Job{
		ID:            uuid.New(),
		Target:        "OP DRILL",
		TargetKind:    node.KindOperation,
		Postprocessor: "DMU-60T",
		OutputPath:    "/tmp/out dir/OP DRILL.nc",
		EmitListing:   true,
		Units:         postjob.UnitsMetric,
	}

	args := e.Args(job)

	assert.Equal(t, []string{
		"postrun", "-p", "DMU-60T",
		"--out", "/tmp/out dir/OP DRILL.nc",
		"--listing=true",
		"operation:OP DRILL",
		"metric",
	}, args)
}

func TestSubmit_ExitStatusIsResultCode(t *testing.T) {
	t.Parallel()
	requireShell(t)
	ctx, _ := testutil.Context()

	ok, err := New(`sh -c "exit 0"`, "", 0)
	require.NoError(t, err)
	code, err := ok.Submit(ctx, postjob.Job{})
	require.NoError(t, err)
	assert.Zero(t, code)

	failing, err := New(`sh -c "exit 3"`, "", 0)
	require.NoError(t, err)
	code, err = failing.Submit(ctx, postjob.Job{})
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestSubmit_WritesOutput(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	requireShell(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "OP-1.nc")
	e, err := New(`sh -c "echo {post} {target} > {output}"`, dir, 0)
	require.NoError(t, err)
	ctx, logs := testutil.Context()

	// --- Act ---
	code, err := e.Submit(ctx, postjob.Job{Postprocessor: "HAAS-VF2", Target: "OP-1", OutputPath: out})

	// --- Assert ---
	require.NoError(t, err)
	assert.Zero(t, code)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "HAAS-VF2 OP-1\n", string(data))
	assert.Contains(t, logs.String(), "Running post command")
}

func TestSubmit_MissingExecutable(t *testing.T) {
	t.Parallel()
	e, err := New("nxpost-no-such-binary-for-tests {target}", "", 0)
	require.NoError(t, err)
	ctx, _ := testutil.Context()

	_, err = e.Submit(ctx, postjob.Job{Target: "OP-1"})

	assert.ErrorContains(t, err, "failed to run post command")
}

func TestSubmit_Timeout(t *testing.T) {
	t.Parallel()
	requireShell(t)
	e, err := New(`sh -c "sleep 5"`, "", 50*time.Millisecond)
	require.NoError(t, err)
	ctx, _ := testutil.Context()

	_, err = e.Submit(ctx, postjob.Job{})

	assert.ErrorContains(t, err, "post command interrupted")
}
