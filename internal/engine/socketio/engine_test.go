package socketio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nxpost/internal/node"
	"github.com/vk/nxpost/internal/postjob"
	"github.com/vk/nxpost/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

// fakeClient answers every post:submit with reply(payload), if set.
type fakeClient struct {
	mu        sync.Mutex
	listeners map[string]func(...any)
	emitted   []any
	reply     func(payload map[string]any) (event string, data []any)
	closed    bool
}

func newFakeClient(reply func(map[string]any) (string, []any)) *fakeClient {
	return &fakeClient{listeners: make(map[string]func(...any)), reply: reply}
}

func (c *fakeClient) Once(event string, fn func(...any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners[event] = fn
}

func (c *fakeClient) Off(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.listeners, event)
}

func (c *fakeClient) listenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

func (c *fakeClient) Emit(event string, args ...any) {
	c.mu.Lock()
	c.emitted = append(c.emitted, args...)
	reply := c.reply
	c.mu.Unlock()
	if event != SubmitEvent || reply == nil {
		return
	}
	payload := args[0].(map[string]any)
	replyEvent, data := reply(payload)
	c.mu.Lock()
	fn := c.listeners[replyEvent]
	delete(c.listeners, replyEvent)
	c.mu.Unlock()
	if fn != nil {
		go fn(data...)
	}
}

func (c *fakeClient) Connected() bool { return !c.closed }
func (c *fakeClient) ID() string      { return "fake-sid" }
func (c *fakeClient) Close()          { c.closed = true }

func newTestEngine(conn client, timeout time.Duration) (*Engine, *int) {
	dials := 0
	e := New(Config{URL: "http://localhost:3000/post", Namespace: "/", Timeout: timeout})
	e.dial = func(context.Context, Config) (client, error) {
		dials++
		return conn, nil
	}
	return e, &dials
}

func sampleJob() postjob.Job {
	return postjob.Job{
		ID:            uuid.New(),
		Target:        "OP-DRILL",
		TargetKind:    node.KindOperation,
		Postprocessor: "DMU-60T",
		OutputPath:    "out/OP-DRILL.nc",
		EmitListing:   true,
		Units:         postjob.UnitsMetric,
	}
}

func TestSubmit_RoundTrip(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	conn := newFakeClient(func(p map[string]any) (string, []any) {
		id := p["job_id"].(string)
		return ResultEventPrefix + id, []any{map[string]any{"job_id": id, "code": float64(0)}}
	})
	e, dials := newTestEngine(conn, time.Second)
	ctx, _ := testutil.Context()
	job := sampleJob()

	// --- Act ---
	code, err := e.Submit(ctx, job)

	// --- Assert ---
	require.NoError(t, err)
	assert.Zero(t, code)
	require.Len(t, conn.emitted, 1)
	assert.Equal(t, map[string]any{
		"job_id":        job.ID.String(),
		"target":        "OP-DRILL",
		"target_kind":   "operation",
		"postprocessor": "DMU-60T",
		"output":        "out/OP-DRILL.nc",
		"listing":       true,
		"ball_center":   false,
		"units":         "metric",
	}, conn.emitted[0])

	_, err = e.Submit(ctx, sampleJob())
	require.NoError(t, err)
	assert.Equal(t, 1, *dials, "connection is reused")
}

func TestSubmit_NonZeroCode(t *testing.T) {
	t.Parallel()
	conn := newFakeClient(func(p map[string]any) (string, []any) {
		return ResultEventPrefix + p["job_id"].(string), []any{map[string]any{"code": float64(12)}}
	})
	e, _ := newTestEngine(conn, time.Second)
	ctx, _ := testutil.Context()

	code, err := e.Submit(ctx, sampleJob())

	require.NoError(t, err)
	assert.Equal(t, 12, code)
}

func TestSubmit_Timeout(t *testing.T) {
	t.Parallel()
	conn := newFakeClient(nil)
	e, _ := newTestEngine(conn, 20*time.Millisecond)
	ctx, _ := testutil.Context()

	_, err := e.Submit(ctx, sampleJob())

	assert.ErrorContains(t, err, "timed out")
	assert.Zero(t, conn.listenerCount(), "result listener must be removed after a timeout")
}

func TestSubmit_TimeoutsDoNotAccumulateListeners(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	conn := newFakeClient(nil)
	e, dials := newTestEngine(conn, 5*time.Millisecond)
	ctx, _ := testutil.Context()

	// --- Act ---
	for i := 0; i < 5; i++ {
		_, err := e.Submit(ctx, sampleJob())
		require.Error(t, err)
	}

	// --- Assert ---
	assert.Zero(t, conn.listenerCount())
	assert.Equal(t, 1, *dials, "the connection is shared between jobs")
}

func TestSubmit_CancelledContextRemovesListener(t *testing.T) {
	t.Parallel()
	conn := newFakeClient(nil)
	e, _ := newTestEngine(conn, time.Minute)
	base, _ := testutil.Context()
	ctx, cancel := context.WithCancel(base)
	cancel()

	_, err := e.Submit(ctx, sampleJob())

	assert.Error(t, err)
	assert.Zero(t, conn.listenerCount())
}

func TestSubmit_MalformedResult(t *testing.T) {
	t.Parallel()
	conn := newFakeClient(func(p map[string]any) (string, []any) {
		return ResultEventPrefix + p["job_id"].(string), []any{"done"}
	})
	e, _ := newTestEngine(conn, time.Second)
	ctx, _ := testutil.Context()

	_, err := e.Submit(ctx, sampleJob())

	assert.ErrorContains(t, err, "unexpected result payload")
}

func TestSubmit_DialFailure(t *testing.T) {
	t.Parallel()
	e := New(Config{URL: "http://localhost:1"})
	e.dial = func(context.Context, Config) (client, error) {
		return nil, errors.New("connection refused")
	}
	ctx, _ := testutil.Context()

	_, err := e.Submit(ctx, sampleJob())

	assert.ErrorContains(t, err, "post server unavailable: connection refused")
}

func TestClose_DropsConnection(t *testing.T) {
	t.Parallel()
	conn := newFakeClient(nil)
	e, dials := newTestEngine(conn, 10*time.Millisecond)
	ctx, _ := testutil.Context()
	_, _ = e.Submit(ctx, sampleJob())

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	assert.True(t, conn.closed)
	assert.Equal(t, 1, *dials)
}

func TestDecodeResult(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		val      cty.Value
		wantCode int
		wantErr  string
	}{
		{name: "code only", val: cty.ObjectVal(map[string]cty.Value{"code": cty.NumberIntVal(4)}), wantCode: 4},
		{name: "matching id", val: cty.ObjectVal(map[string]cty.Value{"job_id": cty.StringVal("a"), "code": cty.NumberIntVal(0)})},
		{name: "foreign id", val: cty.ObjectVal(map[string]cty.Value{"job_id": cty.StringVal("b"), "code": cty.NumberIntVal(0)}), wantErr: "result for job b"},
		{name: "no code", val: cty.EmptyObjectVal, wantErr: "has no code"},
		{name: "fractional code", val: cty.ObjectVal(map[string]cty.Value{"code": cty.NumberFloatVal(1.5)}), wantErr: "invalid result code"},
		{name: "null", val: cty.NullVal(cty.DynamicPseudoType), wantErr: "unexpected result payload"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, err := decodeResult(tc.val, "a")
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCode, code)
		})
	}
}
