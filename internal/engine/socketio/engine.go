// Package socketio implements a post engine that hands jobs to a remote post
// server over socket.io.
//
// For each job the engine emits "post:submit" with the job as an object and
// waits for "post:result:<job id>" carrying {job_id, code}.
package socketio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vk/nxpost/internal/ctxlog"
	"github.com/vk/nxpost/internal/postjob"
)

// Event names.
const (
	SubmitEvent       = "post:submit"
	ResultEventPrefix = "post:result:"
)

// Config describes the post server.
type Config struct {
	URL                string
	Namespace          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Engine submits jobs over one lazily opened connection.
type Engine struct {
	cfg  Config
	dial dialer

	mu   sync.Mutex
	conn client
}

// New creates an engine for cfg. Nothing is dialed until the first Submit.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, dial: dialSocket}
}

type opResult struct {
	code int
	err  error
}

// Submit sends job and waits for its result event or the configured timeout.
func (e *Engine) Submit(ctx context.Context, job postjob.Job) (int, error) {
	conn, err := e.connect(ctx)
	if err != nil {
		return 0, err
	}

	jobID := job.ID.String()
	resultEvent := ResultEventPrefix + jobID
	logger := ctxlog.FromContext(ctx).With("engine", "socketio", "sid", conn.ID(), "job_id", jobID)
	logger.Info("Submitting job to post server.", "target", job.Target, "postprocessor", job.Postprocessor)

	done := make(chan opResult, 1)
	opCtx := ctx
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	conn.Once(resultEvent, func(data ...any) {
		logger.Debug("Result event received.", "event", resultEvent)
		if len(data) == 0 {
			done <- opResult{err: fmt.Errorf("empty result for job %s", jobID)}
			return
		}
		val, err := interfaceToCtyValue(data[0])
		if err != nil {
			done <- opResult{err: fmt.Errorf("failed to read result: %w", err)}
			return
		}
		code, err := decodeResult(val, jobID)
		done <- opResult{code: code, err: err}
	})
	// Result events are unique per job; a late answer must not find a
	// listener once Submit has returned.
	defer conn.Off(resultEvent)

	payload, err := ctyValueToInterface(jobValue(job))
	if err != nil {
		return 0, fmt.Errorf("failed to encode job: %w", err)
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		jsonData, _ := json.Marshal(payload)
		logger.Debug("Emitting event.", "event", SubmitEvent, "data", string(jsonData))
	}
	conn.Emit(SubmitEvent, payload)

	select {
	case <-opCtx.Done():
		return 0, fmt.Errorf("timed out after %v waiting for event '%s'", e.cfg.Timeout, resultEvent)
	case res := <-done:
		if res.err != nil {
			return 0, res.err
		}
		logger.Info("Post server answered.", "code", res.code)
		return res.code, nil
	}
}

// Close disconnects from the server if a connection was opened.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn != nil {
		e.conn.Close()
		e.conn = nil
	}
	return nil
}

func (e *Engine) connect(ctx context.Context) (client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn != nil && e.conn.Connected() {
		return e.conn, nil
	}
	conn, err := e.dial(ctx, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("post server unavailable: %w", err)
	}
	e.conn = conn
	return conn, nil
}
