package postjob

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/vk/nxpost/internal/ctxlog"
	"github.com/vk/nxpost/internal/fsutil"
	"github.com/vk/nxpost/internal/node"
)

// DefaultExtension is appended to the operation name to form the output file.
const DefaultExtension = ".nc"

// Result is the outcome of one dispatch.
type Result struct {
	JobID      uuid.UUID
	Success    bool
	ResultCode int
	OutputPath string
}

// Options configure a Dispatcher. Zero values select the defaults.
type Options struct {
	Extension string
	Units     Units
}

// Dispatcher turns "post this operation with that postprocessor" requests
// into engine jobs.
type Dispatcher struct {
	fs     afero.Fs
	engine Engine
	opts   Options
}

// NewDispatcher creates a Dispatcher writing into fs and submitting to engine.
func NewDispatcher(fs afero.Fs, engine Engine, opts Options) *Dispatcher {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Units == "" {
		opts.Units = UnitsMetric
	}
	return &Dispatcher{fs: fs, engine: engine, opts: opts}
}

// Dispatch finds the first operation named operation under root, prepares
// outputDir and submits exactly one job. When the operation is missing the
// engine is never called. A non-zero engine code is returned both in the
// Result and as an *EngineFailure error.
func (d *Dispatcher) Dispatch(ctx context.Context, root node.Node, operation, postprocessor, outputDir string) (Result, error) {
	logger := ctxlog.FromContext(ctx).With("operation", operation, "postprocessor", postprocessor)

	op, err := node.FindOperation(root, operation)
	if err != nil {
		logger.Error("Operation not found.")
		return Result{}, err
	}

	if err := d.fs.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory %q: %w", outputDir, err)
	}

	job := Job{
		ID:             uuid.New(),
		Target:         op.Name(),
		TargetKind:     node.KindOperation,
		Postprocessor:  postprocessor,
		OutputPath:     filepath.Join(outputDir, fsutil.SafeFileName(op.Name())+d.opts.Extension),
		EmitListing:    true,
		EmitBallCenter: false,
		Units:          d.opts.Units,
	}
	return d.submit(ctx, job)
}

// Submit sends a prepared job and interprets its code. The job gets an ID if
// it has none.
func (d *Dispatcher) Submit(ctx context.Context, job Job) (Result, error) {
	if job.Units == "" {
		job.Units = d.opts.Units
	}
	return d.submit(ctx, job)
}

func (d *Dispatcher) submit(ctx context.Context, job Job) (Result, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	logger := ctxlog.FromContext(ctx).With("job_id", job.ID.String(), "target", job.Target, "postprocessor", job.Postprocessor)
	logger.Info("Submitting post job.", "output", job.OutputPath)

	res := Result{JobID: job.ID, OutputPath: job.OutputPath}

	code, err := d.engine.Submit(ctx, job)
	if err != nil {
		logger.Error("Post engine unavailable.", "error", err)
		return res, fmt.Errorf("failed to submit post job for %q: %w", job.Target, err)
	}

	res.ResultCode = code
	if code != 0 {
		logger.Error("Post engine reported failure.", "code", code)
		return res, &EngineFailure{Code: code}
	}

	res.Success = true
	logger.Info("Post job completed.")
	return res, nil
}

// IsEngineFailure reports whether err carries an engine result code and
// returns it.
func IsEngineFailure(err error) (int, bool) {
	var failure *EngineFailure
	if errors.As(err, &failure) {
		return failure.Code, true
	}
	return 0, false
}
