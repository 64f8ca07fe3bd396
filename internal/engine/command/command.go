// Package command implements a post engine that runs a local executable per
// job. The exit status of the process is the job's result code.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/vk/nxpost/internal/ctxlog"
	"github.com/vk/nxpost/internal/postjob"
)

// waitDelay bounds how long a cancelled command may keep its output open.
const waitDelay = 2 * time.Second

// Engine runs a command template for every job.
//
// The template is split with shell quoting rules once, then each argument
// has its placeholders replaced: {post}, {target}, {kind}, {output},
// {listing}, {ball_center}, {units} and {job}. No shell is involved, so
// substituted values are never re-split.
type Engine struct {
	args    []string
	dir     string
	timeout time.Duration
}

// New parses the command template.
func New(template, dir string, timeout time.Duration) (*Engine, error) {
	args, err := shlex.Split(template)
	if err != nil {
		return nil, fmt.Errorf("failed to parse post command %q: %w", template, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("post command is empty")
	}
	return &Engine{args: args, dir: dir, timeout: timeout}, nil
}

// Args returns the command line for job.
func (e *Engine) Args(job postjob.Job) []string {
	r := strings.NewReplacer(
		"{post}", job.Postprocessor,
		"{target}", job.Target,
		"{kind}", job.TargetKind.String(),
		"{output}", job.OutputPath,
		"{listing}", strconv.FormatBool(job.EmitListing),
		"{ball_center}", strconv.FormatBool(job.EmitBallCenter),
		"{units}", string(job.Units),
		"{job}", job.ID.String(),
	)
	out := make([]string, len(e.args))
	for i, a := range e.args {
		out[i] = r.Replace(a)
	}
	return out
}

// Submit runs the command and returns its exit status. An error is returned
// only when the process could not be run at all.
func (e *Engine) Submit(ctx context.Context, job postjob.Job) (int, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := e.Args(job)
	logger := ctxlog.FromContext(ctx).With("engine", "command", "job_id", job.ID.String())
	logger.Debug("Running post command.", "args", args)

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = e.dir
	cmd.Stdout = &output
	cmd.Stderr = &output
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if output.Len() > 0 {
		logger.Debug("Post command output.", "output", strings.TrimSpace(output.String()))
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case ctx.Err() != nil:
		return 0, fmt.Errorf("post command interrupted: %w", ctx.Err())
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return 0, fmt.Errorf("failed to run post command %q: %w", args[0], err)
	}
}

// Close does nothing; the engine holds no resources between jobs.
func (e *Engine) Close() error {
	return nil
}
