package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/vk/nxpost/internal/ctxlog"
	"github.com/vk/nxpost/internal/fsutil"
	"github.com/vk/nxpost/internal/node"
	"github.com/vk/nxpost/internal/postjob"
)

// ErrNoPrograms is returned when the start group has no child groups.
var ErrNoPrograms = errors.New("selected group contains no program groups")

// OverwritePolicy decides what happens to existing output files.
type OverwritePolicy string

const (
	OverwriteAlways OverwritePolicy = "always"
	OverwriteNever  OverwritePolicy = "never"
)

// ParseOverwritePolicy validates a policy name. Empty means always.
func ParseOverwritePolicy(s string) (OverwritePolicy, error) {
	switch OverwritePolicy(s) {
	case "", OverwriteAlways:
		return OverwriteAlways, nil
	case OverwriteNever:
		return OverwriteNever, nil
	default:
		return "", fmt.Errorf("invalid overwrite policy %q: must be 'always' or 'never'", s)
	}
}

// Submitter sends prepared jobs. postjob.Dispatcher implements it.
type Submitter interface {
	Submit(ctx context.Context, job postjob.Job) (postjob.Result, error)
}

// Summary is the listing of one batch run plus counters.
type Summary struct {
	Lines     []string
	Succeeded int
	Failed    int
	Skipped   int
}

func (s *Summary) printf(format string, args ...any) {
	s.Lines = append(s.Lines, fmt.Sprintf(format, args...))
}

// Runner postprocesses every program group under a start group with every
// target of a profile.
type Runner struct {
	fs        afero.Fs
	submitter Submitter
	profiles  Profiles
	overwrite OverwritePolicy
}

// NewRunner creates a Runner.
func NewRunner(fs afero.Fs, submitter Submitter, profiles Profiles, overwrite OverwritePolicy) *Runner {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	if overwrite == "" {
		overwrite = OverwriteAlways
	}
	return &Runner{fs: fs, submitter: submitter, profiles: profiles, overwrite: overwrite}
}

// Run posts each direct child group of start. Job failures are recorded in
// the summary and do not stop the batch; only setup problems are returned
// as errors.
func (r *Runner) Run(ctx context.Context, start node.Node, mode, outDir string) (*Summary, error) {
	logger := ctxlog.FromContext(ctx).With("group", node.SafeName(start), "mode", mode)

	if err := r.profiles.Validate(mode); err != nil {
		return nil, err
	}

	members, err := node.SafeChildren(start)
	if err != nil {
		return nil, fmt.Errorf("failed to read members of %q: %w", node.SafeName(start), err)
	}
	var programs []node.Node
	for _, m := range members {
		if m != nil && m.Kind() == node.KindGroup {
			programs = append(programs, m)
		}
	}
	if len(programs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoPrograms, node.SafeName(start))
	}

	if err := r.fs.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", outDir, err)
	}

	sum := &Summary{}
	sum.printf("=== Batch postprocess (%s) ===", mode)
	sum.printf("Group: %s", node.SafeName(start))
	sum.printf("Output folder: %s", outDir)
	sum.printf("")

	for _, program := range programs {
		name := node.SafeName(program)
		profile := r.profiles.Select(mode, name)
		if mode == ModeAuto {
			sum.printf("%s → %s", name, profile.Name)
		} else {
			sum.printf("%s", name)
		}

		short := ShortName(name)
		for _, target := range profile.Targets {
			r.runTarget(ctx, sum, name, short, target, outDir)
		}
		sum.printf("")
	}

	logger.Info("Batch postprocess finished.", "succeeded", sum.Succeeded, "failed", sum.Failed, "skipped", sum.Skipped)
	return sum, nil
}

func (r *Runner) runTarget(ctx context.Context, sum *Summary, program, short string, target Target, outDir string) {
	outFile := filepath.Join(outDir, fsutil.SafeFileName(short)+target.Extension)

	if r.overwrite == OverwriteNever {
		exists, err := afero.Exists(r.fs, outFile)
		if err != nil {
			sum.Failed++
			sum.printf("   ✘ Error (%s): %v", target.Postprocessor, err)
			return
		}
		if exists {
			sum.Skipped++
			sum.printf("   - %s: %s exists, skipped", target.Postprocessor, filepath.Base(outFile))
			return
		}
	}

	job := postjob.Job{
		Target:        program,
		TargetKind:    node.KindGroup,
		Postprocessor: target.Postprocessor,
		OutputPath:    outFile,
		EmitListing:   true,
	}
	if _, err := r.submitter.Submit(ctx, job); err != nil {
		sum.Failed++
		sum.printf("   ✘ Error (%s): %v", target.Postprocessor, err)
		return
	}
	sum.Succeeded++
	sum.printf("   ✔ %s -> %s", target.Postprocessor, filepath.Base(outFile))
}
