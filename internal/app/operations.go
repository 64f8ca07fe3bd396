package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/nxpost/internal/batch"
	"github.com/vk/nxpost/internal/ctxlog"
	"github.com/vk/nxpost/internal/node"
	"github.com/vk/nxpost/internal/postjob"
	"github.com/vk/nxpost/internal/registry"
	"github.com/vk/nxpost/internal/report"
)

// ReportOptions tune a single structure report.
type ReportOptions struct {
	// From starts the report at the named group (or the group owning the
	// named operation) instead of the setup groups of the workpiece.
	From string
	// SaveDir overrides the settings' save directory. Empty means the
	// settings value; the report is not saved when both are empty.
	SaveDir string
}

// ReportResult is the rendered report and where it was saved, if anywhere.
type ReportResult struct {
	Document  report.Document
	SavedPath string
}

// Report builds the structure report of the open part, prints it to the
// App's output and saves it when a save directory is configured.
func (a *App) Report(ctx context.Context, opts ReportOptions) (*ReportResult, error) {
	ctx = ctxlog.With(a.Context(ctx), "op", "report")
	logger := ctxlog.FromContext(ctx)

	sess, err := a.openSession(ctx)
	if err != nil {
		return nil, err
	}
	root, err := sess.WorkpieceRoot(ctx)
	if err != nil {
		return nil, err
	}

	var structure string
	if opts.From != "" {
		start, err := node.Resolve(root, opts.From)
		if err != nil {
			return nil, err
		}
		structure = a.reporter.Subtree(ctx, start)
	} else {
		groups, err := sess.GroupCollection(ctx, root)
		if err != nil {
			return nil, err
		}
		structure = a.reporter.Structure(ctx, groups)
	}

	catalog := a.registry.Load(ctx, a.registryPath())
	doc := report.Document{
		Part:           sess.PartName(),
		Structure:      structure,
		Postprocessors: catalog.Lines(),
	}
	fmt.Fprint(a.outW, doc.Render())

	res := &ReportResult{Document: doc}
	dir := opts.SaveDir
	if dir == "" {
		dir = a.settings.Report.SaveDir
	}
	if dir != "" {
		path, err := report.Save(a.fs, dir, doc)
		if err != nil {
			return res, err
		}
		res.SavedPath = path
		logger.Info("Report saved.", "path", path)
	}
	return res, nil
}

// Posts prints the postprocessor catalog.
func (a *App) Posts(ctx context.Context) *registry.Catalog {
	ctx = ctxlog.With(a.Context(ctx), "op", "posts")
	catalog := a.registry.Load(ctx, a.registryPath())
	fmt.Fprintln(a.outW, "Available postprocessors:")
	for _, line := range catalog.Lines() {
		fmt.Fprintf(a.outW, "%s%s\n", report.DefaultIndent, line)
	}
	return catalog
}

// Post converts one operation with one postprocessor. outDir defaults to the
// settings' output directory, then to the current directory.
func (a *App) Post(ctx context.Context, operation, postprocessor, outDir string) (postjob.Result, error) {
	ctx = ctxlog.With(a.Context(ctx), "op", "post")

	sess, err := a.openSession(ctx)
	if err != nil {
		return postjob.Result{}, err
	}
	root, err := sess.WorkpieceRoot(ctx)
	if err != nil {
		return postjob.Result{}, err
	}
	// Lookup failures are reported before any engine is opened.
	if _, err := node.FindOperation(root, operation); err != nil {
		return postjob.Result{}, err
	}
	a.warnUnknownPost(ctx, postprocessor)

	eng, err := a.postEngine(ctx)
	if err != nil {
		return postjob.Result{}, err
	}
	units, err := postjob.ParseUnits(a.settings.Post.Units)
	if err != nil {
		return postjob.Result{}, err
	}
	d := postjob.NewDispatcher(a.fs, eng, postjob.Options{Extension: a.settings.Post.Extension, Units: units})

	res, err := d.Dispatch(ctx, root, operation, postprocessor, a.outputDir(outDir))
	if err == nil {
		fmt.Fprintf(a.outW, "Postprocessing of %s with %s finished: %s\n", operation, postprocessor, res.OutputPath)
	}
	return res, err
}

// Batch posts every program group under the selection with a profile.
func (a *App) Batch(ctx context.Context, selection, mode, outDir string) (*batch.Summary, error) {
	ctx = ctxlog.With(a.Context(ctx), "op", "batch")

	sess, err := a.openSession(ctx)
	if err != nil {
		return nil, err
	}
	root, err := sess.WorkpieceRoot(ctx)
	if err != nil {
		return nil, err
	}
	start := root
	if selection != "" {
		if start, err = node.Resolve(root, selection); err != nil {
			return nil, err
		}
	}
	profiles := a.profiles()
	if err := profiles.Validate(mode); err != nil {
		return nil, err
	}

	eng, err := a.postEngine(ctx)
	if err != nil {
		return nil, err
	}
	units, err := postjob.ParseUnits(a.settings.Post.Units)
	if err != nil {
		return nil, err
	}
	overwrite, err := batch.ParseOverwritePolicy(a.settings.Batch.Overwrite)
	if err != nil {
		return nil, err
	}

	d := postjob.NewDispatcher(a.fs, eng, postjob.Options{Extension: a.settings.Post.Extension, Units: units})
	runner := batch.NewRunner(a.fs, d, profiles, overwrite)

	sum, err := runner.Run(ctx, start, mode, a.outputDir(outDir))
	if err != nil {
		return nil, err
	}
	for _, line := range sum.Lines {
		fmt.Fprintln(a.outW, line)
	}
	return sum, nil
}

func (a *App) profiles() batch.Profiles {
	override := make(batch.Profiles, len(a.settings.Batch.Profiles))
	for name, targets := range a.settings.Batch.Profiles {
		p := batch.Profile{Name: name}
		for _, t := range targets {
			p.Targets = append(p.Targets, batch.Target{Postprocessor: t.Postprocessor, Extension: t.Extension})
		}
		override[name] = p
	}
	return batch.DefaultProfiles().Merge(override)
}

func (a *App) outputDir(dir string) string {
	switch {
	case dir != "":
		return dir
	case a.settings.Post.OutputDir != "":
		return a.settings.Post.OutputDir
	default:
		return "."
	}
}

// warnUnknownPost logs when postprocessor is not in a readable catalog. The
// engine is still asked; the catalog may simply be out of date.
func (a *App) warnUnknownPost(ctx context.Context, postprocessor string) {
	catalog := a.registry.Load(ctx, a.registryPath())
	if catalog.Err != nil {
		return
	}
	if !slices.Contains(catalog.Names(), postprocessor) {
		ctxlog.FromContext(ctx).Warn("Postprocessor is not listed in the registry.", "postprocessor", postprocessor, "registry", catalog.Path)
	}
}
