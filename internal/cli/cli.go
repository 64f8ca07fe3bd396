package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/vk/nxpost/internal/app"
	"github.com/vk/nxpost/internal/batch"
)

// AppFactory builds the App once the global flags are parsed.
type AppFactory func(cfg *app.Config) (*app.App, error)

type globalFlags struct {
	configPath string
	sessions   []string
	logLevel   string
	logFormat  string
}

// appRunner is the body of a subcommand that needs an App.
type appRunner func(ctx context.Context, a *app.App, args []string) error

// Execute runs the command line in args and returns nil or an *ExitError.
func Execute(ctx context.Context, outW io.Writer, args []string, newApp AppFactory) error {
	root := NewRootCommand(outW, newApp)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return ToExitError(err)
	}
	return nil
}

// NewRootCommand returns the nxpost command tree. Help and command output
// go to outW.
func NewRootCommand(outW io.Writer, newApp AppFactory) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "nxpost",
		Short: "Report and postprocess CAM process group trees.",
		Long: `nxpost reads a CAM session snapshot, prints the structure of its setup
groups together with the available postprocessors, and drives a post engine
for single operations or whole batches of program groups.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &ExitError{Code: ExitUsage, Message: fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath())}
			}
			return cmd.Help()
		},
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Path to the HCL settings file.")
	pf.StringArrayVarP(&g.sessions, "session", "s", nil, "Session snapshot file or directory. Repeatable.")
	pf.StringVar(&g.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&g.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")

	withApp := func(run appRunner) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := app.NewConfig(app.Config{
				SettingsPath: g.configPath,
				SessionPaths: g.sessions,
				LogLevel:     g.logLevel,
				LogFormat:    g.logFormat,
			})
			if err != nil {
				return usageError(err)
			}
			slog.Debug("CLI flags parsed.", "command", cmd.Name(), "config", cfg)

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil {
					err = errors.Join(err, cerr)
				}
			}()
			return run(cmd.Context(), a, args)
		}
	}

	root.AddCommand(
		newReportCommand(withApp),
		newPostsCommand(withApp),
		newPostCommand(withApp),
		newBatchCommand(withApp),
	)
	return root
}

// usageArgs turns argument validation failures into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

func newReportCommand(withApp func(appRunner) func(*cobra.Command, []string) error) *cobra.Command {
	var opts app.ReportOptions
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the setup group structure and the postprocessor list.",
		Args:  usageArgs(cobra.NoArgs),
		RunE: withApp(func(ctx context.Context, a *app.App, _ []string) error {
			_, err := a.Report(ctx, opts)
			return err
		}),
	}
	cmd.Flags().StringVar(&opts.From, "from", "", "Start at this group, or at the group holding this operation.")
	cmd.Flags().StringVar(&opts.SaveDir, "save-dir", "", "Also save the report into this directory.")
	return cmd
}

func newPostsCommand(withApp func(appRunner) func(*cobra.Command, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "posts",
		Short: "List the postprocessors from the registry file.",
		Args:  usageArgs(cobra.NoArgs),
		RunE: withApp(func(ctx context.Context, a *app.App, _ []string) error {
			a.Posts(ctx)
			return nil
		}),
	}
}

func newPostCommand(withApp func(appRunner) func(*cobra.Command, []string) error) *cobra.Command {
	var postprocessor, outDir string
	cmd := &cobra.Command{
		Use:   "post OPERATION",
		Short: "Postprocess one operation.",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			if postprocessor == "" {
				return &ExitError{Code: ExitUsage, Message: "a postprocessor is required: pass --post NAME"}
			}
			_, err := a.Post(ctx, args[0], postprocessor, outDir)
			return err
		}),
	}
	cmd.Flags().StringVarP(&postprocessor, "post", "p", "", "Postprocessor name as listed by 'nxpost posts'.")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory. Defaults to post.output_dir, then the current directory.")
	return cmd
}

func newBatchCommand(withApp func(appRunner) func(*cobra.Command, []string) error) *cobra.Command {
	var mode, outDir string
	cmd := &cobra.Command{
		Use:   "batch [GROUP]",
		Short: "Postprocess every program group under GROUP with a machine profile.",
		Long: `Postprocess every program group directly under GROUP (the program root when
omitted). With --mode auto the profile is picked from each program name:
_5X_ selects 5x, _4X_ selects 4x, anything else 3x.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			selection := ""
			if len(args) == 1 {
				selection = args[0]
			}
			sum, err := a.Batch(ctx, selection, mode, outDir)
			if err != nil {
				return err
			}
			if sum.Failed > 0 {
				return &ExitError{
					Code:    ExitEngine,
					Message: fmt.Sprintf("%d of %d batch jobs failed", sum.Failed, sum.Failed+sum.Succeeded),
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", batch.ModeAuto, "Machine profile: 3x, 4x, 5x or auto.")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory. Defaults to post.output_dir, then the current directory.")
	return cmd
}
