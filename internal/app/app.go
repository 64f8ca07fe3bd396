package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/vk/nxpost/internal/classify"
	"github.com/vk/nxpost/internal/config"
	"github.com/vk/nxpost/internal/ctxlog"
	"github.com/vk/nxpost/internal/engine"
	"github.com/vk/nxpost/internal/localsession"
	"github.com/vk/nxpost/internal/postjob"
	"github.com/vk/nxpost/internal/registry"
	"github.com/vk/nxpost/internal/report"
	"github.com/vk/nxpost/internal/session"
)

// ErrNoSession is returned by operations that need a session snapshot when
// none was given.
var ErrNoSession = errors.New("no session snapshot given")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	fs       afero.Fs
	settings *config.Settings

	sessions session.Factory
	registry *registry.Cache
	reporter *report.Reporter

	engine    postjob.Engine
	newEngine func(ctx context.Context, cfg config.Engine) (engine.Engine, error)
	closers   []func() error
}

// Option customizes an App.
type Option func(*App)

// WithSessionFactory replaces the snapshot-backed session factory.
func WithSessionFactory(f session.Factory) Option {
	return func(a *App) { a.sessions = f }
}

// WithEngine makes the App submit every job to e instead of the engine
// named by the settings.
func WithEngine(e postjob.Engine) Option {
	return func(a *App) { a.engine = e }
}

// WithRegistryCache shares a registry cache between Apps.
func WithRegistryCache(c *registry.Cache) Option {
	return func(a *App) { a.registry = c }
}

// NewApp is the constructor for the main application. Reports and listings
// go to outW, logs to logW. Every file access goes through fs.
func NewApp(outW, logW io.Writer, fs afero.Fs, appConfig *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(appConfig, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	settings, err := loader.LoadSettings(ctx, appConfig.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Settings loaded.", "path", appConfig.SettingsPath)

	excluded, err := report.ParseExcludedMode(settings.Report.Excluded)
	if err != nil {
		return nil, err
	}

	a := &App{
		outW:      outW,
		logger:    logger,
		fs:        fs,
		settings:  settings,
		reporter:  report.New(rulesFrom(settings.Classification), policyFrom(settings.Report, excluded)),
		newEngine: engine.New,
	}
	if len(appConfig.SessionPaths) > 0 {
		a.sessions = &localsession.Factory{Loader: loader, Paths: appConfig.SessionPaths}
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.registry == nil {
		regLoader, err := registry.NewLoader(fs, settings.Registry.Encoding)
		if err != nil {
			return nil, fmt.Errorf("invalid registry settings: %w", err)
		}
		a.registry = registry.NewCache(regLoader)
	}

	logger.Debug("App initialized.", "has_session", a.sessions != nil, "engine", settings.Engine.Kind)
	return a, nil
}

// Context returns ctx carrying the App's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Close releases the engine, if one was opened.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func rulesFrom(c config.Classification) *classify.Rules {
	setup, exclude := c.SetupPrefixes, c.ExcludePrefixes
	if setup == nil {
		setup = classify.DefaultSetupPrefixes
	}
	if exclude == nil {
		exclude = classify.DefaultExcludePrefixes
	}
	return classify.NewRules(setup, exclude)
}

func policyFrom(r config.Report, excluded report.ExcludedMode) report.Policy {
	return report.Policy{
		SortSetups: r.SortSetups,
		Excluded:   excluded,
		GroupsOnly: r.GroupsOnly,
		ShowTools:  r.ShowTools,
		Indent:     r.Indent,
	}
}

func (a *App) openSession(ctx context.Context) (session.Session, error) {
	if a.sessions == nil {
		return nil, ErrNoSession
	}
	return a.sessions.Open(ctx)
}

func (a *App) postEngine(ctx context.Context) (postjob.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}
	e, err := a.newEngine(ctx, a.settings.Engine)
	if err != nil {
		return nil, err
	}
	a.engine = e
	a.closers = append(a.closers, e.Close)
	return e, nil
}

func (a *App) registryPath() string {
	if a.settings.Registry.Path != "" {
		return a.settings.Registry.Path
	}
	return registry.DefaultPath()
}
