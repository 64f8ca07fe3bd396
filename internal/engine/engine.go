package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/nxpost/internal/config"
	"github.com/vk/nxpost/internal/ctxlog"
	"github.com/vk/nxpost/internal/engine/command"
	"github.com/vk/nxpost/internal/engine/socketio"
	"github.com/vk/nxpost/internal/postjob"
)

// ErrNotConfigured is returned when the settings name no engine.
var ErrNotConfigured = errors.New("no post engine configured")

// Engine is a post engine holding resources that must be released.
type Engine interface {
	postjob.Engine
	Close() error
}

// New creates the engine described by cfg. Connections are opened lazily on
// the first Submit.
func New(ctx context.Context, cfg config.Engine) (Engine, error) {
	logger := ctxlog.FromContext(ctx)

	switch cfg.Kind {
	case "":
		return nil, ErrNotConfigured
	case config.EngineSocketIO:
		if cfg.SocketIO == nil {
			return nil, fmt.Errorf("engine %q: missing configuration", cfg.Kind)
		}
		logger.Debug("Using socket.io post engine.", "url", cfg.SocketIO.URL)
		return socketio.New(socketio.Config{
			URL:                cfg.SocketIO.URL,
			Namespace:          cfg.SocketIO.Namespace,
			Timeout:            cfg.SocketIO.Timeout,
			InsecureSkipVerify: cfg.SocketIO.InsecureSkipVerify,
		}), nil
	case config.EngineCommand:
		if cfg.Command == nil {
			return nil, fmt.Errorf("engine %q: missing configuration", cfg.Kind)
		}
		logger.Debug("Using command post engine.", "command", cfg.Command.Command)
		e, err := command.New(cfg.Command.Command, cfg.Command.Dir, cfg.Command.Timeout)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown engine kind %q", cfg.Kind)
	}
}
