package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/nxpost/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// connectTimeout bounds the initial handshake with the post server.
const connectTimeout = 15 * time.Second

// client is the subset of a socket.io connection the engine needs.
type client interface {
	Once(event string, fn func(...any))
	Off(event string)
	Emit(event string, args ...any)
	Connected() bool
	ID() string
	Close()
}

// dialer opens a connected client.
type dialer func(ctx context.Context, cfg Config) (client, error)

// socketClient adapts *socket.Socket to client.
type socketClient struct {
	io *socket.Socket
}

func (c *socketClient) Once(event string, fn func(...any)) {
	c.io.Once(types.EventName(event), fn)
}

func (c *socketClient) Off(event string) {
	c.io.RemoveAllListeners(types.EventName(event))
}

func (c *socketClient) Emit(event string, args ...any) {
	c.io.Emit(event, args...)
}

func (c *socketClient) Connected() bool {
	return c.io.Connected()
}

func (c *socketClient) ID() string {
	return fmt.Sprint(c.io.Id())
}

func (c *socketClient) Close() {
	c.io.Disconnect()
}

// dialSocket connects to cfg.URL over the websocket transport and waits for
// the connect event.
func dialSocket(ctx context.Context, cfg Config) (client, error) {
	logger := ctxlog.FromContext(ctx).With("engine", "socketio", "url", cfg.URL)
	logger.Info("Connecting to post server...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to post server.", "sid", io.Id())
		connectChan <- nil
	})

	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("Connect error event fired.", "error", err)
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &socketClient{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", connectTimeout)
	}
}
