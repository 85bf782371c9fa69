package hooks

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vk/fusegrid/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names published by SocketIOHook.
const (
	EventRunStarted   = "run_started"
	EventRunCompleted = "run_completed"
	EventRunFailed    = "run_failed"
	EventNodeStarted  = "node_started"
	EventNodeDone     = "node_completed"
	EventNodeFailed   = "node_failed"
)

// Emitter publishes one event. It is satisfied by a connected socket.io
// client and by test doubles.
type Emitter interface {
	Emit(event string, payload map[string]any)
	Close()
}

// SocketIOConfig describes the dashboard endpoint.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
	// MaxRetries bounds connection attempts after the first one.
	MaxRetries uint64
}

// SocketIOHook streams run progress to a socket.io server, one event per
// notification.
type SocketIOHook struct {
	emitter Emitter
}

// NewSocketIOHook wraps an already connected emitter.
func NewSocketIOHook(e Emitter) *SocketIOHook {
	return &SocketIOHook{emitter: e}
}

func (h *SocketIOHook) publish(event string, run RunInfo, extra map[string]any) {
	payload := map[string]any{
		"run_id":   run.RunID,
		"pipeline": run.Pipeline,
		"time":     time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range extra {
		payload[k] = v
	}
	h.emitter.Emit(event, payload)
}

func (h *SocketIOHook) BeforeRun(ctx context.Context, run RunInfo) {
	h.publish(EventRunStarted, run, nil)
}

func (h *SocketIOHook) AfterRun(ctx context.Context, run RunInfo) {
	h.publish(EventRunCompleted, run, nil)
}

func (h *SocketIOHook) OnRunError(ctx context.Context, run RunInfo, err error) {
	h.publish(EventRunFailed, run, map[string]any{"error": err.Error()})
}

func (h *SocketIOHook) BeforeNode(ctx context.Context, run RunInfo, node string) {
	h.publish(EventNodeStarted, run, map[string]any{"node": node})
}

func (h *SocketIOHook) AfterNode(ctx context.Context, run RunInfo, node string) {
	h.publish(EventNodeDone, run, map[string]any{"node": node})
}

func (h *SocketIOHook) OnNodeError(ctx context.Context, run RunInfo, node string, err error) {
	h.publish(EventNodeFailed, run, map[string]any{"node": node, "error": err.Error()})
}

// Close disconnects the underlying emitter.
func (h *SocketIOHook) Close() {
	h.emitter.Close()
}

// socketEmitter adapts a socket.io client socket to Emitter.
type socketEmitter struct {
	io *socket.Socket
}

func (s *socketEmitter) Emit(event string, payload map[string]any) {
	s.io.Emit(event, payload)
}

func (s *socketEmitter) Close() {
	s.io.Disconnect()
}

// DialSocketIO connects to cfg.URL, retrying with exponential backoff, and
// returns a hook publishing to it.
func DialSocketIO(ctx context.Context, cfg SocketIOConfig) (*SocketIOHook, error) {
	logger := ctxlog.FromContext(ctx).With("hook", "socketio", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("socket.io URL %q needs a scheme and a host", cfg.URL)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var io *socket.Socket
	operation := func() error {
		var err error
		io, err = connectOnce(ctx, parsedURL, cfg, timeout)
		if err != nil {
			logger.Warn("Socket.io connection attempt failed.", "error", err)
		}
		return err
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.MaxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("socket.io connection failed: %w", err)
	}
	logger.Info("Successfully connected", "sid", io.Id())
	return NewSocketIOHook(&socketEmitter{io: io}), nil
}

func connectOnce(ctx context.Context, parsedURL *url.URL, cfg SocketIOConfig, timeout time.Duration) (*socket.Socket, error) {
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	connectChan := make(chan error, 1)
	report := func(err error) {
		select {
		case connectChan <- err:
		default:
		}
	}
	io.Once(types.EventName("connect"), func(...any) {
		report(nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", errs[0])
			}
		}
		report(err)
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, err
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, backoff.Permanent(ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, errors.New("timed out waiting for socket.io connection")
	}
}
