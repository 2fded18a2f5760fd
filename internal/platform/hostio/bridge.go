// Package hostio connects to the host's socket.io event endpoint and
// republishes its named events as events.Event values.
package hostio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/phrazzld/launchpad/internal/config"
	"github.com/phrazzld/launchpad/internal/events"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultConnectTimeout = 15 * time.Second

// Bridge forwards host socket.io events to local subscribers. Each socket
// event is bound once, on first subscription to its channel.
type Bridge struct {
	bind       func(channel string, fn func(...any))
	disconnect func()
	local      *events.InMemoryEventEmitter
	logger     *slog.Logger

	mu    sync.Mutex
	bound map[string]bool
}

var _ events.EventSource = (*Bridge)(nil)

func newBridge(bind func(string, func(...any)), disconnect func(), logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "host_events")
	return &Bridge{
		bind:       bind,
		disconnect: disconnect,
		local:      events.NewInMemoryEventEmitter(logger),
		logger:     logger,
		bound:      make(map[string]bool),
	}
}

// Dial connects to cfg.EventsURL and waits for the socket to be ready.
func Dial(ctx context.Context, cfg config.HostConfig, logger *slog.Logger) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(cfg.EventsURL)
	if err != nil {
		return nil, fmt.Errorf("parse host events url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("host events url %q needs a scheme and host", cfg.EventsURL)
	}
	log := logger.With("component", "host_events", "url", parsed.Redacted())

	opts := socket.DefaultOptions()
	opts.SetPath(parsed.Path)
	if cfg.InsecureSkipVerify {
		log.Warn("skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
	manager := socket.NewManager(baseURL, opts)
	namespace := cfg.EventsNamespace
	if namespace == "" {
		namespace = "/"
	}
	io := manager.Socket(namespace, opts)

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		log.Info("connected to host events", "sid", io.Id())
		select {
		case connected <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		log.Warn("host events disconnected", "reason", fmt.Sprint(reason...))
	})

	io.Connect()

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}

	bind := func(channel string, fn func(...any)) {
		io.On(types.EventName(channel), fn)
	}
	return newBridge(bind, func() { io.Disconnect() }, logger), nil
}

// Subscribe implements events.EventSource.
func (b *Bridge) Subscribe(channel string, handler events.EventHandler) error {
	if err := b.local.Subscribe(channel, handler); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bound[channel] {
		return nil
	}
	b.bind(channel, func(args ...any) {
		b.forward(channel, args)
	})
	b.bound[channel] = true
	b.logger.Debug("bound host event", "channel", channel)
	return nil
}

// Close disconnects from the host.
func (b *Bridge) Close() {
	if b.disconnect != nil {
		b.disconnect()
	}
}

func (b *Bridge) forward(channel string, args []any) {
	payload, err := encodePayload(args)
	if err != nil {
		b.logger.Warn("dropping host event with unencodable payload", "channel", channel, "error", err)
		return
	}
	event, err := events.NewEvent(channel, payload)
	if err != nil {
		b.logger.Warn("dropping host event", "channel", channel, "error", err)
		return
	}
	if err := b.local.EmitEvent(context.Background(), event); err != nil {
		b.logger.Warn("host event handler failed", "channel", channel, "error", err)
	}
}

// encodePayload turns the first socket.io argument into JSON. Strings that
// already hold JSON are kept verbatim.
func encodePayload(args []any) (json.RawMessage, error) {
	if len(args) == 0 || args[0] == nil {
		return json.RawMessage("null"), nil
	}
	switch v := args[0].(type) {
	case string:
		if json.Valid([]byte(v)) {
			return json.RawMessage(v), nil
		}
	case []byte:
		if json.Valid(v) {
			return json.RawMessage(v), nil
		}
	}
	b, err := json.Marshal(args[0])
	if err != nil {
		return nil, err
	}
	return b, nil
}
