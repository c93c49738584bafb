package monitor

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/dxecore/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DispatchEvent is the socket.io event name used for every dispatch event.
const DispatchEvent = "dispatch"

// SocketIOOptions configures the remote monitor connection.
type SocketIOOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// SocketIO streams dispatch events to a socket.io server.
type SocketIO struct {
	io *socket.Socket
}

// DialSocketIO connects to the monitor server and waits for the handshake.
func DialSocketIO(ctx context.Context, opt SocketIOOptions) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("observer", "socketio", "url", opt.URL)
	logger.Info("Connecting dispatch monitor...")

	parsedURL, err := url.Parse(opt.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse monitor URL: %w", err)
	}
	timeout := opt.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if opt.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(opt.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Dispatch monitor connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				connectChan <- err
				return
			}
		}
		connectChan <- fmt.Errorf("connect_error without detail")
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Observe implements Observer.
func (s *SocketIO) Observe(_ context.Context, ev Event) {
	s.io.Emit(DispatchEvent, eventPayload(ev))
}

// Close disconnects from the server.
func (s *SocketIO) Close() error {
	s.io.Disconnect()
	return nil
}

func eventPayload(ev Event) map[string]any {
	payload := map[string]any{
		"unit":   ev.Unit.String(),
		"kind":   string(ev.Unit.Kind),
		"status": ev.Status.String(),
		"round":  ev.Round,
	}
	if ev.Err != nil {
		payload["error"] = ev.Err.Error()
	}
	if ev.Reason != "" {
		payload["reason"] = ev.Reason
	}
	return payload
}
