package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of a WebSocket connection the client relies on.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens WebSocket connections.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// GorillaDialer dials with gorilla/websocket.
type GorillaDialer struct {
	dialer *websocket.Dialer
	header http.Header
}

// NewGorillaDialer creates a dialer with optional request headers. A zero
// handshakeTimeout keeps gorilla's default.
func NewGorillaDialer(header http.Header, handshakeTimeout time.Duration) *GorillaDialer {
	d := *websocket.DefaultDialer
	if handshakeTimeout > 0 {
		d.HandshakeTimeout = handshakeTimeout
	}
	return &GorillaDialer{
		dialer: &d,
		header: header,
	}
}

// Dial opens a connection to endpoint. The context bounds the handshake only.
func (d *GorillaDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, endpoint, d.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}
	return conn, nil
}

// EndpointFromOrigin derives the channel URL from a page origin: http becomes ws,
// https becomes wss, and the path is replaced by path.
func EndpointFromOrigin(origin, path string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported origin scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("origin %q has no host", origin)
	}
	u.Path = path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// IsCloseError reports whether err is a close frame rather than a transport failure.
func IsCloseError(err error) bool {
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr)
}

// TextMessage re-exports the gorilla frame type so callers do not import gorilla directly.
const TextMessage = websocket.TextMessage
