package mocks

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/fleet-mirror/pkg/ws"
)

// MockDialer is a mock implementation of the ws.Dialer interface
type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) Dial(ctx context.Context, endpoint string) (ws.Conn, error) {
	args := m.Called(ctx, endpoint)
	conn, _ := args.Get(0).(ws.Conn)
	return conn, args.Error(1)
}

// FakeConn is an in-memory ws.Conn. Reads block until a frame is pushed,
// a failure is injected or the connection is closed.
type FakeConn struct {
	inbound  chan []byte
	failures chan error
	closed   chan struct{}

	mu        sync.Mutex
	writes    [][]byte
	closeOnce sync.Once
}

// NewFakeConn creates an open connection.
func NewFakeConn() *FakeConn {
	return &FakeConn{
		inbound:  make(chan []byte, 16),
		failures: make(chan error, 1),
		closed:   make(chan struct{}),
	}
}

// Push delivers a frame from the server side.
func (c *FakeConn) Push(payload []byte) {
	c.inbound <- payload
}

// Fail makes the pending read return err.
func (c *FakeConn) Fail(err error) {
	c.failures <- err
}

func (c *FakeConn) ReadMessage() (int, []byte, error) {
	select {
	case p := <-c.inbound:
		return ws.TextMessage, p, nil
	case err := <-c.failures:
		return 0, nil, err
	case <-c.closed:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (c *FakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, append([]byte(nil), data...))
	return nil
}

func (c *FakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// Writes returns every frame written by the client.
func (c *FakeConn) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.writes...)
}

// IsClosed reports whether Close has been called.
func (c *FakeConn) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
