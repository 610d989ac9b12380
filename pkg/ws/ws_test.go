package ws_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/fleet-mirror/pkg/ws"
)

// TestEndpointFromOrigin maps page origins to channel URLs.
func TestEndpointFromOrigin(t *testing.T) {
	cases := []struct {
		origin string
		want   string
	}{
		{"http://localhost:8001", "ws://localhost:8001/ws"},
		{"https://fleet.example.com", "wss://fleet.example.com/ws"},
		{"https://fleet.example.com/static/index.html?x=1", "wss://fleet.example.com/ws"},
		{"HTTP://127.0.0.1:8001/", "ws://127.0.0.1:8001/ws"},
	}

	for _, tc := range cases {
		got, err := ws.EndpointFromOrigin(tc.origin, "/ws")
		require.NoError(t, err, tc.origin)
		assert.Equal(t, tc.want, got)
	}
}

// TestEndpointFromOrigin_Invalid rejects origins that cannot host a channel.
func TestEndpointFromOrigin_Invalid(t *testing.T) {
	for _, origin := range []string{"ftp://host", "http://", "::bad"} {
		_, err := ws.EndpointFromOrigin(origin, "/ws")
		assert.Error(t, err, origin)
	}
}

// TestGorillaDialer_RoundTrip dials a local echo server.
func TestGorillaDialer_RoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.WriteMessage(mt, data)
	}))
	defer srv.Close()

	endpoint, err := ws.EndpointFromOrigin(srv.URL, "/ws")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := ws.NewGorillaDialer(nil, time.Second).Dial(ctx, endpoint)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`{"type":"ping"}`)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"ping"}`, string(data))
}

// TestGorillaDialer_Refused surfaces dial failures as errors.
func TestGorillaDialer_Refused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, err := ws.NewGorillaDialer(nil, time.Second).Dial(context.Background(), endpoint)
	srv.Close()

	assert.Error(t, err)
}

// TestIsCloseError distinguishes close frames from transport errors.
func TestIsCloseError(t *testing.T) {
	assert.True(t, ws.IsCloseError(&websocket.CloseError{Code: websocket.CloseNormalClosure}))
	assert.False(t, ws.IsCloseError(assert.AnError))
}
