package constants

import "time"

const (
	// WebSocketPath is the fixed path of the fleet channel relative to the page origin.
	WebSocketPath = "/ws"

	// ReconnectStep is the linear backoff unit; attempt k waits k*ReconnectStep.
	ReconnectStep = 3 * time.Second

	// MaxReconnectAttempts is the reconnect budget before the client gives up.
	MaxReconnectAttempts = 5

	// DialTimeout bounds the WebSocket handshake.
	DialTimeout = 10 * time.Second
)

const (
	// AnimationDuration is the length of one marker transition.
	AnimationDuration = 500 * time.Millisecond

	// FrameInterval approximates a 60Hz render loop.
	FrameInterval = 16 * time.Millisecond
)

const (
	// DefaultZoom is used when the map is centered on the user.
	DefaultZoom = 13
	// FocusZoom is used when a single vehicle is focused.
	FocusZoom = 16

	// FallbackLatitude and FallbackLongitude locate Taipei, used when no device location is available.
	FallbackLatitude  = 25.1
	FallbackLongitude = 121.55

	// GeolocationTimeout bounds the one-shot device location lookup.
	GeolocationTimeout = 10 * time.Second
)
