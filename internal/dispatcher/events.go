package dispatcher

import (
	"time"

	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/pkg/ws"
)

// Event is one unit of work for the dispatcher loop.
type Event interface {
	eventName() string
}

// ConnOpened is posted once a dial succeeds.
type ConnOpened struct {
	ConnID string
	Conn   ws.Conn
}

// ConnMessage carries one raw inbound frame.
type ConnMessage struct {
	ConnID  string
	Payload []byte
}

// ConnError is posted on transport failure. A ConnClosed always follows it.
type ConnError struct {
	ConnID string
	Err    error
}

// ConnClosed is posted when a connection ends for any reason.
type ConnClosed struct {
	ConnID string
}

// ReconnectDue fires when a scheduled reconnect delay elapses.
type ReconnectDue struct {
	Attempt int
}

// FrameTick drives marker animations.
type FrameTick struct {
	At time.Time
}

// DeviceLocation is the outcome of the one-shot geolocation lookup.
type DeviceLocation struct {
	Location models.LatLng
	Err      error
}

// FocusRequested is a click on a sidebar entry.
type FocusRequested struct {
	VehicleID string
}

// MarkerClicked is a click on a vehicle marker.
type MarkerClicked struct {
	VehicleID string
}

// SimulationToggled switches applying of inbound snapshots on or off.
type SimulationToggled struct {
	Enabled bool
}

// ResetRequested clears the mirrored fleet and the user location while
// keeping the connection.
type ResetRequested struct{}

func (ConnOpened) eventName() string        { return "conn_opened" }
func (ConnMessage) eventName() string       { return "conn_message" }
func (ConnError) eventName() string         { return "conn_error" }
func (ConnClosed) eventName() string        { return "conn_closed" }
func (ReconnectDue) eventName() string      { return "reconnect_due" }
func (FrameTick) eventName() string         { return "frame_tick" }
func (DeviceLocation) eventName() string    { return "device_location" }
func (FocusRequested) eventName() string    { return "focus_requested" }
func (MarkerClicked) eventName() string     { return "marker_clicked" }
func (SimulationToggled) eventName() string { return "simulation_toggled" }
func (ResetRequested) eventName() string    { return "reset_requested" }

// Name returns a stable label for logging and metrics.
func Name(ev Event) string {
	return ev.eventName()
}
