package views

import "github.com/benmeehan/fleet-mirror/internal/models"

// MarkerStyle selects the icon a substrate draws for a marker.
type MarkerStyle string

const (
	StyleUser      MarkerStyle = "user"
	StyleAvailable MarkerStyle = "available"
	StyleBusy      MarkerStyle = "busy"
	StyleOffline   MarkerStyle = "offline"
)

// StyleFor maps a vehicle status to its marker style.
func StyleFor(status models.VehicleStatus) MarkerStyle {
	switch status {
	case models.StatusAvailable:
		return StyleAvailable
	case models.StatusBusy:
		return StyleBusy
	default:
		return StyleOffline
	}
}

// Substrate is the map rendering capability: it draws pins and moves the view.
// Vehicle pins are keyed by vehicle id; the user's pin has its own slot so
// no vehicle id can address it.
type Substrate interface {
	AddMarker(id string, style MarkerStyle, pos models.LatLng, popup string)
	MoveMarker(id string, pos models.LatLng)
	SetPopup(id string, popup string)
	SetStyle(id string, style MarkerStyle)
	RemoveMarker(id string)
	SetUserMarker(pos models.LatLng, popup string)
	RemoveUserMarker()
	SetView(center models.LatLng, zoom int)
	OpenPopup(id string)
}

// PageSink receives what the page shell shows: the status label and the sidebar.
type PageSink interface {
	SetStatus(label string, status models.ConnectionStatus)
	SetSidebar(model SidebarModel)
}

// MultiSink fans out to several sinks in order.
type MultiSink []PageSink

func (s MultiSink) SetStatus(label string, status models.ConnectionStatus) {
	for _, sink := range s {
		sink.SetStatus(label, status)
	}
}

func (s MultiSink) SetSidebar(model SidebarModel) {
	for _, sink := range s {
		sink.SetSidebar(model)
	}
}
