package views

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/animation"
	"github.com/benmeehan/fleet-mirror/internal/constants"
	"github.com/benmeehan/fleet-mirror/internal/models"
)

// MarkerHandle is the map's view of one vehicle. Its displayed position
// trails the target while a transition is running.
type MarkerHandle struct {
	id        string
	displayed models.LatLng
	target    models.LatLng
	style     MarkerStyle
	onClick   func()
	substrate Substrate
}

func (h *MarkerHandle) Key() string                      { return h.id }
func (h *MarkerHandle) DisplayedPosition() models.LatLng { return h.displayed }
func (h *MarkerHandle) Target() models.LatLng            { return h.target }

// SetDisplayedPosition moves the pin on the substrate.
func (h *MarkerHandle) SetDisplayedPosition(p models.LatLng) {
	h.displayed = p
	h.substrate.MoveMarker(h.id, p)
}

// MapView owns the vehicle markers and the user marker.
type MapView struct {
	substrate   Substrate
	animator    *animation.Animator
	labels      Labels
	defaultZoom int
	focusZoom   int
	logger      zerolog.Logger

	markers       map[string]*MarkerHandle
	hasUserMarker bool
	onMarkerClick func(id string)
}

// NewMapView creates an empty map view drawing on substrate.
func NewMapView(substrate Substrate, animator *animation.Animator, labels Labels, defaultZoom, focusZoom int, logger zerolog.Logger) *MapView {
	if defaultZoom <= 0 {
		defaultZoom = constants.DefaultZoom
	}
	if focusZoom <= 0 {
		focusZoom = constants.FocusZoom
	}
	return &MapView{
		substrate:   substrate,
		animator:    animator,
		labels:      labels,
		defaultZoom: defaultZoom,
		focusZoom:   focusZoom,
		logger:      logger,
		markers:     make(map[string]*MarkerHandle),
	}
}

// OnMarkerClick sets what a click on a vehicle marker does.
func (v *MapView) OnMarkerClick(fn func(id string)) {
	v.onMarkerClick = fn
}

// EnsureMarker creates the marker for vehicle on first sight, otherwise
// refreshes its popup and animates it to the new position. It reports
// whether a marker was created.
func (v *MapView) EnsureMarker(vehicle models.VehicleRecord, now time.Time) bool {
	popup := v.popup(vehicle)
	style := StyleFor(vehicle.Status)

	h, ok := v.markers[vehicle.ID]
	if !ok {
		id := vehicle.ID
		h = &MarkerHandle{
			id:        id,
			displayed: vehicle.Position,
			target:    vehicle.Position,
			style:     style,
			substrate: v.substrate,
			onClick: func() {
				if v.onMarkerClick != nil {
					v.onMarkerClick(id)
				}
			},
		}
		v.substrate.AddMarker(id, style, vehicle.Position, popup)
		v.markers[id] = h
		v.logger.Debug().Str("vehicle_id", id).Msg("Marker created")
		return true
	}

	v.substrate.SetPopup(h.id, popup)
	if h.style != style {
		h.style = style
		v.substrate.SetStyle(h.id, style)
	}
	h.target = vehicle.Position
	v.animator.Animate(h, h.displayed, vehicle.Position, now)
	return false
}

// SetUserMarker replaces the user's marker and centers the map on it.
func (v *MapView) SetUserMarker(loc models.LatLng) {
	if v.hasUserMarker {
		v.substrate.RemoveUserMarker()
	}
	v.substrate.SetUserMarker(loc, v.labels.UserPopup)
	v.substrate.SetView(loc, v.defaultZoom)
	v.hasUserMarker = true
}

// Focus centers the view on a vehicle's last known position and opens its popup.
func (v *MapView) Focus(id string) bool {
	h, ok := v.markers[id]
	if !ok {
		return false
	}
	v.substrate.SetView(h.target, v.focusZoom)
	v.substrate.OpenPopup(id)
	return true
}

// Click runs the click binding of a vehicle marker.
func (v *MapView) Click(id string) bool {
	h, ok := v.markers[id]
	if !ok {
		return false
	}
	h.onClick()
	return true
}

// Marker returns the handle for id.
func (v *MapView) Marker(id string) (*MarkerHandle, bool) {
	h, ok := v.markers[id]
	return h, ok
}

// Markers returns the number of vehicle markers.
func (v *MapView) Markers() int {
	return len(v.markers)
}

// Reset removes every marker from the substrate.
func (v *MapView) Reset() {
	for id := range v.markers {
		v.substrate.RemoveMarker(id)
	}
	if v.hasUserMarker {
		v.substrate.RemoveUserMarker()
		v.hasUserMarker = false
	}
	v.markers = make(map[string]*MarkerHandle)
	v.animator.Reset()
}

func (v *MapView) popup(r models.VehicleRecord) string {
	html, err := render(popupTemplate, Entry{
		ID:          r.ID,
		Status:      r.Status,
		StatusLabel: v.labels.Status(r.Status),
		Speed:       FormatSpeed(r.Speed),
		Heading:     FormatHeading(r.Heading),
		ObservedAt:  r.LastObservedAt.Format(observedTimeLayout),
	})
	if err != nil {
		v.logger.Error().Err(err).Str("vehicle_id", r.ID).Msg("Failed to render popup")
	}
	return string(html)
}
