// Package scene is an in-memory map substrate. It keeps the markers and the
// viewport the way a map widget would so they can be served to the page shell.
package scene

import (
	"slices"
	"strings"
	"sync"

	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/internal/views"
)

// Marker is a drawn pin.
type Marker struct {
	ID        string            `json:"id"`
	Style     views.MarkerStyle `json:"style"`
	Position  models.LatLng     `json:"position"`
	Popup     string            `json:"popup"`
	PopupOpen bool              `json:"popup_open"`
}

// Viewport is the visible map region.
type Viewport struct {
	Center models.LatLng `json:"center"`
	Zoom   int           `json:"zoom"`
}

// Snapshot is a copy of the scene at one instant. The user's pin is kept
// apart from the vehicle pins.
type Snapshot struct {
	Viewport Viewport `json:"viewport"`
	Markers  []Marker `json:"markers"`
	User     *Marker  `json:"user,omitempty"`
}

// Scene implements views.Substrate. Writes come from the dispatcher loop,
// reads from HTTP handlers.
type Scene struct {
	mu       sync.RWMutex
	markers  map[string]*Marker
	user     *Marker
	viewport Viewport
}

var _ views.Substrate = (*Scene)(nil)

// New creates an empty scene showing initial.
func New(initial Viewport) *Scene {
	return &Scene{
		markers:  make(map[string]*Marker),
		viewport: initial,
	}
}

// AddMarker draws a vehicle pin, replacing any pin with the same id.
func (s *Scene) AddMarker(id string, style views.MarkerStyle, pos models.LatLng, popup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[id] = &Marker{ID: id, Style: style, Position: pos, Popup: popup}
}

// MoveMarker moves the pin of id. Unknown ids are ignored.
func (s *Scene) MoveMarker(id string, pos models.LatLng) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.markers[id]; ok {
		m.Position = pos
	}
}

// SetPopup replaces the popup content of id.
func (s *Scene) SetPopup(id string, popup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.markers[id]; ok {
		m.Popup = popup
	}
}

// SetStyle changes the icon of id.
func (s *Scene) SetStyle(id string, style views.MarkerStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.markers[id]; ok {
		m.Style = style
	}
}

// RemoveMarker deletes the pin of id.
func (s *Scene) RemoveMarker(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, id)
}

// SetUserMarker draws the user's pin, replacing the previous one.
func (s *Scene) SetUserMarker(pos models.LatLng, popup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &Marker{Style: views.StyleUser, Position: pos, Popup: popup}
}

// RemoveUserMarker deletes the user's pin.
func (s *Scene) RemoveUserMarker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// SetView moves the viewport.
func (s *Scene) SetView(center models.LatLng, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = Viewport{Center: center, Zoom: zoom}
}

// OpenPopup opens the popup of id and closes any other.
func (s *Scene) OpenPopup(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[id]; !ok {
		return
	}
	for key, m := range s.markers {
		m.PopupOpen = key == id
	}
}

// Marker returns a copy of the marker with id.
func (s *Scene) Marker(id string) (Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markers[id]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}

// UserMarker returns a copy of the user's pin.
func (s *Scene) UserMarker() (Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return Marker{}, false
	}
	return *s.user, true
}

// Snapshot returns the vehicle markers sorted by id, the user marker and the viewport.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Viewport: s.viewport, Markers: make([]Marker, 0, len(s.markers))}
	for _, m := range s.markers {
		snap.Markers = append(snap.Markers, *m)
	}
	slices.SortFunc(snap.Markers, func(a, b Marker) int {
		return strings.Compare(a.ID, b.ID)
	})
	if s.user != nil {
		user := *s.user
		snap.User = &user
	}
	return snap
}
