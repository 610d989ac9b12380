package state_managers

import "github.com/benmeehan/fleet-mirror/internal/models"

// UserLocationState keeps the single user location and the rules for replacing it.
type UserLocationState struct {
	current   *models.UserLocation
	announced bool
}

// NewUserLocationState starts with no known location.
func NewUserLocationState() *UserLocationState {
	return &UserLocationState{}
}

// Current returns the location and whether one is known.
func (u *UserLocationState) Current() (models.UserLocation, bool) {
	if u.current == nil {
		return models.UserLocation{}, false
	}
	return *u.current, true
}

// SetDevice stores a device fix. Device fixes always win.
func (u *UserLocationState) SetDevice(loc models.LatLng) bool {
	return u.set(loc, models.SourceDevice)
}

// SetFallback stores the default location if nothing is known yet.
func (u *UserLocationState) SetFallback(loc models.LatLng) bool {
	if u.current != nil {
		return false
	}
	return u.set(loc, models.SourceFallback)
}

// ApplyInitial stores a location from initial_data if nothing is known yet.
func (u *UserLocationState) ApplyInitial(loc models.LatLng) bool {
	if u.current != nil {
		return false
	}
	return u.set(loc, models.SourceServer)
}

// ApplyUpdated stores a location from location_updated unconditionally.
func (u *UserLocationState) ApplyUpdated(loc models.LatLng) bool {
	return u.set(loc, models.SourceServer)
}

// MarkAnnounced returns true the first time it is called, false afterwards.
func (u *UserLocationState) MarkAnnounced() bool {
	if u.announced {
		return false
	}
	u.announced = true
	return true
}

// Reset forgets the location and the announcement.
func (u *UserLocationState) Reset() {
	u.current = nil
	u.announced = false
}

func (u *UserLocationState) set(loc models.LatLng, source models.LocationSource) bool {
	changed := u.current == nil || u.current.LatLng != loc || u.current.Source != source
	u.current = &models.UserLocation{LatLng: loc, Source: source}
	return changed
}
