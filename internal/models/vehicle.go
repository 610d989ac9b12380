package models

import (
	"time"

	"github.com/benmeehan/fleet-mirror/internal/constants"
)

// LatLng is a WGS84 coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// VehicleStatus is the service state of a vehicle.
type VehicleStatus string

const (
	StatusAvailable VehicleStatus = constants.VehicleStatusAvailable
	StatusBusy      VehicleStatus = constants.VehicleStatusBusy
	StatusOffline   VehicleStatus = constants.VehicleStatusOffline
)

// VehicleRecord is the last known state of one vehicle.
type VehicleRecord struct {
	ID       string        `json:"id"`
	Position LatLng        `json:"position"`
	Speed    float64       `json:"speed"`   // km/h
	Heading  float64       `json:"heading"` // degrees, direction of travel
	Status   VehicleStatus `json:"status"`

	// LastObservedAt is stamped locally by the store on each merge.
	LastObservedAt time.Time `json:"last_observed_at"`
}
