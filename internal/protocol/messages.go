package protocol

import "github.com/benmeehan/fleet-mirror/internal/models"

// MessageType discriminates the JSON messages exchanged on the fleet channel.
type MessageType string

const (
	TypeInitialData     MessageType = "initial_data"
	TypeVehicleUpdate   MessageType = "vehicle_update"
	TypeLocationUpdated MessageType = "location_updated"
	TypeUserLocation    MessageType = "user_location"
)

// VehicleEntry is one vehicle as sent by the server.
type VehicleEntry struct {
	ID        string  `json:"id" validate:"required"`
	Lat       float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng       float64 `json:"lng" validate:"gte=-180,lte=180"`
	Speed     float64 `json:"speed" validate:"gte=0"`
	Direction float64 `json:"direction" validate:"gte=0,lte=360"`
	Status    string  `json:"status" validate:"oneof=available busy offline"`
	// Timestamp is the server clock; the client keeps its own observation time.
	Timestamp float64 `json:"timestamp,omitempty"`
}

// Coordinates is the wire form of a location.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type envelope struct {
	Type         MessageType    `json:"type"`
	Vehicles     []VehicleEntry `json:"vehicles"`
	UserLocation *Coordinates   `json:"user_location,omitempty"`
}

// Message is a decoded inbound message.
type Message struct {
	Type     MessageType
	Vehicles []models.VehicleRecord
	// UserLocation is nil when the message carries none.
	UserLocation *models.LatLng
	// Rejected counts vehicle entries and user locations dropped by validation.
	Rejected int
}

// UserLocationMessage is the only message the client sends.
type UserLocationMessage struct {
	Type MessageType `json:"type"`
	Lat  float64     `json:"lat"`
	Lng  float64     `json:"lng"`
}

// NewUserLocationMessage builds the outbound announcement of the device location.
func NewUserLocationMessage(loc models.LatLng) UserLocationMessage {
	return UserLocationMessage{Type: TypeUserLocation, Lat: loc.Lat, Lng: loc.Lng}
}
