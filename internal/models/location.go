package models

// LocationSource tells where the current user location came from.
type LocationSource string

const (
	SourceNone     LocationSource = ""
	SourceDevice   LocationSource = "device"
	SourceServer   LocationSource = "server"
	SourceFallback LocationSource = "fallback"
)

// UserLocation is the user's own position together with its origin.
type UserLocation struct {
	LatLng
	Source LocationSource `json:"source"`
}
