package location

import (
	"context"
	"errors"
)

// ErrUnavailable means the provider cannot produce a fix on this device.
var ErrUnavailable = errors.New("location unavailable")

// Location is a position fix.
type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // meters when known, HDOP for GPS fixes
}

// Provider acquires the device position.
type Provider interface {
	GetLocation(ctx context.Context) (Location, error)
}

// NoneProvider never has a fix.
type NoneProvider struct{}

func (NoneProvider) GetLocation(context.Context) (Location, error) {
	return Location{}, ErrUnavailable
}

// StaticProvider always returns the configured position.
type StaticProvider struct {
	Location Location
}

func (s StaticProvider) GetLocation(ctx context.Context) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}
	return s.Location, nil
}
