package location

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"
)

type geolocator interface {
	Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error)
}

// GoogleGeolocationProvider resolves the position through the Google
// Geolocation API from nearby radios, falling back to the public IP.
type GoogleGeolocationProvider struct {
	client     geolocator
	scanner    RadioScanner
	modemIndex int
	logger     zerolog.Logger
}

// NewGoogleGeolocationProvider creates a provider using apiKey.
func NewGoogleGeolocationProvider(apiKey string, modemIndex int, logger zerolog.Logger) (*GoogleGeolocationProvider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GoogleGeolocationProvider{
		client:     c,
		scanner:    CommandRadioScanner{},
		modemIndex: modemIndex,
		logger:     logger,
	}, nil
}

// GetLocation sends whatever radio observations are available. Scan failures
// only narrow the request down to IP geolocation.
func (g *GoogleGeolocationProvider) GetLocation(ctx context.Context) (Location, error) {
	req := &maps.GeolocationRequest{ConsiderIP: true}

	if aps, err := g.scanner.WiFiAccessPoints(ctx); err != nil {
		g.logger.Debug().Err(err).Msg("WiFi scan unavailable")
	} else {
		req.WiFiAccessPoints = aps
	}
	if towers, err := g.scanner.CellTowers(ctx, g.modemIndex); err != nil {
		g.logger.Debug().Err(err).Msg("Cell tower scan unavailable")
	} else {
		req.CellTowers = towers
	}

	resp, err := g.client.Geolocate(ctx, req)
	if err != nil {
		return Location{}, fmt.Errorf("geolocate: %w", err)
	}
	return Location{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  resp.Accuracy,
	}, nil
}
