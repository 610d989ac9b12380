package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/dispatcher"
	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/pkg/location"
)

// GeolocationService performs the one-shot device location lookup and posts
// the outcome to the dispatcher.
type GeolocationService struct {
	// Configuration fields
	timeout time.Duration

	// Dependencies
	provider location.Provider
	poster   dispatcher.Poster
	logger   zerolog.Logger

	// Internal state management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewGeolocationService creates a service asking provider once, bounded by timeout.
func NewGeolocationService(timeout time.Duration, provider location.Provider, poster dispatcher.Poster, logger zerolog.Logger) *GeolocationService {
	return &GeolocationService{
		timeout:  timeout,
		provider: provider,
		poster:   poster,
		logger:   logger,
	}
}

// Start launches the lookup in the background.
func (g *GeolocationService) Start() error {
	if g.running {
		g.logger.Warn().Msg("GeolocationService is already running")
		return errors.New("geolocation service is already running")
	}

	g.ctx, g.cancel = context.WithTimeout(context.Background(), g.timeout)
	g.running = true

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.cancel()

		started := time.Now()
		loc, err := g.provider.GetLocation(g.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			g.logger.Warn().Err(err).Dur("elapsed", time.Since(started)).Msg("Geolocation lookup failed")
			g.poster.Post(dispatcher.DeviceLocation{Err: err})
			return
		}

		g.logger.Info().
			Float64("lat", loc.Latitude).
			Float64("lng", loc.Longitude).
			Float64("accuracy", loc.Accuracy).
			Msg("Device location acquired")
		g.poster.Post(dispatcher.DeviceLocation{
			Location: models.LatLng{Lat: loc.Latitude, Lng: loc.Longitude},
		})
	}()

	g.logger.Info().Dur("timeout", g.timeout).Msg("GeolocationService started")
	return nil
}

// Stop abandons a lookup still in flight.
func (g *GeolocationService) Stop() error {
	if !g.running {
		g.logger.Warn().Msg("GeolocationService is not running")
		return errors.New("geolocation service is not running")
	}

	g.cancel()
	g.wg.Wait()

	g.running = false
	g.logger.Info().Msg("GeolocationService stopped")
	return nil
}
