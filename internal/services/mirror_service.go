package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/animation"
	"github.com/benmeehan/fleet-mirror/internal/connection"
	"github.com/benmeehan/fleet-mirror/internal/dispatcher"
	"github.com/benmeehan/fleet-mirror/internal/metrics_collectors"
	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/internal/protocol"
	"github.com/benmeehan/fleet-mirror/internal/state_managers"
	"github.com/benmeehan/fleet-mirror/internal/views"
	"github.com/benmeehan/fleet-mirror/pkg/ws"
)

// MirrorConfig holds the tunables of the mirror.
type MirrorConfig struct {
	Endpoint          string
	ReconnectStep     time.Duration
	MaxAttempts       int
	AnimationDuration time.Duration
	FrameInterval     time.Duration
	DefaultZoom       int
	FocusZoom         int
	Fallback          models.LatLng
	Labels            views.Labels
}

// MirrorService keeps the local picture of the fleet in sync with the
// server. It owns every engine component; all of them are touched only from
// the dispatcher goroutine through Handle.
type MirrorService struct {
	// Configuration fields
	fallback      models.LatLng
	frameInterval time.Duration
	labels        views.Labels

	// Dependencies
	loop      *dispatcher.Dispatcher
	poster    dispatcher.Poster
	scheduler dispatcher.Scheduler
	sink      views.PageSink
	metrics   *metrics_collectors.FleetMetrics
	logger    zerolog.Logger

	// Engine components
	conn         *connection.Manager
	store        *state_managers.VehicleStore
	toggle       *state_managers.SimulationToggle
	userLocation *state_managers.UserLocationState
	animator     *animation.Animator
	mapView      *views.MapView
	sidebar      *views.Sidebar

	frameTimer dispatcher.Timer

	// Internal state management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewMirrorService wires the engine to loop. The store and toggle are shared
// with the page shell, which only reads them; the store must be gated by toggle.
func NewMirrorService(cfg MirrorConfig, loop *dispatcher.Dispatcher, dialer ws.Dialer, substrate views.Substrate,
	sink views.PageSink, store *state_managers.VehicleStore, toggle *state_managers.SimulationToggle,
	scheduler dispatcher.Scheduler, metrics *metrics_collectors.FleetMetrics, logger zerolog.Logger) *MirrorService {
	s := newMirrorService(cfg, loop, dialer, substrate, sink, store, toggle, scheduler, metrics, logger)
	s.loop = loop
	return s
}

func newMirrorService(cfg MirrorConfig, poster dispatcher.Poster, dialer ws.Dialer, substrate views.Substrate,
	sink views.PageSink, store *state_managers.VehicleStore, toggle *state_managers.SimulationToggle,
	scheduler dispatcher.Scheduler, metrics *metrics_collectors.FleetMetrics, logger zerolog.Logger) *MirrorService {
	ctx, cancel := context.WithCancel(context.Background())
	labels := cfg.Labels.WithDefaults()

	s := &MirrorService{
		fallback:      cfg.Fallback,
		frameInterval: cfg.FrameInterval,
		labels:        labels,
		poster:        poster,
		scheduler:     scheduler,
		sink:          sink,
		metrics:       metrics,
		logger:        logger,
		store:         store,
		toggle:        toggle,
		userLocation:  state_managers.NewUserLocationState(),
		ctx:           ctx,
		cancel:        cancel,
	}

	s.animator = animation.NewAnimator(cfg.AnimationDuration, logger.With().Str("component", "animator").Logger())
	s.mapView = views.NewMapView(substrate, s.animator, labels, cfg.DefaultZoom, cfg.FocusZoom,
		logger.With().Str("component", "map").Logger())
	s.sidebar = views.NewSidebar(labels, s.mapView.Focus, logger.With().Str("component", "sidebar").Logger())
	s.mapView.OnMarkerClick(func(id string) {
		s.sink.SetSidebar(s.sidebar.Select(id))
	})

	s.conn = connection.NewManager(ctx, cfg.Endpoint, dialer,
		connection.NewLinearBackOff(cfg.ReconnectStep, cfg.MaxAttempts),
		scheduler, poster, metrics, logger.With().Str("component", "connection").Logger())
	s.conn.OnMessage(s.applyMessage)
	s.conn.OnStatus(func(status models.ConnectionStatus) {
		s.sink.SetStatus(s.labels.Connection(status), status)
	})
	return s
}

// Start renders the empty page, opens the channel and runs the dispatcher loop.
func (s *MirrorService) Start() error {
	if s.running {
		s.logger.Warn().Msg("MirrorService is already running")
		return errors.New("mirror service is already running")
	}
	if s.loop == nil {
		return errors.New("mirror service has no event loop")
	}
	s.running = true

	// Nothing else touches the engine until the loop starts.
	s.sink.SetSidebar(s.sidebar.Render(nil))
	s.conn.Open()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.loop.Run(s.ctx, s.Handle); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("Dispatcher loop stopped")
		}
	}()

	s.logger.Info().Msg("MirrorService started")
	return nil
}

// Stop ends the loop, then tears the engine down. The connection is closed
// without scheduling a reconnect.
func (s *MirrorService) Stop() error {
	if !s.running {
		s.logger.Warn().Msg("MirrorService is not running")
		return errors.New("mirror service is not running")
	}

	s.cancel()
	s.wg.Wait()
	s.shutdown()

	s.running = false
	s.logger.Info().Msg("MirrorService stopped")
	return nil
}

func (s *MirrorService) shutdown() {
	if s.frameTimer != nil {
		s.frameTimer.Stop()
		s.frameTimer = nil
	}
	s.conn.Shutdown()
}

// reset returns the engine to its initial empty state without touching the
// connection.
func (s *MirrorService) reset() {
	s.store.Reset()
	s.userLocation.Reset()
	s.mapView.Reset()
	s.sidebar.Reset()
	s.metrics.VehiclesTracked.Set(0)
	s.sink.SetSidebar(s.sidebar.Render(nil))
}

// Handle is the dispatcher handler.
func (s *MirrorService) Handle(ev dispatcher.Event) {
	switch e := ev.(type) {
	case dispatcher.ConnOpened:
		s.conn.HandleOpened(e)
	case dispatcher.ConnMessage:
		s.conn.HandleMessage(e)
	case dispatcher.ConnError:
		s.conn.HandleError(e)
	case dispatcher.ConnClosed:
		s.conn.HandleClosed(e)
	case dispatcher.ReconnectDue:
		s.conn.HandleReconnectDue(e)
	case dispatcher.FrameTick:
		s.onFrame(e.At)
	case dispatcher.DeviceLocation:
		s.onDeviceLocation(e)
	case dispatcher.FocusRequested:
		if !s.sidebar.Click(e.VehicleID) {
			s.logger.Debug().Str("vehicle_id", e.VehicleID).Msg("Focus on unknown vehicle ignored")
		}
	case dispatcher.MarkerClicked:
		if !s.mapView.Click(e.VehicleID) {
			s.logger.Debug().Str("vehicle_id", e.VehicleID).Msg("Click on unknown marker ignored")
		}
	case dispatcher.SimulationToggled:
		if s.toggle.Set(e.Enabled) {
			s.logger.Info().Bool("enabled", e.Enabled).Msg("Simulation toggled")
		}
	case dispatcher.ResetRequested:
		s.reset()
		s.logger.Info().Msg("Mirror reset")
	default:
		s.logger.Warn().Str("event", dispatcher.Name(ev)).Msg("Unhandled event")
	}
}

// applyMessage folds one decoded message into the store, the user location
// and the views.
func (s *MirrorService) applyMessage(msg protocol.Message) {
	if !s.toggle.Enabled() {
		s.logger.Debug().Str("type", string(msg.Type)).Msg("Simulation paused, message ignored")
		return
	}

	merged := s.store.Merge(msg.Vehicles)

	if msg.UserLocation != nil {
		loc := *msg.UserLocation
		var changed bool
		switch msg.Type {
		case protocol.TypeInitialData:
			changed = s.userLocation.ApplyInitial(loc)
		case protocol.TypeLocationUpdated:
			changed = s.userLocation.ApplyUpdated(loc)
		}
		if changed {
			s.mapView.SetUserMarker(loc)
		}
	}

	now := s.scheduler.Now()
	for _, v := range merged {
		if !s.mapView.EnsureMarker(v, now) {
			s.metrics.AnimationsStarted.Inc()
		}
	}
	s.metrics.VehiclesTracked.Set(float64(s.store.Len()))

	s.sink.SetSidebar(s.sidebar.Render(s.store.All()))
	if s.animator.Active() > 0 {
		s.requestFrame()
	}
}

func (s *MirrorService) onDeviceLocation(ev dispatcher.DeviceLocation) {
	if ev.Err != nil {
		s.logger.Warn().Err(ev.Err).
			Float64("lat", s.fallback.Lat).
			Float64("lng", s.fallback.Lng).
			Msg("Device location unavailable, using fallback")
		if s.userLocation.SetFallback(s.fallback) {
			s.mapView.SetUserMarker(s.fallback)
		}
		return
	}

	if s.userLocation.SetDevice(ev.Location) {
		s.mapView.SetUserMarker(ev.Location)
	}
	if s.userLocation.MarkAnnounced() {
		if s.conn.Send(protocol.NewUserLocationMessage(ev.Location)) {
			s.logger.Info().Msg("Announced device location to server")
		}
	}
}

func (s *MirrorService) requestFrame() {
	if s.frameTimer != nil {
		return
	}
	s.frameTimer = s.scheduler.AfterFunc(s.frameInterval, func() {
		s.poster.Post(dispatcher.FrameTick{At: s.scheduler.Now()})
	})
}

func (s *MirrorService) onFrame(at time.Time) {
	s.frameTimer = nil
	if s.animator.Tick(at) {
		s.requestFrame()
	}
}
