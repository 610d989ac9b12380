package service_registry

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/constants"
	"github.com/benmeehan/fleet-mirror/internal/dispatcher"
	"github.com/benmeehan/fleet-mirror/internal/metrics_collectors"
	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/internal/registry"
	"github.com/benmeehan/fleet-mirror/internal/scene"
	"github.com/benmeehan/fleet-mirror/internal/services"
	"github.com/benmeehan/fleet-mirror/internal/state_managers"
	"github.com/benmeehan/fleet-mirror/internal/utils"
	"github.com/benmeehan/fleet-mirror/internal/views"
	"github.com/benmeehan/fleet-mirror/pkg/file"
	"github.com/benmeehan/fleet-mirror/pkg/location"
	"github.com/benmeehan/fleet-mirror/pkg/mqtt"
	"github.com/benmeehan/fleet-mirror/pkg/ws"
)

const dispatcherBuffer = 256

// ServiceRegistry manages the lifecycle of various services in the system.
type ServiceRegistry struct {
	services    map[string]registry.Service // Stores registered services
	serviceKeys []string                    // Maintains order of service registration
	fileClient  file.FileOperations
	metrics     *prometheus.Registry
	Logger      zerolog.Logger

	// Overridable for tests.
	dialer      ws.Dialer
	newProvider func(config *utils.Config) (location.Provider, error)
	newMQTT     func(config *utils.Config) (mqtt.MQTTClient, error)
}

// NewServiceRegistry initializes a new service registry with dependencies.
func NewServiceRegistry(fileClient file.FileOperations, logger zerolog.Logger) *ServiceRegistry {
	sr := &ServiceRegistry{
		services:   make(map[string]registry.Service),
		fileClient: fileClient,
		metrics:    prometheus.NewRegistry(),
		Logger:     logger,
	}
	sr.newProvider = sr.locationProvider
	sr.newMQTT = sr.mqttClient
	return sr
}

// Metrics returns the Prometheus registry every collector is registered with.
func (sr *ServiceRegistry) Metrics() *prometheus.Registry {
	return sr.metrics
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// Services returns the registered service names in start order.
func (sr *ServiceRegistry) Services() []string {
	return append([]string(nil), sr.serviceKeys...)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return fmt.Errorf("start %s: %w", name, err)
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices builds the mirror and its satellites from configuration.
// Registration order is start order: sinks first, the mirror, then the
// geolocation lookup whose result the mirror consumes.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config) error {
	endpoint, err := ws.EndpointFromOrigin(config.Server.Origin, constants.WebSocketPath)
	if err != nil {
		return fmt.Errorf("derive socket endpoint: %w", err)
	}

	sr.metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	fleetMetrics := metrics_collectors.NewFleetMetrics(sr.metrics)

	loop := dispatcher.NewDispatcher(dispatcherBuffer, sr.Logger.With().Str("component", "dispatcher").Logger())
	toggle := state_managers.NewSimulationToggle()
	scheduler := dispatcher.SystemScheduler{}
	store := state_managers.NewVehicleStore(toggle, scheduler.Now, sr.Logger.With().Str("component", "store").Logger())
	substrate := scene.New(scene.Viewport{
		Center: models.LatLng{Lat: config.Map.FallbackLatitude, Lng: config.Map.FallbackLongitude},
		Zoom:   config.Map.DefaultZoom,
	})
	sinks := views.MultiSink{views.NewLogSink(sr.Logger.With().Str("component", "page").Logger())}

	dialer := sr.dialer
	if dialer == nil {
		dialer = ws.NewGorillaDialer(nil, config.Reconnect.DialTimeout)
	}

	// Ordered service definitions with inline constructors
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (registry.Service, error)
	}{
		{
			name:    "shell",
			enabled: config.Shell.Enabled,
			constructor: func() (registry.Service, error) {
				shell := services.NewShellService(
					config.Shell.ListenAddr,
					config.Shell.AllowedOrigins,
					loop,
					substrate,
					store,
					toggle,
					sr.metrics,
					sr.Logger.With().Str("service", "shell").Logger(),
				)
				sinks = append(sinks, shell)
				return shell, nil
			},
		},
		{
			name:    "summary",
			enabled: config.MQTT.Enabled,
			constructor: func() (registry.Service, error) {
				client, err := sr.newMQTT(config)
				if err != nil {
					return nil, err
				}
				publisher := services.NewSummaryPublisher(
					config.MQTT.Topic,
					config.MQTT.QOS,
					client,
					sr.Logger.With().Str("service", "summary").Logger(),
				)
				sinks = append(sinks, publisher)
				return publisher, nil
			},
		},
		{
			name:    "mirror",
			enabled: true,
			constructor: func() (registry.Service, error) {
				return services.NewMirrorService(
					services.MirrorConfig{
						Endpoint:          endpoint,
						ReconnectStep:     config.Reconnect.Step,
						MaxAttempts:       config.Reconnect.MaxAttempts,
						AnimationDuration: config.Animation.Duration,
						FrameInterval:     config.Animation.FrameInterval,
						DefaultZoom:       config.Map.DefaultZoom,
						FocusZoom:         config.Map.FocusZoom,
						Fallback:          models.LatLng{Lat: config.Map.FallbackLatitude, Lng: config.Map.FallbackLongitude},
						Labels:            config.Labels,
					},
					loop,
					dialer,
					substrate,
					sinks,
					store,
					toggle,
					scheduler,
					fleetMetrics,
					sr.Logger.With().Str("service", "mirror").Logger(),
				), nil
			},
		},
		{
			name:    "geolocation",
			enabled: true,
			constructor: func() (registry.Service, error) {
				provider, err := sr.newProvider(config)
				if err != nil {
					return nil, err
				}
				return services.NewGeolocationService(
					config.Geolocation.Timeout,
					provider,
					loop,
					sr.Logger.With().Str("service", "geolocation").Logger(),
				), nil
			},
		},
	}

	// Register services in the predefined order
	registeredServices := []string{}
	for _, svc := range servicesInOrder {
		if svc.enabled {
			serviceInstance, err := svc.constructor()
			if err != nil {
				sr.Logger.Error().Err(err).Msgf("Failed to create %s service", svc.name)
				return err
			}
			sr.RegisterService(svc.name, serviceInstance)
			registeredServices = append(registeredServices, svc.name)
		}
	}

	sr.Logger.Info().Str("endpoint", endpoint).Msgf("Registered services in order: %v", registeredServices)
	return nil
}

func (sr *ServiceRegistry) locationProvider(config *utils.Config) (location.Provider, error) {
	geo := config.Geolocation
	switch geo.Provider {
	case utils.ProviderSensor:
		return location.NewDeviceSensorProvider(geo.GPSDevicePort, geo.GPSDeviceBaudRate), nil
	case utils.ProviderGoogle:
		provider, err := location.NewGoogleGeolocationProvider(geo.MapsAPIKey, geo.ModemIndex,
			sr.Logger.With().Str("component", "geolocation").Logger())
		if err != nil {
			sr.Logger.Error().Err(err).Msg("failed to create Google Geolocation provider")
			return nil, err
		}
		return provider, nil
	case utils.ProviderStatic:
		return location.StaticProvider{Location: location.Location{
			Latitude:  geo.StaticLatitude,
			Longitude: geo.StaticLongitude,
		}}, nil
	default:
		return location.NoneProvider{}, nil
	}
}

func (sr *ServiceRegistry) mqttClient(config *utils.Config) (mqtt.MQTTClient, error) {
	// Unique client id per process so two mirrors never kick each other off the broker.
	clientID := config.MQTT.ClientID + "-" + uuid.NewString()
	sr.Logger.Info().Str("client_id", clientID).Msg("Using MQTT client ID")

	client := mqtt.NewMqttService(sr.fileClient, sr.Logger.With().Str("component", "mqtt").Logger())
	if err := client.Initialize(config.MQTT.Broker, clientID, config.MQTT.CACertificate, config.MQTT.ConnectTimeout); err != nil {
		return nil, fmt.Errorf("initialize MQTT connection: %w", err)
	}
	return client, nil
}
