package utils

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/benmeehan/fleet-mirror/internal/constants"
	"github.com/benmeehan/fleet-mirror/internal/views"
	"github.com/benmeehan/fleet-mirror/pkg/file"
)

// Geolocation provider kinds.
const (
	ProviderNone   = "none"
	ProviderSensor = "sensor"
	ProviderGoogle = "google"
	ProviderStatic = "static"
)

// Config represents the structure of the configuration file.
type Config struct {
	Server struct {
		Origin string `yaml:"origin" validate:"required,url"` // Page origin the socket endpoint is derived from
	} `yaml:"server"`

	Reconnect struct {
		Step        time.Duration `yaml:"step" validate:"gt=0"`         // Delay multiplied by the attempt number
		MaxAttempts int           `yaml:"max_attempts" validate:"gt=0"` // Attempts before giving up
		DialTimeout time.Duration `yaml:"dial_timeout" validate:"gt=0"` // Bound on the websocket handshake
	} `yaml:"reconnect"`

	Animation struct {
		Duration      time.Duration `yaml:"duration" validate:"gt=0"`
		FrameInterval time.Duration `yaml:"frame_interval" validate:"gt=0"`
	} `yaml:"animation"`

	Map struct {
		DefaultZoom       int     `yaml:"default_zoom" validate:"gte=1,lte=22"`
		FocusZoom         int     `yaml:"focus_zoom" validate:"gte=1,lte=22"`
		FallbackLatitude  float64 `yaml:"fallback_latitude" validate:"gte=-90,lte=90"`
		FallbackLongitude float64 `yaml:"fallback_longitude" validate:"gte=-180,lte=180"`
	} `yaml:"map"`

	Geolocation struct {
		Provider          string        `yaml:"provider" validate:"oneof=none sensor google static"`
		Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
		MapsAPIKey        string        `yaml:"maps_api_key" validate:"required_if=Provider google"` // Google maps API Key
		ModemIndex        int           `yaml:"modem_index" validate:"gte=0"`                        // ModemManager index for cell tower lookups
		GPSDevicePort     string        `yaml:"gps_device_port" validate:"required_if=Provider sensor"`
		GPSDeviceBaudRate int           `yaml:"gps_baud_rate" validate:"gte=0"`
		StaticLatitude    float64       `yaml:"static_latitude" validate:"gte=-90,lte=90"`
		StaticLongitude   float64       `yaml:"static_longitude" validate:"gte=-180,lte=180"`
	} `yaml:"geolocation"`

	Shell struct {
		Enabled        bool     `yaml:"enabled"`
		ListenAddr     string   `yaml:"listen_addr" validate:"required_if=Enabled true"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"shell"`

	MQTT struct {
		Enabled        bool          `yaml:"enabled"`
		Broker         string        `yaml:"broker" validate:"required_if=Enabled true"` // MQTT broker address
		ClientID       string        `yaml:"client_id" validate:"required_if=Enabled true"`
		CACertificate  string        `yaml:"ca_certificate"` // Path to the CA certificate, empty for plain TCP
		Topic          string        `yaml:"topic" validate:"required_if=Enabled true"`
		QOS            int           `yaml:"qos" validate:"gte=0,lte=2"`
		ConnectTimeout time.Duration `yaml:"connect_timeout"`
	} `yaml:"mqtt"`

	Logging struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`

	Labels views.Labels `yaml:"labels"`
}

// DefaultConfig returns a configuration that talks to a local simulator.
func DefaultConfig() *Config {
	var c Config
	c.Server.Origin = "http://localhost:8000"
	c.Shell.Enabled = true
	c.Shell.ListenAddr = ":8080"
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Reconnect.Step == 0 {
		c.Reconnect.Step = constants.ReconnectStep
	}
	if c.Reconnect.MaxAttempts == 0 {
		c.Reconnect.MaxAttempts = constants.MaxReconnectAttempts
	}
	if c.Reconnect.DialTimeout == 0 {
		c.Reconnect.DialTimeout = constants.DialTimeout
	}
	if c.Animation.Duration == 0 {
		c.Animation.Duration = constants.AnimationDuration
	}
	if c.Animation.FrameInterval == 0 {
		c.Animation.FrameInterval = constants.FrameInterval
	}
	if c.Map.DefaultZoom == 0 {
		c.Map.DefaultZoom = constants.DefaultZoom
	}
	if c.Map.FocusZoom == 0 {
		c.Map.FocusZoom = constants.FocusZoom
	}
	if c.Map.FallbackLatitude == 0 && c.Map.FallbackLongitude == 0 {
		c.Map.FallbackLatitude = constants.FallbackLatitude
		c.Map.FallbackLongitude = constants.FallbackLongitude
	}
	if c.Geolocation.Provider == "" {
		c.Geolocation.Provider = ProviderNone
	}
	if c.Geolocation.Timeout == 0 {
		c.Geolocation.Timeout = constants.GeolocationTimeout
	}
	if c.Geolocation.GPSDeviceBaudRate == 0 {
		c.Geolocation.GPSDeviceBaudRate = 9600
	}
	if c.MQTT.ConnectTimeout == 0 {
		c.MQTT.ConnectTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Labels = c.Labels.WithDefaults()
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadConfig loads the YAML configuration from the specified file,
// fills defaults and validates the result.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, fmt.Errorf("read config %s: %w", filename, err)
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
