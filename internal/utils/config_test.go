package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type mockFileClient struct {
	mock.Mock
}

func (m *mockFileClient) IsFileExists(filePath string) (bool, error) {
	args := m.Called(filePath)
	return args.Bool(0), args.Error(1)
}

func (m *mockFileClient) ReadFileRaw(filePath string) ([]byte, error) {
	args := m.Called(filePath)
	raw, _ := args.Get(0).([]byte)
	return raw, args.Error(1)
}

func (m *mockFileClient) ReadYamlFile(filePath string, v any) error {
	args := m.Called(filePath, v)
	if doc, ok := args.Get(0).(string); ok && doc != "" {
		if err := yaml.Unmarshal([]byte(doc), v); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	fc := new(mockFileClient)
	fc.On("ReadYamlFile", "config.yaml", mock.Anything).Return(`
server:
  origin: https://fleet.example.com
reconnect:
  step: 2s
labels:
  connected: "已連線"
`, nil)

	cfg, err := LoadConfig("config.yaml", fc)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Reconnect.Step)
	assert.Equal(t, 5, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Animation.Duration)
	assert.Equal(t, 13, cfg.Map.DefaultZoom)
	assert.Equal(t, 16, cfg.Map.FocusZoom)
	assert.Equal(t, 25.1, cfg.Map.FallbackLatitude)
	assert.Equal(t, 121.55, cfg.Map.FallbackLongitude)
	assert.Equal(t, ProviderNone, cfg.Geolocation.Provider)
	assert.Equal(t, "已連線", cfg.Labels.Connected)
	assert.Equal(t, "Busy", cfg.Labels.Busy)
	fc.AssertExpectations(t)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"missing origin":        "reconnect:\n  max_attempts: 3\n",
		"google without key":    "server:\n  origin: http://localhost:8000\ngeolocation:\n  provider: google\n",
		"mqtt without broker":   "server:\n  origin: http://localhost:8000\nmqtt:\n  enabled: true\n",
		"unknown provider":      "server:\n  origin: http://localhost:8000\ngeolocation:\n  provider: wifi\n",
		"fallback out of range": "server:\n  origin: http://localhost:8000\nmap:\n  fallback_latitude: 95\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			fc := new(mockFileClient)
			fc.On("ReadYamlFile", "c.yaml", mock.Anything).Return(doc, nil)

			_, err := LoadConfig("c.yaml", fc)
			var verrs validator.ValidationErrors
			assert.True(t, errors.As(err, &verrs), "got %v", err)
		})
	}
}

func TestLoadConfig_ReadError(t *testing.T) {
	fc := new(mockFileClient)
	fc.On("ReadYamlFile", "missing.yaml", mock.Anything).Return("", errors.New("no such file"))

	_, err := LoadConfig("missing.yaml", fc)
	assert.ErrorContains(t, err, "missing.yaml")
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Shell.Enabled)
	assert.False(t, cfg.MQTT.Enabled)
}
