package views

import (
	"strconv"
	"strings"

	"github.com/benmeehan/fleet-mirror/internal/models"
)

// Labels holds every user-visible string so the shell can be localized from config.
type Labels struct {
	Available string `yaml:"available"`
	Busy      string `yaml:"busy"`
	Offline   string `yaml:"offline"`

	Connecting   string `yaml:"connecting"`
	Connected    string `yaml:"connected"`
	Disconnected string `yaml:"disconnected"`
	// Reconnecting may contain {attempt} and {max}; other text is kept verbatim.
	Reconnecting string `yaml:"reconnecting"`
	Failed       string `yaml:"failed"`

	UserPopup string `yaml:"user_popup"`
}

// DefaultLabels returns the built-in English labels.
func DefaultLabels() Labels {
	return Labels{
		Available:    "Available",
		Busy:         "Busy",
		Offline:      "Offline",
		Connecting:   "Connecting...",
		Connected:    "Connected",
		Disconnected: "Disconnected",
		Reconnecting: "Reconnecting ({attempt}/{max})",
		Failed:       "Connection failed, please reload",
		UserPopup:    "You are here",
	}
}

// WithDefaults fills empty labels from DefaultLabels.
func (l Labels) WithDefaults() Labels {
	d := DefaultLabels()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&l.Available, d.Available)
	fill(&l.Busy, d.Busy)
	fill(&l.Offline, d.Offline)
	fill(&l.Connecting, d.Connecting)
	fill(&l.Connected, d.Connected)
	fill(&l.Disconnected, d.Disconnected)
	fill(&l.Reconnecting, d.Reconnecting)
	fill(&l.Failed, d.Failed)
	fill(&l.UserPopup, d.UserPopup)
	return l
}

// Status returns the localized label of a vehicle status.
func (l Labels) Status(status models.VehicleStatus) string {
	switch status {
	case models.StatusAvailable:
		return l.Available
	case models.StatusBusy:
		return l.Busy
	case models.StatusOffline:
		return l.Offline
	}
	return string(status)
}

// Connection turns a connection status into the short label shown to the user.
func (l Labels) Connection(s models.ConnectionStatus) string {
	switch {
	case s.Terminal:
		return l.Failed
	case s.State == models.StateOpen:
		return l.Connected
	case s.State == models.StateConnecting:
		return l.Connecting
	case s.RetryIn > 0:
		return strings.NewReplacer(
			"{attempt}", strconv.Itoa(s.Attempt),
			"{max}", strconv.Itoa(s.MaxAttempts),
		).Replace(l.Reconnecting)
	}
	return l.Disconnected
}
