package views

import (
	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/models"
)

// LogSink writes status changes and fleet counts to the log.
type LogSink struct {
	logger     zerolog.Logger
	lastLabel  string
	lastCounts Counts
}

// NewLogSink creates a sink that logs through logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) SetStatus(label string, status models.ConnectionStatus) {
	if label == s.lastLabel {
		return
	}
	s.lastLabel = label
	s.logger.Info().
		Str("status", label).
		Str("state", string(status.State)).
		Int("attempt", status.Attempt).
		Bool("terminal", status.Terminal).
		Msg("Connection status")
}

func (s *LogSink) SetSidebar(model SidebarModel) {
	if model.Counts == s.lastCounts {
		return
	}
	s.lastCounts = model.Counts
	s.logger.Info().
		Int("total", model.Counts.Total).
		Int("available", model.Counts.Available).
		Int("busy", model.Counts.Busy).
		Int("offline", model.Counts.Offline).
		Msg("Fleet summary")
}
