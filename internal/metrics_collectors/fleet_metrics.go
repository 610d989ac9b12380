package metrics_collectors

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/benmeehan/fleet-mirror/internal/models"
)

const namespace = "fleet_mirror"

// FleetMetrics groups the Prometheus collectors of the mirror engine.
type FleetMetrics struct {
	MessagesReceived  *prometheus.CounterVec
	PayloadsDropped   prometheus.Counter
	EntriesRejected   prometheus.Counter
	ReconnectAttempts prometheus.Counter
	ConnectionState   *prometheus.GaugeVec
	VehiclesTracked   prometheus.Gauge
	AnimationsStarted prometheus.Counter
}

// NewFleetMetrics creates the collectors and registers them with reg.
func NewFleetMetrics(reg prometheus.Registerer) *FleetMetrics {
	m := &FleetMetrics{
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Inbound fleet messages by type.",
		}, []string{"type"}),
		PayloadsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_dropped_total",
			Help:      "Inbound payloads dropped because they could not be decoded.",
		}),
		EntriesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vehicle_entries_rejected_total",
			Help:      "Vehicle entries and user locations skipped by validation.",
		}),
		ReconnectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnect_attempts_total",
			Help:      "Scheduled reconnection attempts.",
		}),
		ConnectionState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "1 for the current connection state, 0 otherwise.",
		}, []string{"state"}),
		VehiclesTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vehicles_tracked",
			Help:      "Vehicles currently held in the state store.",
		}),
		AnimationsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animations_started_total",
			Help:      "Marker transitions started.",
		}),
	}

	reg.MustRegister(
		m.MessagesReceived,
		m.PayloadsDropped,
		m.EntriesRejected,
		m.ReconnectAttempts,
		m.ConnectionState,
		m.VehiclesTracked,
		m.AnimationsStarted,
	)
	return m
}

// SetConnectionState flips the state gauge to state.
func (m *FleetMetrics) SetConnectionState(state models.ConnectionState) {
	for _, s := range []models.ConnectionState{models.StateConnecting, models.StateOpen, models.StateClosed} {
		v := 0.0
		if s == state {
			v = 1
		}
		m.ConnectionState.WithLabelValues(string(s)).Set(v)
	}
}
