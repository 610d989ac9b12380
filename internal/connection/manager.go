package connection

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/dispatcher"
	"github.com/benmeehan/fleet-mirror/internal/metrics_collectors"
	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/internal/protocol"
	"github.com/benmeehan/fleet-mirror/pkg/ws"
)

// MessageHandler receives decoded inbound messages.
type MessageHandler func(protocol.Message)

// StatusHandler receives every published connection status.
type StatusHandler func(models.ConnectionStatus)

// Manager owns the fleet channel. Its Handle* methods and Open/Send must be
// called from the dispatcher goroutine; transport goroutines only post events.
type Manager struct {
	// Configuration fields
	endpoint string

	// Dependencies
	dialer    ws.Dialer
	policy    *LinearBackOff
	scheduler dispatcher.Scheduler
	poster    dispatcher.Poster
	metrics   *metrics_collectors.FleetMetrics
	logger    zerolog.Logger

	// Internal state, dispatcher goroutine only
	ctx      context.Context
	state    models.ConnectionState
	conn     ws.Conn
	connID   string
	pending  dispatcher.Timer
	terminal bool
	shutdown bool

	messageHandlers []MessageHandler
	statusHandlers  []StatusHandler
}

// NewManager creates a manager in the closed state. ctx bounds every dial.
func NewManager(ctx context.Context, endpoint string, dialer ws.Dialer, policy *LinearBackOff,
	scheduler dispatcher.Scheduler, poster dispatcher.Poster, metrics *metrics_collectors.FleetMetrics, logger zerolog.Logger) *Manager {
	return &Manager{
		ctx:       ctx,
		endpoint:  endpoint,
		dialer:    dialer,
		policy:    policy,
		scheduler: scheduler,
		poster:    poster,
		metrics:   metrics,
		logger:    logger,
		state:     models.StateClosed,
	}
}

// OnMessage subscribes to decoded inbound messages.
func (m *Manager) OnMessage(h MessageHandler) {
	m.messageHandlers = append(m.messageHandlers, h)
}

// OnStatus subscribes to connection status changes.
func (m *Manager) OnStatus(h StatusHandler) {
	m.statusHandlers = append(m.statusHandlers, h)
}

// State returns the current connection state.
func (m *Manager) State() models.ConnectionState {
	return m.state
}

// Attempt returns the reconnect attempts made since the last successful open.
func (m *Manager) Attempt() int {
	return m.policy.Attempt()
}

// Open starts a new connection attempt. The outcome arrives as events.
func (m *Manager) Open() {
	if m.shutdown {
		return
	}
	m.connID = uuid.NewString()
	m.setState(models.StateConnecting, 0)

	m.logger.Info().Str("conn_id", m.connID).Str("endpoint", m.endpoint).Msg("Connecting to fleet channel")
	go m.run(m.ctx, m.connID)
}

// run dials and then pumps frames into the dispatcher until the connection ends.
func (m *Manager) run(ctx context.Context, connID string) {
	conn, err := m.dialer.Dial(ctx, m.endpoint)
	if err != nil {
		m.poster.Post(dispatcher.ConnError{ConnID: connID, Err: err})
		m.poster.Post(dispatcher.ConnClosed{ConnID: connID})
		return
	}
	if !m.poster.Post(dispatcher.ConnOpened{ConnID: connID, Conn: conn}) {
		_ = conn.Close()
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !ws.IsCloseError(err) {
				m.poster.Post(dispatcher.ConnError{ConnID: connID, Err: err})
			}
			m.poster.Post(dispatcher.ConnClosed{ConnID: connID})
			return
		}
		if !m.poster.Post(dispatcher.ConnMessage{ConnID: connID, Payload: payload}) {
			_ = conn.Close()
			return
		}
	}
}

// HandleOpened adopts a freshly dialed connection.
func (m *Manager) HandleOpened(ev dispatcher.ConnOpened) {
	if ev.ConnID != m.connID || m.shutdown {
		_ = ev.Conn.Close()
		return
	}
	m.conn = ev.Conn
	m.policy.Reset()
	m.setState(models.StateOpen, 0)
	m.logger.Info().Str("conn_id", ev.ConnID).Msg("Fleet channel connected")
}

// HandleMessage decodes a frame and notifies subscribers. Bad payloads are dropped.
func (m *Manager) HandleMessage(ev dispatcher.ConnMessage) {
	if ev.ConnID != m.connID {
		return
	}

	msg, err := protocol.Decode(ev.Payload)
	switch {
	case errors.Is(err, protocol.ErrUnknownType):
		m.metrics.MessagesReceived.WithLabelValues("unknown").Inc()
		m.logger.Info().Str("type", string(msg.Type)).Msg("Ignoring message of unknown type")
		return
	case err != nil:
		m.metrics.PayloadsDropped.Inc()
		m.logger.Warn().Err(err).Int("bytes", len(ev.Payload)).Msg("Dropping malformed message")
		return
	}

	m.metrics.MessagesReceived.WithLabelValues(string(msg.Type)).Inc()
	if msg.Rejected > 0 {
		m.metrics.EntriesRejected.Add(float64(msg.Rejected))
		m.logger.Warn().Int("rejected", msg.Rejected).Str("type", string(msg.Type)).Msg("Skipped invalid entries")
	}

	for _, h := range m.messageHandlers {
		h(msg)
	}
}

// HandleError marks the channel closed. Reconnection waits for the close event.
func (m *Manager) HandleError(ev dispatcher.ConnError) {
	if ev.ConnID != m.connID {
		return
	}
	m.logger.Warn().Err(ev.Err).Str("conn_id", ev.ConnID).Msg("Fleet channel error")
	m.setState(models.StateClosed, 0)
}

// HandleClosed releases the connection and applies the reconnection policy.
func (m *Manager) HandleClosed(ev dispatcher.ConnClosed) {
	if ev.ConnID != m.connID {
		return
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.logger.Info().Str("conn_id", ev.ConnID).Msg("Fleet channel closed")

	if m.shutdown {
		m.setState(models.StateClosed, 0)
		return
	}
	m.scheduleReconnect()
}

// HandleReconnectDue runs a scheduled attempt.
func (m *Manager) HandleReconnectDue(ev dispatcher.ReconnectDue) {
	m.pending = nil
	if m.terminal || m.shutdown {
		return
	}
	m.logger.Info().Int("attempt", ev.Attempt).Msg("Reconnecting to fleet channel")
	m.Open()
}

func (m *Manager) scheduleReconnect() {
	if m.terminal {
		return
	}

	delay := m.policy.NextBackOff()
	if delay == backoff.Stop {
		m.terminal = true
		m.setState(models.StateClosed, 0)
		m.logger.Error().Int("max_attempts", m.policy.MaxAttempts).Msg("Reconnect attempts exhausted, giving up")
		return
	}

	attempt := m.policy.Attempt()
	m.metrics.ReconnectAttempts.Inc()
	m.setState(models.StateClosed, delay)
	m.logger.Info().Int("attempt", attempt).Dur("delay", delay).Msg("Scheduling reconnect")

	m.pending = m.scheduler.AfterFunc(delay, func() {
		m.poster.Post(dispatcher.ReconnectDue{Attempt: attempt})
	})
}

// Send writes msg when the channel is open and reports whether it was written.
// Nothing is queued while the channel is down.
func (m *Manager) Send(msg any) bool {
	if m.state != models.StateOpen || m.conn == nil {
		m.logger.Debug().Str("state", string(m.state)).Msg("Channel not open, message not sent")
		return false
	}
	payload, err := protocol.Encode(msg)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to serialize outbound message")
		return false
	}
	if err := m.conn.WriteMessage(ws.TextMessage, payload); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to send outbound message")
		return false
	}
	return true
}

// Shutdown stops any pending reconnect and closes the channel for good.
func (m *Manager) Shutdown() {
	m.shutdown = true
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.setState(models.StateClosed, 0)
}

// Status builds the status value published to subscribers.
func (m *Manager) Status() models.ConnectionStatus {
	return models.ConnectionStatus{
		State:       m.state,
		Attempt:     m.policy.Attempt(),
		MaxAttempts: m.policy.MaxAttempts,
		Terminal:    m.terminal,
	}
}

func (m *Manager) setState(state models.ConnectionState, retryIn time.Duration) {
	m.state = state
	m.metrics.SetConnectionState(state)

	status := m.Status()
	status.RetryIn = retryIn
	for _, h := range m.statusHandlers {
		h(status)
	}
}
