package services

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/internal/views"
	"github.com/benmeehan/fleet-mirror/pkg/mqtt"
)

const publishTimeout = 5 * time.Second

// FleetSummary is the payload published on every change of status or counts.
type FleetSummary struct {
	Status    string                 `json:"status"`
	State     models.ConnectionState `json:"state"`
	Terminal  bool                   `json:"terminal"`
	Counts    views.Counts           `json:"counts"`
	Timestamp time.Time              `json:"timestamp"`
}

// SummaryPublisher is a page sink that mirrors the status label and the
// fleet counts to an MQTT topic.
type SummaryPublisher struct {
	// Configuration fields
	topic string
	qos   int

	// Dependencies
	mqttClient mqtt.MQTTClient
	now        func() time.Time
	logger     zerolog.Logger

	mu      sync.Mutex
	current FleetSummary
	wg      sync.WaitGroup
	running bool
}

var _ views.PageSink = (*SummaryPublisher)(nil)

// NewSummaryPublisher creates a publisher on an already connected client.
func NewSummaryPublisher(topic string, qos int, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *SummaryPublisher {
	return &SummaryPublisher{
		topic:      topic,
		qos:        qos,
		mqttClient: mqttClient,
		now:        time.Now,
		logger:     logger,
	}
}

// Start enables publishing.
func (p *SummaryPublisher) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.logger.Warn().Msg("SummaryPublisher is already running")
		return errors.New("summary publisher is already running")
	}
	p.running = true
	p.logger.Info().Str("topic", p.topic).Int("qos", p.qos).Msg("SummaryPublisher started")
	return nil
}

// Stop waits for in-flight publishes and disconnects from the broker.
func (p *SummaryPublisher) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		p.logger.Warn().Msg("SummaryPublisher is not running")
		return errors.New("summary publisher is not running")
	}
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
	p.mqttClient.Disconnect(250)
	p.logger.Info().Msg("SummaryPublisher stopped")
	return nil
}

// SetStatus implements views.PageSink.
func (p *SummaryPublisher) SetStatus(label string, status models.ConnectionStatus) {
	p.update(func(s *FleetSummary) {
		s.Status = label
		s.State = status.State
		s.Terminal = status.Terminal
	})
}

// SetSidebar implements views.PageSink.
func (p *SummaryPublisher) SetSidebar(model views.SidebarModel) {
	p.update(func(s *FleetSummary) {
		s.Counts = model.Counts
	})
}

// update applies fn and publishes when the summary changed.
func (p *SummaryPublisher) update(fn func(*FleetSummary)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}

	next := p.current
	fn(&next)
	next.Timestamp = p.current.Timestamp
	if next == p.current {
		return
	}
	next.Timestamp = p.now()
	p.current = next

	payload, err := json.Marshal(next)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to serialize fleet summary")
		return
	}

	token := p.mqttClient.Publish(p.topic, byte(p.qos), false, payload)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if !token.WaitTimeout(publishTimeout) {
			p.logger.Warn().Str("topic", p.topic).Msg("Fleet summary publish timed out")
			return
		}
		if err := token.Error(); err != nil {
			p.logger.Error().Err(err).Str("topic", p.topic).Msg("Failed to publish fleet summary")
		}
	}()
}
