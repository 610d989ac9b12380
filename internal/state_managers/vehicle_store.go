package state_managers

import (
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/models"
)

// VehicleStore holds the last known record of every vehicle seen.
// Writes happen on the dispatcher goroutine; reads may come from anywhere.
type VehicleStore struct {
	records cmap.ConcurrentMap[string, models.VehicleRecord]
	gate    Gate
	now     func() time.Time
	logger  zerolog.Logger
}

// NewVehicleStore creates an empty store. Merges are skipped while gate is disabled.
func NewVehicleStore(gate Gate, now func() time.Time, logger zerolog.Logger) *VehicleStore {
	return &VehicleStore{
		records: cmap.New[models.VehicleRecord](),
		gate:    gate,
		now:     now,
		logger:  logger,
	}
}

// Merge stamps each record with the local time and replaces any previous
// record with the same id. It returns the stored records, or nil when paused.
func (s *VehicleStore) Merge(records []models.VehicleRecord) []models.VehicleRecord {
	if !s.gate.Enabled() {
		s.logger.Debug().Int("vehicles", len(records)).Msg("Simulation paused, snapshot not merged")
		return nil
	}

	observedAt := s.now()
	merged := make([]models.VehicleRecord, 0, len(records))
	for _, r := range records {
		r.LastObservedAt = observedAt
		s.records.Set(r.ID, r)
		merged = append(merged, r)
	}
	return merged
}

// Get returns the record for id.
func (s *VehicleStore) Get(id string) (models.VehicleRecord, bool) {
	return s.records.Get(id)
}

// All returns every record in no particular order.
func (s *VehicleStore) All() []models.VehicleRecord {
	out := make([]models.VehicleRecord, 0, s.records.Count())
	for item := range s.records.IterBuffered() {
		out = append(out, item.Val)
	}
	return out
}

// Len returns the number of vehicles held.
func (s *VehicleStore) Len() int {
	return s.records.Count()
}

// Reset empties the store.
func (s *VehicleStore) Reset() {
	s.records.Clear()
}
