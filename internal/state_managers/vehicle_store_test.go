package state_managers_test

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/internal/state_managers"
)

// steppingClock returns a new instant, one second apart, on every call.
func steppingClock() func() time.Time {
	t := time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func vehicle(id string, lat, lng float64, status models.VehicleStatus) models.VehicleRecord {
	return models.VehicleRecord{
		ID:       id,
		Position: models.LatLng{Lat: lat, Lng: lng},
		Speed:    50,
		Heading:  90,
		Status:   status,
	}
}

func ids(records []models.VehicleRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	sort.Strings(out)
	return out
}

// TestVehicleStore_Merge_StampsAndReplaces keeps one record per id, fully replaced.
func TestVehicleStore_Merge_StampsAndReplaces(t *testing.T) {
	store := state_managers.NewVehicleStore(state_managers.NewSimulationToggle(), steppingClock(), zerolog.Nop())

	first := store.Merge([]models.VehicleRecord{
		vehicle("UBER-001", 25.10, 121.50, models.StatusAvailable),
		vehicle("UBER-002", 25.11, 121.51, models.StatusBusy),
	})
	require.Len(t, first, 2)
	assert.False(t, first[0].LastObservedAt.IsZero())

	update := vehicle("UBER-001", 25.20, 121.60, models.StatusOffline)
	update.Speed = 0
	store.Merge([]models.VehicleRecord{update})

	got, ok := store.Get("UBER-001")
	require.True(t, ok)
	assert.Equal(t, models.LatLng{Lat: 25.20, Lng: 121.60}, got.Position)
	assert.Equal(t, models.StatusOffline, got.Status)
	assert.Zero(t, got.Speed)
	assert.True(t, got.LastObservedAt.After(first[0].LastObservedAt))

	// Absent from the last snapshot but still held.
	_, ok = store.Get("UBER-002")
	assert.True(t, ok)
	assert.Equal(t, 2, store.Len())
}

// TestVehicleStore_LastWriteWins checks random merge sequences against a reference map.
func TestVehicleStore_LastWriteWins(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	store := state_managers.NewVehicleStore(state_managers.NewSimulationToggle(), steppingClock(), zerolog.Nop())
	want := map[string]models.VehicleRecord{}

	for i := 0; i < 50; i++ {
		var batch []models.VehicleRecord
		for j := 0; j < rng.IntN(6); j++ {
			r := vehicle(fmt.Sprintf("UBER-%03d", rng.IntN(12)), rng.Float64(), rng.Float64(), models.StatusBusy)
			batch = append(batch, r)
		}
		for _, r := range store.Merge(batch) {
			want[r.ID] = r
		}
	}

	all := store.All()
	require.Len(t, all, len(want))
	for _, r := range all {
		assert.Equal(t, want[r.ID], r)
	}
}

// TestVehicleStore_PausedMergeIsNoop leaves the store untouched while the toggle is off.
func TestVehicleStore_PausedMergeIsNoop(t *testing.T) {
	toggle := state_managers.NewSimulationToggle()
	store := state_managers.NewVehicleStore(toggle, steppingClock(), zerolog.Nop())
	store.Merge([]models.VehicleRecord{vehicle("UBER-001", 25.1, 121.5, models.StatusAvailable)})
	before := store.All()

	toggle.Set(false)
	assert.Nil(t, store.Merge([]models.VehicleRecord{
		vehicle("UBER-001", 30, 130, models.StatusBusy),
		vehicle("UBER-009", 30, 130, models.StatusBusy),
	}))
	assert.Equal(t, before, store.All())

	toggle.Set(true)
	store.Merge([]models.VehicleRecord{vehicle("UBER-002", 25.2, 121.6, models.StatusOffline)})
	assert.Equal(t, []string{"UBER-001", "UBER-002"}, ids(store.All()))
	got, _ := store.Get("UBER-001")
	assert.Equal(t, models.StatusAvailable, got.Status, "paused snapshots are not replayed")
}

func TestVehicleStore_Reset(t *testing.T) {
	store := state_managers.NewVehicleStore(state_managers.NewSimulationToggle(), steppingClock(), zerolog.Nop())
	store.Merge([]models.VehicleRecord{vehicle("UBER-001", 25.1, 121.5, models.StatusAvailable)})

	store.Reset()

	assert.Zero(t, store.Len())
	assert.Empty(t, store.All())
}
