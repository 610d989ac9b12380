package animation_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/benmeehan/fleet-mirror/internal/animation"
	"github.com/benmeehan/fleet-mirror/internal/models"
)

type fakeMarker struct {
	key    string
	pos    models.LatLng
	writes int
}

func (m *fakeMarker) Key() string                      { return m.key }
func (m *fakeMarker) DisplayedPosition() models.LatLng { return m.pos }
func (m *fakeMarker) SetDisplayedPosition(p models.LatLng) {
	m.pos = p
	m.writes++
}

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

// TestAnimator_EasedMidpoint reaches 75% of the way at half time and the target at the end.
func TestAnimator_EasedMidpoint(t *testing.T) {
	a := animation.NewAnimator(500*time.Millisecond, zerolog.Nop())
	m := &fakeMarker{key: "UBER-001", pos: models.LatLng{Lat: 25.0, Lng: 121.0}}
	target := models.LatLng{Lat: 25.1, Lng: 121.1}

	a.Animate(m, m.pos, target, t0)

	assert.True(t, a.Tick(t0.Add(250*time.Millisecond)))
	assert.InDelta(t, 25.075, m.pos.Lat, 1e-9)
	assert.InDelta(t, 121.075, m.pos.Lng, 1e-9)

	assert.False(t, a.Tick(t0.Add(500*time.Millisecond)))
	assert.Equal(t, target, m.pos)
	assert.Zero(t, a.Active())
}

// TestAnimator_LateFrameLandsOnTarget snaps to the target when a frame arrives after the duration.
func TestAnimator_LateFrameLandsOnTarget(t *testing.T) {
	a := animation.NewAnimator(500*time.Millisecond, zerolog.Nop())
	m := &fakeMarker{key: "UBER-001"}
	target := models.LatLng{Lat: 25.123456, Lng: 121.654321}

	a.Animate(m, models.LatLng{Lat: 24.9, Lng: 121.2}, target, t0)
	a.Tick(t0.Add(2 * time.Second))

	assert.Equal(t, target, m.pos)
}

// TestAnimator_SupersedeIsDeterministic lets only the newest transition move a marker.
func TestAnimator_SupersedeIsDeterministic(t *testing.T) {
	a := animation.NewAnimator(500*time.Millisecond, zerolog.Nop())
	m := &fakeMarker{key: "UBER-001", pos: models.LatLng{Lat: 25.0, Lng: 121.0}}

	a.Animate(m, m.pos, models.LatLng{Lat: 25.1, Lng: 121.1}, t0)
	a.Tick(t0.Add(250 * time.Millisecond))
	mid := m.pos

	// Start a second transition from the current displayed position.
	second := models.LatLng{Lat: 25.0, Lng: 121.2}
	a.Animate(m, m.pos, second, t0.Add(250*time.Millisecond))
	assert.Equal(t, 1, a.Active(), "only the newest transition counts")

	m.writes = 0
	a.Tick(t0.Add(500 * time.Millisecond))
	assert.Equal(t, 1, m.writes, "exactly one transition writes per frame")
	assert.Equal(t, 1, a.Active())

	want := animation.Interpolate(mid, second, animation.EaseOut(0.5))
	assert.InDelta(t, want.Lat, m.pos.Lat, 1e-12)
	assert.InDelta(t, want.Lng, m.pos.Lng, 1e-12)

	a.Tick(t0.Add(750 * time.Millisecond))
	assert.Equal(t, second, m.pos)
	assert.Zero(t, a.Active())
}

// TestAnimator_IndependentMarkers animates different markers side by side.
func TestAnimator_IndependentMarkers(t *testing.T) {
	a := animation.NewAnimator(500*time.Millisecond, zerolog.Nop())
	m1 := &fakeMarker{key: "UBER-001"}
	m2 := &fakeMarker{key: "UBER-002"}

	a.Animate(m1, models.LatLng{}, models.LatLng{Lat: 1, Lng: 1}, t0)
	a.Animate(m2, models.LatLng{}, models.LatLng{Lat: 2, Lng: 2}, t0.Add(100*time.Millisecond))

	a.Tick(t0.Add(500 * time.Millisecond))
	assert.Equal(t, models.LatLng{Lat: 1, Lng: 1}, m1.pos)
	assert.Less(t, m2.pos.Lat, 2.0)
	assert.Equal(t, 1, a.Active())

	a.Reset()
	assert.False(t, a.Tick(t0.Add(time.Second)))
}

func TestProgressAndEase(t *testing.T) {
	assert.Equal(t, 0.0, animation.Progress(-time.Millisecond, time.Second))
	assert.Equal(t, 0.5, animation.Progress(500*time.Millisecond, time.Second))
	assert.Equal(t, 1.0, animation.Progress(3*time.Second, time.Second))
	assert.Equal(t, 1.0, animation.Progress(0, 0))

	assert.Equal(t, 0.0, animation.EaseOut(0))
	assert.Equal(t, 0.75, animation.EaseOut(0.5))
	assert.Equal(t, 1.0, animation.EaseOut(1))
}
