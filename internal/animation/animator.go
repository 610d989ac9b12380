package animation

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/fleet-mirror/internal/models"
)

// Marker is anything whose displayed position can be animated.
type Marker interface {
	Key() string
	DisplayedPosition() models.LatLng
	SetDisplayedPosition(models.LatLng)
}

type transition struct {
	marker     Marker
	from, to   models.LatLng
	start      time.Time
	generation uint64
}

// Animator runs eased position transitions. Each marker has a generation
// counter; only the transition carrying the current generation may move it.
type Animator struct {
	duration    time.Duration
	generations map[string]uint64
	active      []*transition
	logger      zerolog.Logger
}

// NewAnimator creates an animator whose transitions last duration.
func NewAnimator(duration time.Duration, logger zerolog.Logger) *Animator {
	return &Animator{
		duration:    duration,
		generations: make(map[string]uint64),
		logger:      logger,
	}
}

// Animate starts moving m from from to to, superseding any transition
// already running on m.
func (a *Animator) Animate(m Marker, from, to models.LatLng, now time.Time) {
	key := m.Key()
	a.generations[key]++
	a.active = append(a.active, &transition{
		marker:     m,
		from:       from,
		to:         to,
		start:      now,
		generation: a.generations[key],
	})
}

// Tick advances every live transition to now and reports whether any remain.
func (a *Animator) Tick(now time.Time) bool {
	live := a.active[:0]
	for _, t := range a.active {
		if a.generations[t.marker.Key()] != t.generation {
			a.logger.Trace().Str("marker", t.marker.Key()).Uint64("generation", t.generation).Msg("Dropping superseded transition")
			continue
		}

		p := Progress(now.Sub(t.start), a.duration)
		if p >= 1 {
			t.marker.SetDisplayedPosition(t.to)
			continue
		}
		t.marker.SetDisplayedPosition(Interpolate(t.from, t.to, EaseOut(p)))
		live = append(live, t)
	}

	for i := len(live); i < len(a.active); i++ {
		a.active[i] = nil
	}
	a.active = live
	return len(a.active) > 0
}

// Active returns the number of markers with a running transition. Superseded
// transitions awaiting their next tick are not counted.
func (a *Animator) Active() int {
	n := 0
	for _, t := range a.active {
		if a.generations[t.marker.Key()] == t.generation {
			n++
		}
	}
	return n
}

// Reset drops all transitions and generation counters.
func (a *Animator) Reset() {
	a.active = nil
	a.generations = make(map[string]uint64)
}

// Progress returns elapsed/duration clamped to [0, 1].
func Progress(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// EaseOut is the quadratic ease-out curve p*(2-p).
func EaseOut(p float64) float64 {
	return p * (2 - p)
}

// Interpolate blends from towards to by e on both axes.
func Interpolate(from, to models.LatLng, e float64) models.LatLng {
	return models.LatLng{
		Lat: from.Lat + (to.Lat-from.Lat)*e,
		Lng: from.Lng + (to.Lng-from.Lng)*e,
	}
}
