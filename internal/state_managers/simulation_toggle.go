package state_managers

import "sync/atomic"

// Gate reports whether inbound snapshots should be applied.
type Gate interface {
	Enabled() bool
}

// SimulationToggle is the local on/off switch for applying fleet snapshots.
// It starts enabled.
type SimulationToggle struct {
	enabled atomic.Bool
}

// NewSimulationToggle returns an enabled toggle.
func NewSimulationToggle() *SimulationToggle {
	t := &SimulationToggle{}
	t.enabled.Store(true)
	return t
}

func (t *SimulationToggle) Enabled() bool {
	return t.enabled.Load()
}

// Set switches the toggle and reports whether the value changed.
func (t *SimulationToggle) Set(enabled bool) bool {
	return t.enabled.Swap(enabled) != enabled
}

// Toggle flips the toggle and returns the new value.
func (t *SimulationToggle) Toggle() bool {
	for {
		cur := t.enabled.Load()
		if t.enabled.CompareAndSwap(cur, !cur) {
			return !cur
		}
	}
}
