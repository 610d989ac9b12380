package state_managers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benmeehan/fleet-mirror/internal/state_managers"
)

func TestSimulationToggle(t *testing.T) {
	toggle := state_managers.NewSimulationToggle()
	assert.True(t, toggle.Enabled(), "updates flow by default")

	assert.True(t, toggle.Set(false))
	assert.False(t, toggle.Set(false))
	assert.False(t, toggle.Enabled())

	assert.True(t, toggle.Toggle())
	assert.True(t, toggle.Enabled())
}
