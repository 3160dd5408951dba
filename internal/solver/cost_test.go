package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTransitionCost(t *testing.T) {
	// Importing 10 kWh at $0.30/kWh
	assert.InDelta(t, 3.0, StateTransitionCost(10, 0.30, 0.10), 1e-9)
	// Exporting 10 kWh at $0.10/kWh is revenue
	assert.InDelta(t, -1.0, StateTransitionCost(-10, 0.30, 0.10), 1e-9)
	// No exchange, no cost, regardless of tariffs
	assert.InDelta(t, 0, StateTransitionCost(0, 0.30, 0.10), 1e-9)
}

func TestStateTransitionCost_NegativeTariffs(t *testing.T) {
	// A negative export tariff makes exporting cost money
	assert.InDelta(t, 0.5, StateTransitionCost(-10, 0.30, -0.05), 1e-9)
	// A negative import tariff pays for imports
	assert.InDelta(t, -0.5, StateTransitionCost(10, -0.05, 0.10), 1e-9)
}

func TestIntervalCost(t *testing.T) {
	// 2000 W over 30 minutes = 1 kWh
	assert.InDelta(t, 0.30, IntervalCost(2000, 0.5, 0.30, 0.10), 1e-9)
	assert.InDelta(t, -0.10, IntervalCost(-2000, 0.5, 0.30, 0.10), 1e-9)
}
