package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() BatteryParams {
	return BatteryParams{
		Capacity:              10000,
		MaxChargeRate:         1000,
		MaxDischargeRate:      1000,
		MinSOC:                20,
		MaxSOC:                80,
		EfficiencyCharging:    100,
		EfficiencyDischarging: 100,
	}
}

func TestNewBattery_Valid(t *testing.T) {
	b, err := NewBattery(testParams(), 50)
	require.NoError(t, err)
	assert.Equal(t, 50.0, b.SOC)
}

func TestNewBattery_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*BatteryParams, *float64)
	}{
		{"zero capacity", func(p *BatteryParams, _ *float64) { p.Capacity = 0 }},
		{"zero charge rate", func(p *BatteryParams, _ *float64) { p.MaxChargeRate = 0 }},
		{"zero discharge rate", func(p *BatteryParams, _ *float64) { p.MaxDischargeRate = 0 }},
		{"max soc above 100", func(p *BatteryParams, _ *float64) { p.MaxSOC = 101 }},
		{"negative min soc", func(p *BatteryParams, _ *float64) { p.MinSOC = -1 }},
		{"max below min", func(p *BatteryParams, _ *float64) { p.MinSOC = 70; p.MaxSOC = 30 }},
		{"soc below min", func(_ *BatteryParams, soc *float64) { *soc = 10 }},
		{"soc above max", func(_ *BatteryParams, soc *float64) { *soc = 90 }},
		{"negative degradation", func(p *BatteryParams, _ *float64) { p.DegradationCostPerKWhCharge = -1 }},
		{"zero charging efficiency", func(p *BatteryParams, _ *float64) { p.EfficiencyCharging = 0 }},
		{"discharging efficiency above 100", func(p *BatteryParams, _ *float64) { p.EfficiencyDischarging = 101 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := testParams()
			soc := 50.0
			tc.mutate(&params, &soc)
			_, err := NewBattery(params, soc)
			assert.Error(t, err)
		})
	}
}

func TestBattery_SOCChange(t *testing.T) {
	b, err := NewBattery(testParams(), 50)
	require.NoError(t, err)

	// 1000 W for 1 h into 10 kWh = 10% of capacity
	assert.InDelta(t, 10, b.SOCChange(1000, 1), 1e-9)
	// Half hour halves it
	assert.InDelta(t, 5, b.SOCChange(1000, 0.5), 1e-9)
	// Discharging is negative
	assert.InDelta(t, -10, b.SOCChange(-1000, 1), 1e-9)
}

func TestBattery_ChargeRateInvertsSOCChange(t *testing.T) {
	b, err := NewBattery(testParams(), 50)
	require.NoError(t, err)

	for _, rate := range []float64{-1000, -250, 0, 333, 1000} {
		change := b.SOCChange(rate, 0.5)
		assert.InDelta(t, rate, b.ChargeRate(change, 0.5), 1e-9)
	}
}

func TestBattery_SOCChangeWh(t *testing.T) {
	b, err := NewBattery(testParams(), 50)
	require.NoError(t, err)

	assert.InDelta(t, 1000, b.SOCChangeWh(10), 1e-9)
	assert.InDelta(t, -500, b.SOCChangeWh(-5), 1e-9)
}

func TestBattery_ImpactWithEfficiency(t *testing.T) {
	params := testParams()
	params.EfficiencyCharging = 90
	params.EfficiencyDischarging = 90
	b, err := NewBattery(params, 50)
	require.NoError(t, err)

	// Charging 900 W battery-side draws 1000 W from the grid
	assert.InDelta(t, 1000, b.ImpactWithEfficiency(900), 1e-9)
	// Discharging 1000 W battery-side delivers 900 W to the grid
	assert.InDelta(t, -900, b.ImpactWithEfficiency(-1000), 1e-9)
	assert.InDelta(t, 0, b.ImpactWithEfficiency(0), 1e-9)
}

func TestBattery_DegradationCost(t *testing.T) {
	params := testParams()
	params.DegradationCostPerKWhCharge = 2.0
	params.DegradationCostPerKWhDischarge = 3.0
	b, err := NewBattery(params, 50)
	require.NoError(t, err)

	// 50 Wh charged at $2/kWh
	assert.InDelta(t, 0.1, b.DegradationCost(50), 1e-9)
	// 50 Wh discharged at $3/kWh
	assert.InDelta(t, 0.15, b.DegradationCost(-50), 1e-9)
	assert.InDelta(t, 0, b.DegradationCost(0), 1e-9)
}

func TestBattery_FeasibleChargeRate(t *testing.T) {
	b, err := NewBattery(testParams(), 50)
	require.NoError(t, err)

	// Headroom over 5 h: (80-50)% of 10 kWh = 3 kWh, so 600 W max
	assert.InDelta(t, 600, b.FeasibleChargeRate(8000, 50, 5), 1e-9)
	// Same on the discharge side: (50-20)% of 10 kWh over 5 h
	assert.InDelta(t, -600, b.FeasibleChargeRate(-8000, 50, 5), 1e-9)

	// Rate limit binds before the SOC bound over short intervals
	assert.InDelta(t, 1000, b.FeasibleChargeRate(8000, 50, 1), 1e-9)

	// Requests already feasible pass through unchanged
	assert.InDelta(t, 200, b.FeasibleChargeRate(200, 50, 1), 1e-9)
	assert.InDelta(t, 0, b.FeasibleChargeRate(0, 50, 1), 1e-9)

	// At the boundary there is nothing left in that direction
	assert.InDelta(t, 0, b.FeasibleChargeRate(500, 80, 1), 1e-9)
	assert.InDelta(t, 0, b.FeasibleChargeRate(-500, 20, 1), 1e-9)
}

func TestBattery_FeasibleChargeRateIdempotent(t *testing.T) {
	b, err := NewBattery(testParams(), 50)
	require.NoError(t, err)

	once := b.FeasibleChargeRate(8000, 65, 2)
	twice := b.FeasibleChargeRate(once, 65, 2)
	assert.InDelta(t, once, twice, 1e-9)
}
