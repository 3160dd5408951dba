package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solstice-ai/optimal-energy-storage/internal/model"
)

var t0 = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

func ctrlBattery(t *testing.T) *model.Battery {
	t.Helper()
	b, err := model.NewBattery(model.BatteryParams{
		Capacity:              10000,
		MaxChargeRate:         1000,
		MaxDischargeRate:      1000,
		MinSOC:                20,
		MaxSOC:                80,
		EfficiencyCharging:    100,
		EfficiencyDischarging: 100,
	}, 50)
	require.NoError(t, err)
	return b
}

func ctrlScenario(rows []model.Interval) *model.Scenario {
	s := &model.Scenario{}
	for i, r := range rows {
		r.Timestamp = t0.Add(time.Duration(i) * time.Hour)
		s.Rows = append(s.Rows, r)
	}
	return s
}

func TestRun_FirstPointIsIdle(t *testing.T) {
	s := ctrlScenario(make([]model.Interval, 4))
	battery := ctrlBattery(t)

	traj, err := Run(s, battery, NewCharge(), RunOptions{ConstrainChargeRate: true})
	require.NoError(t, err)
	require.Len(t, traj, 4)

	assert.InDelta(t, 0, traj[0].ChargeRate, 1e-9)
	assert.InDelta(t, 50, traj[0].SOC, 1e-9)
}

func TestRun_ConstrainedStaysWithinBounds(t *testing.T) {
	s := ctrlScenario(make([]model.Interval, 8))
	battery := ctrlBattery(t)

	traj, err := Run(s, battery, NewCharge(), RunOptions{ConstrainChargeRate: true})
	require.NoError(t, err)

	for _, p := range traj {
		assert.LessOrEqual(t, p.SOC, battery.Params.MaxSOC+1e-9)
		assert.LessOrEqual(t, p.ChargeRate, battery.Params.MaxChargeRate+1e-9)
	}
	// 50 -> 60 -> 70 -> 80, then pinned at the ceiling
	assert.InDelta(t, 80, traj.FinalSOC(), 1e-9)
}

func TestRun_UnconstrainedReportsRequestedRates(t *testing.T) {
	s := ctrlScenario(make([]model.Interval, 5))
	battery := ctrlBattery(t)

	traj, err := Run(s, battery, NewCharge(), RunOptions{})
	require.NoError(t, err)

	// Without constraints the replay reports what the controller asks for,
	// even past the SOC ceiling.
	for _, p := range traj[1:] {
		assert.InDelta(t, 1000, p.ChargeRate, 1e-9)
	}
}

func TestRun_DoesNotMutateCallerBattery(t *testing.T) {
	s := ctrlScenario(make([]model.Interval, 4))
	battery := ctrlBattery(t)

	_, err := Run(s, battery, NewCharge(), RunOptions{ConstrainChargeRate: true})
	require.NoError(t, err)
	assert.InDelta(t, 50, battery.SOC, 1e-9)
}

func TestSolarSelfConsumption(t *testing.T) {
	c := NewSolarSelfConsumption()
	c.Prepare(nil, nil)

	// Excess generation charges, excess demand discharges
	assert.InDelta(t, 1500, c.SolveOneInterval(model.Interval{Generation: 2000, Demand: 500}), 1e-9)
	assert.InDelta(t, -800, c.SolveOneInterval(model.Interval{Generation: 200, Demand: 1000}), 1e-9)
}

func TestImportTariffOptimisation(t *testing.T) {
	s := ctrlScenario([]model.Interval{
		{TariffImport: 0.10},
		{TariffImport: 0.10},
		{TariffImport: 0.50},
		{TariffImport: 0.50},
	})
	battery := ctrlBattery(t)

	c := NewImportTariffOptimisation()
	c.Prepare(s, battery)

	// Below the 0.30 average: charge at full rate
	assert.InDelta(t, 1000, c.SolveOneInterval(model.Interval{TariffImport: 0.10, Demand: 700}), 1e-9)
	// At or above the average: discharge to cover demand
	assert.InDelta(t, -700, c.SolveOneInterval(model.Interval{TariffImport: 0.50, Demand: 700}), 1e-9)
	assert.InDelta(t, -700, c.SolveOneInterval(model.Interval{TariffImport: 0.30, Demand: 700}), 1e-9)
}

func TestSpotPriceArbitrageNaive(t *testing.T) {
	s := ctrlScenario([]model.Interval{
		{TariffImport: 0.10, TariffExport: 0.10},
		{TariffImport: 0.50, TariffExport: 0.50},
	})
	battery := ctrlBattery(t)

	c := NewSpotPriceArbitrageNaive()
	c.Prepare(s, battery)

	// Midpoint between min import (0.10) and max export (0.50) is 0.30
	assert.InDelta(t, 1000, c.SolveOneInterval(model.Interval{TariffImport: 0.10, TariffExport: 0.10}), 1e-9)
	assert.InDelta(t, -1000, c.SolveOneInterval(model.Interval{TariffImport: 0.50, TariffExport: 0.50}), 1e-9)
	assert.InDelta(t, 0, c.SolveOneInterval(model.Interval{TariffImport: 0.30, TariffExport: 0.30}), 1e-9)
}

func TestRegistry_ByName(t *testing.T) {
	all, err := ByName(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(Registry()))

	picked, err := ByName([]string{"Charge", "DoNothing"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "Charge", picked[0].Name())
	assert.Equal(t, "DoNothing", picked[1].Name())

	_, err = ByName([]string{"NoSuchController"})
	assert.Error(t, err)
}
