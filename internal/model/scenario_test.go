package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

func makeScenario(n int, resolution time.Duration) *Scenario {
	s := &Scenario{}
	for i := 0; i < n; i++ {
		s.Rows = append(s.Rows, Interval{
			Timestamp:    t0.Add(time.Duration(i) * resolution),
			TariffImport: 0.30,
			TariffExport: 0.10,
		})
	}
	return s
}

func TestScenario_Validate(t *testing.T) {
	assert.NoError(t, makeScenario(3, 30*time.Minute).Validate())

	short := makeScenario(1, time.Hour)
	assert.Error(t, short.Validate())

	unordered := makeScenario(3, time.Hour)
	unordered.Rows[2].Timestamp = unordered.Rows[0].Timestamp
	assert.Error(t, unordered.Validate())

	duplicated := makeScenario(3, time.Hour)
	duplicated.Rows[1].Timestamp = duplicated.Rows[0].Timestamp
	assert.Error(t, duplicated.Validate())
}

func TestScenario_ValidateLimitSeries(t *testing.T) {
	s := makeScenario(3, time.Hour)
	s.LimitImport = []float64{5000, 5000, 5000}
	s.LimitExport = []float64{5000, 5000, 5000}
	assert.NoError(t, s.Validate())

	s.LimitImport = []float64{5000}
	assert.Error(t, s.Validate())
}

func TestScenario_Resolution(t *testing.T) {
	s := makeScenario(4, 5*time.Minute)
	assert.Equal(t, 5*time.Minute, s.Resolution())
	assert.InDelta(t, 1.0/12.0, s.ResolutionHours(), 1e-9)
}

func TestScenario_TariffHelpers(t *testing.T) {
	s := makeScenario(4, time.Hour)
	s.Rows[0].TariffImport = 0.10
	s.Rows[1].TariffImport = 0.20
	s.Rows[2].TariffImport = 0.30
	s.Rows[3].TariffImport = 0.40
	s.Rows[2].TariffExport = 0.55

	assert.InDelta(t, 0.25, s.TariffImportAverage(), 1e-9)
	assert.InDelta(t, 0.10, s.TariffImportMin(), 1e-9)
	assert.InDelta(t, 0.55, s.TariffExportMax(), 1e-9)
}

func TestTrajectory_Helpers(t *testing.T) {
	traj := Trajectory{
		{Timestamp: t0, ChargeRate: 0, SOC: 50},
		{Timestamp: t0.Add(time.Hour), ChargeRate: 500, SOC: 50},
		{Timestamp: t0.Add(2 * time.Hour), ChargeRate: -500, SOC: 55},
	}
	assert.Equal(t, []float64{0, 500, -500}, traj.ChargeRates())
	assert.InDelta(t, 55, traj.FinalSOC(), 1e-9)

	var empty Trajectory
	require.Zero(t, empty.FinalSOC())
}

func TestActionFromChargeRate(t *testing.T) {
	assert.Equal(t, ActionCharging, ActionFromChargeRate(100))
	assert.Equal(t, ActionDischarging, ActionFromChargeRate(-100))
	assert.Equal(t, ActionIdle, ActionFromChargeRate(0))
}
