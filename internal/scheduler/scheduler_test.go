package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solstice-ai/optimal-energy-storage/internal/controller"
	"github.com/solstice-ai/optimal-energy-storage/internal/model"
)

var t0 = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

// fixedRate is a test controller that always requests the same charge rate.
type fixedRate struct {
	name string
	rate float64
}

func (c *fixedRate) Name() string                            { return c.name }
func (c *fixedRate) Prepare(*model.Scenario, *model.Battery) {}
func (c *fixedRate) SolveOneInterval(model.Interval) float64 { return c.rate }

func schedScenario(n int) *model.Scenario {
	s := &model.Scenario{}
	for i := 0; i < n; i++ {
		s.Rows = append(s.Rows, model.Interval{
			Timestamp:    t0.Add(time.Duration(i) * time.Hour),
			TariffImport: 0.30,
			TariffExport: 0.10,
		})
	}
	return s
}

func schedBattery(t *testing.T) *model.Battery {
	t.Helper()
	b, err := model.NewBattery(model.BatteryParams{
		Capacity:              10000,
		MaxChargeRate:         1000,
		MaxDischargeRate:      1000,
		MinSOC:                0,
		MaxSOC:                100,
		EfficiencyCharging:    100,
		EfficiencyDischarging: 100,
	}, 50)
	require.NoError(t, err)
	return b
}

// optimalWithRates builds an optimal trajectory aligned to the scenario with
// the given charge rates.
func optimalWithRates(s *model.Scenario, rates []float64) model.Trajectory {
	traj := make(model.Trajectory, len(rates))
	for i, r := range rates {
		traj[i] = model.TrajectoryPoint{Timestamp: s.Rows[i].Timestamp, ChargeRate: r, SOC: 50}
	}
	return traj
}

func TestSolve_PicksNearOptimalController(t *testing.T) {
	s := schedScenario(5)
	battery := schedBattery(t)

	// Controller replays always request 0 for the first interval, so both
	// controllers match an optimal rate of 0 there. "a" matches through the
	// 500 W section and its longer run claims the shared first interval.
	a := &fixedRate{name: "a", rate: 500}
	b := &fixedRate{name: "b", rate: 0}
	optimal := optimalWithRates(s, []float64{0, 500, 500, 0, 0})

	result, err := New(Options{}).Solve(s, battery, []controller.Controller{a, b}, optimal)
	require.NoError(t, err)

	require.Equal(t, Schedule{
		{Timestamp: s.Rows[0].Timestamp, Controller: "a"},
		{Timestamp: s.Rows[3].Timestamp, Controller: "b"},
	}, result.Schedule)

	assert.Equal(t, []float64{0, 500, 500, 0, 0}, result.Trajectory.ChargeRates())
	require.NotNil(t, result.Performance)
	assert.Len(t, result.Performance.Rows, 5)
}

func TestSolve_UnresolvedFallsBackToClosestRate(t *testing.T) {
	s := schedScenario(3)
	battery := schedBattery(t)

	a := &fixedRate{name: "a", rate: 500}
	b := &fixedRate{name: "b", rate: 300}
	// Neither controller is within the threshold of 200 W at the middle
	// interval; "b" is numerically closer (100 W off vs 300 W off).
	optimal := optimalWithRates(s, []float64{0, 200, 300})

	result, err := New(Options{ThresholdNearOptimal: 50}).
		Solve(s, battery, []controller.Controller{a, b}, optimal)
	require.NoError(t, err)

	require.Equal(t, Schedule{
		{Timestamp: s.Rows[0].Timestamp, Controller: "a"},
		{Timestamp: s.Rows[1].Timestamp, Controller: "b"},
	}, result.Schedule)
}

func TestSolve_IsolatedGapFlankedBySameController(t *testing.T) {
	s := schedScenario(3)
	battery := schedBattery(t)

	a := &fixedRate{name: "a", rate: 500}
	// "a" matches at the edges but misses the middle; the isolated gap is
	// filled with the flanking controller rather than switching away.
	optimal := optimalWithRates(s, []float64{0, 200, 500})

	result, err := New(Options{ThresholdNearOptimal: 50}).
		Solve(s, battery, []controller.Controller{a}, optimal)
	require.NoError(t, err)

	require.Equal(t, Schedule{
		{Timestamp: s.Rows[0].Timestamp, Controller: "a"},
	}, result.Schedule)
}

func TestSolve_FillIndividualGaps(t *testing.T) {
	s := schedScenario(3)
	battery := schedBattery(t)

	a := &fixedRate{name: "a", rate: 500}
	b := &fixedRate{name: "b", rate: 190}
	optimal := optimalWithRates(s, []float64{0, 200, 500})

	// Without gap filling "b"'s unbroken two-interval run would win the
	// start; with it, "a"'s run is considered continuous and takes the
	// whole horizon.
	result, err := New(Options{ThresholdNearOptimal: 50, FillIndividualGaps: true}).
		Solve(s, battery, []controller.Controller{a, b}, optimal)
	require.NoError(t, err)

	require.Equal(t, Schedule{
		{Timestamp: s.Rows[0].Timestamp, Controller: "a"},
	}, result.Schedule)
}

func TestSolve_EqualRunsResolveToInputOrder(t *testing.T) {
	s := schedScenario(4)
	battery := schedBattery(t)

	// Both controllers match everywhere with identical run lengths, so the
	// first controller in input order takes the whole horizon.
	a := &fixedRate{name: "a", rate: 400}
	b := &fixedRate{name: "b", rate: 400}
	optimal := optimalWithRates(s, []float64{0, 400, 400, 400})

	result, err := New(Options{}).Solve(s, battery, []controller.Controller{b, a}, optimal)
	require.NoError(t, err)

	require.Equal(t, Schedule{
		{Timestamp: s.Rows[0].Timestamp, Controller: "b"},
	}, result.Schedule)
}

func TestSolve_InputValidation(t *testing.T) {
	s := schedScenario(3)
	battery := schedBattery(t)
	a := &fixedRate{name: "a", rate: 0}
	optimal := optimalWithRates(s, []float64{0, 0, 0})

	_, err := New(Options{}).Solve(s, battery, nil, optimal)
	assert.Error(t, err, "no controllers")

	_, err = New(Options{}).Solve(s, nil, []controller.Controller{a}, optimal)
	assert.Error(t, err, "nil battery")

	short := optimalWithRates(s, []float64{0, 0})
	_, err = New(Options{}).Solve(s, battery, []controller.Controller{a}, short)
	assert.Error(t, err, "length mismatch")

	shifted := optimalWithRates(s, []float64{0, 0, 0})
	shifted[1].Timestamp = shifted[1].Timestamp.Add(time.Minute)
	_, err = New(Options{}).Solve(s, battery, []controller.Controller{a}, shifted)
	assert.Error(t, err, "timestamp mismatch")
}
