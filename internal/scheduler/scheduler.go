// Package scheduler reconciles the dynamic program's optimal trajectory
// against a set of cheap rule-based controllers, producing a sparse,
// explainable schedule of controller switches that approximates optimal
// behaviour.
package scheduler

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/solstice-ai/optimal-energy-storage/internal/controller"
	"github.com/solstice-ai/optimal-energy-storage/internal/evaluate"
	"github.com/solstice-ai/optimal-energy-storage/internal/model"
)

// unresolved marks an interval for which no near-optimal controller was
// found yet. It is a controller index sentinel, deliberately distinct from
// any real controller (including DoNothing); cleaning resolves every
// occurrence before the schedule is emitted.
const unresolved = -1

// Entry is one switch in a sparse schedule: use this controller from this
// timestamp until the next entry's timestamp.
type Entry struct {
	Timestamp  time.Time
	Controller string
}

// Schedule is a sparse series of controller switches with strictly
// increasing timestamps.
type Schedule []Entry

// Options configures schedule synthesis.
type Options struct {
	// ThresholdNearOptimal is the maximum |controller - optimal| charge rate
	// difference (W) for a controller to count as near-optimal in an
	// interval. Zero means 10% of the battery's max charge rate.
	ThresholdNearOptimal float64

	// FillIndividualGaps marks a controller near-optimal in any single
	// interval whose both neighbours are near-optimal.
	FillIndividualGaps bool
}

// Result is the synthesized schedule plus the trajectory and performance it
// implies.
type Result struct {
	Schedule Schedule

	// Trajectory carries the charge rates realised by following the
	// schedule, aligned to the scenario's timestamps. SOC and curtailment
	// are inherited from the optimal trajectory for comparison; the
	// evaluation recomputes the feasible SOC series.
	Trajectory model.Trajectory

	// Performance is the schedule's trajectory replayed against the
	// scenario.
	Performance *evaluate.Result
}

type Scheduler struct {
	opts Options
}

func New(opts Options) *Scheduler {
	return &Scheduler{opts: opts}
}

// Solve matches the optimal trajectory against the controllers and emits a
// compressed schedule. The controllers run unconstrained so their requested
// rates are comparable to the optimal ones.
func (s *Scheduler) Solve(
	scenario *model.Scenario,
	battery *model.Battery,
	controllers []controller.Controller,
	optimal model.Trajectory,
) (*Result, error) {
	if len(controllers) == 0 {
		return nil, errors.New("at least one controller is required")
	}
	if battery == nil {
		return nil, errors.New("battery is nil")
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	if len(optimal) != len(scenario.Rows) {
		return nil, fmt.Errorf("optimal trajectory has %d points, scenario has %d intervals",
			len(optimal), len(scenario.Rows))
	}
	for i := range optimal {
		if !optimal[i].Timestamp.Equal(scenario.Rows[i].Timestamp) {
			return nil, fmt.Errorf("optimal trajectory timestamp mismatch at interval %d", i)
		}
	}

	threshold := s.opts.ThresholdNearOptimal
	if threshold == 0 {
		threshold = battery.Params.MaxChargeRate * 0.1
	}

	rates, err := allChargeRates(scenario, battery, controllers)
	if err != nil {
		return nil, err
	}

	flags := nearOptimal(rates, optimal, threshold)
	if s.opts.FillIndividualGaps {
		fillIndividualGaps(flags)
	}

	full := fullSchedule(flags)
	cleanSchedule(full, rates, optimal)

	result := &Result{
		Schedule:   compress(full, controllers, scenario),
		Trajectory: scheduleTrajectory(full, rates, optimal),
	}

	perf, err := evaluate.Performance(scenario, result.Trajectory, battery)
	if err != nil {
		return nil, err
	}
	result.Performance = perf
	return result, nil
}

// allChargeRates replays every controller over the full scenario,
// unconstrained. Each replay is independent of the others, so they run
// concurrently.
func allChargeRates(
	scenario *model.Scenario,
	battery *model.Battery,
	controllers []controller.Controller,
) ([][]float64, error) {
	rates := make([][]float64, len(controllers))
	errs := make([]error, len(controllers))

	var wg sync.WaitGroup
	for i, c := range controllers {
		wg.Add(1)
		go func(i int, c controller.Controller) {
			defer wg.Done()
			traj, err := controller.Run(scenario, battery, c, controller.RunOptions{})
			if err != nil {
				errs[i] = fmt.Errorf("controller %s: %w", c.Name(), err)
				return
			}
			rates[i] = traj.ChargeRates()
		}(i, c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return rates, nil
}

// nearOptimal flags, per controller and interval, whether the controller's
// rate is within threshold of the optimal rate.
func nearOptimal(rates [][]float64, optimal model.Trajectory, threshold float64) [][]bool {
	flags := make([][]bool, len(rates))
	for c := range rates {
		flags[c] = make([]bool, len(optimal))
		for t := range optimal {
			flags[c][t] = math.Abs(rates[c][t]-optimal[t].ChargeRate) < threshold
		}
	}
	return flags
}

// fillIndividualGaps flags any single unflagged interval whose both
// neighbours are flagged.
func fillIndividualGaps(flags [][]bool) {
	for c := range flags {
		for t := 1; t < len(flags[c])-1; t++ {
			if flags[c][t-1] && flags[c][t+1] {
				flags[c][t] = true
			}
		}
	}
}

// runLength counts consecutive flagged intervals for a controller starting
// at interval t.
func runLength(flags []bool, t int) int {
	n := 0
	for ; t < len(flags) && flags[t]; t++ {
		n++
	}
	return n
}

// fullSchedule selects one controller index per interval. Intervals where no
// controller is near-optimal stay unresolved; where several are, the one
// whose near-optimal run extends furthest wins, favouring switch stability
// over local optimality.
func fullSchedule(flags [][]bool) []int {
	n := 0
	if len(flags) > 0 {
		n = len(flags[0])
	}
	full := make([]int, n)

	for t := 0; t < n; t++ {
		best := unresolved
		bestRun := 0
		for c := range flags {
			if !flags[c][t] {
				continue
			}
			if run := runLength(flags[c], t); run > bestRun {
				best = c
				bestRun = run
			}
		}
		full[t] = best
	}
	return full
}

// cleanSchedule resolves the unresolved intervals: an isolated one flanked
// by the same controller takes that controller; anything left takes the
// controller whose rate is numerically closest to optimal at that instant
// (ties resolved by input order).
func cleanSchedule(full []int, rates [][]float64, optimal model.Trajectory) {
	for t := 1; t < len(full)-1; t++ {
		if full[t] == unresolved && full[t-1] != unresolved && full[t-1] == full[t+1] {
			full[t] = full[t+1]
		}
	}

	for t := range full {
		if full[t] != unresolved {
			continue
		}
		closest := 0
		closestDist := math.Abs(rates[0][t] - optimal[t].ChargeRate)
		for c := 1; c < len(rates); c++ {
			if d := math.Abs(rates[c][t] - optimal[t].ChargeRate); d < closestDist {
				closest = c
				closestDist = d
			}
		}
		full[t] = closest
	}
}

// compress reduces the dense per-interval assignment to switch points only.
func compress(full []int, controllers []controller.Controller, scenario *model.Scenario) Schedule {
	var schedule Schedule
	prev := unresolved
	for t, c := range full {
		if c != prev {
			schedule = append(schedule, Entry{
				Timestamp:  scenario.Rows[t].Timestamp,
				Controller: controllers[c].Name(),
			})
			prev = c
		}
	}
	return schedule
}

// scheduleTrajectory assembles the charge-rate series implied by the cleaned
// schedule, inheriting SOC and curtailment from the optimal trajectory for
// side-by-side comparison.
func scheduleTrajectory(full []int, rates [][]float64, optimal model.Trajectory) model.Trajectory {
	traj := make(model.Trajectory, len(optimal))
	copy(traj, optimal)
	for t := range traj {
		traj[t].ChargeRate = rates[full[t]][t]
	}
	return traj
}
