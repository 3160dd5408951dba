package controller

import (
	"fmt"

	"github.com/solstice-ai/optimal-energy-storage/internal/model"
)

// RunOptions configures a full-horizon controller replay.
type RunOptions struct {
	// ConstrainChargeRate applies Battery.FeasibleChargeRate to every
	// decision, so the resulting trajectory never leaves the SOC bounds.
	// The schedule synthesizer runs controllers unconstrained to see the
	// rates they would ask for.
	ConstrainChargeRate bool
}

// Run walks the scenario interval by interval, asking the controller for a
// charge rate at each step and accumulating the resulting SOC. The battery
// is copied; the caller's instance is not mutated.
//
// The first point always carries a zero charge rate: no action is possible
// before the first observed state. Each point records the SOC entering its
// interval; the change from a decision lands in the following point.
func Run(scenario *model.Scenario, battery *model.Battery, c Controller, opts RunOptions) (model.Trajectory, error) {
	if c == nil {
		return nil, fmt.Errorf("controller is nil")
	}
	if battery == nil {
		return nil, fmt.Errorf("battery is nil")
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	bat := *battery
	hours := scenario.ResolutionHours()

	c.Prepare(scenario, &bat)

	traj := make(model.Trajectory, 0, len(scenario.Rows))
	traj = append(traj, model.TrajectoryPoint{
		Timestamp:  scenario.Rows[0].Timestamp,
		ChargeRate: 0,
		SOC:        bat.SOC,
	})

	for _, row := range scenario.Rows[1:] {
		rate := c.SolveOneInterval(row)
		if opts.ConstrainChargeRate {
			rate = bat.FeasibleChargeRate(rate, bat.SOC, hours)
		}
		traj = append(traj, model.TrajectoryPoint{
			Timestamp:  row.Timestamp,
			ChargeRate: rate,
			SOC:        bat.SOC,
		})
		bat.SOC += bat.SOCChange(rate, hours)
	}

	return traj, nil
}
