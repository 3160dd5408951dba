// Package evaluate replays control trajectories against a scenario to
// compute the grid impact and cost they would actually realise.
package evaluate

import (
	"errors"
	"fmt"
	"time"

	"github.com/solstice-ai/optimal-energy-storage/internal/model"
	"github.com/solstice-ai/optimal-energy-storage/internal/solver"
)

// Row is one interval of an evaluation: the requested (predicted) control
// next to what was actually feasible, plus the priced grid impact.
type Row struct {
	Timestamp time.Time

	ChargeRatePredicted float64
	ChargeRateActual    float64
	SOCPredicted        float64
	SOCActual           float64
	SolarCurtailment    float64

	GridImpact      float64 // W, positive = importing
	IntervalCost    float64 // $
	AccumulatedCost float64 // $
}

type Result struct {
	Rows      []Row
	TotalCost float64
}

// Performance replays a trajectory against a scenario. Each interval's
// requested charge rate is re-clamped against the battery's SOC bounds, so
// the evaluation never realises an infeasible SOC even if the trajectory was
// computed under different assumptions. Efficiency losses and any recorded
// solar curtailment are applied before the net grid impact is priced.
func Performance(scenario *model.Scenario, trajectory model.Trajectory, battery *model.Battery) (*Result, error) {
	if battery == nil {
		return nil, errors.New("battery is nil")
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	if len(trajectory) != len(scenario.Rows) {
		return nil, fmt.Errorf("trajectory has %d points, scenario has %d intervals",
			len(trajectory), len(scenario.Rows))
	}

	bat := *battery
	hours := scenario.ResolutionHours()

	rows := make([]Row, 0, len(scenario.Rows))
	soc := bat.SOC
	accumulated := 0.0

	for i, sr := range scenario.Rows {
		requested := trajectory[i].ChargeRate

		// Clamp to what the SOC bounds allow; infeasible requests are cut
		// back to the boundary.
		actual := requested
		socChange := bat.SOCChange(requested, hours)
		if soc+socChange > bat.Params.MaxSOC || soc+socChange < bat.Params.MinSOC {
			if socChange < 0 {
				socChange = bat.Params.MinSOC - soc
			} else {
				socChange = bat.Params.MaxSOC - soc
			}
			actual = bat.ChargeRate(socChange, hours)
		}
		soc += socChange

		impact := bat.ImpactWithEfficiency(actual)
		gridImpact := sr.Demand - sr.Generation + impact + trajectory[i].SolarCurtailment
		cost := solver.IntervalCost(gridImpact, hours, sr.TariffImport, sr.TariffExport)
		accumulated += cost

		rows = append(rows, Row{
			Timestamp:           sr.Timestamp,
			ChargeRatePredicted: requested,
			ChargeRateActual:    actual,
			SOCPredicted:        trajectory[i].SOC,
			SOCActual:           soc - socChange,
			SolarCurtailment:    trajectory[i].SolarCurtailment,
			GridImpact:          gridImpact,
			IntervalCost:        cost,
			AccumulatedCost:     accumulated,
		})
	}

	return &Result{Rows: rows, TotalCost: accumulated}, nil
}
