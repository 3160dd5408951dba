// Package controller implements the rule-based battery controllers: simple,
// explainable policies that decide a charge rate one interval at a time,
// without looking ahead. They are useful as baselines, and as the candidate
// behaviours the schedule synthesizer matches against the optimal trajectory.
package controller

import (
	"github.com/solstice-ai/optimal-energy-storage/internal/model"
)

// Controller decides a desired charge rate (W) for a single scenario
// interval. Decisions may depend only on that interval's row and on scalars
// precomputed from the whole scenario during Prepare.
type Controller interface {
	Name() string

	// Prepare is called once per solve, before any interval is decided.
	// Controllers that need scenario-wide scalars (tariff averages,
	// arbitrage thresholds) or battery limits compute them here.
	Prepare(scenario *model.Scenario, battery *model.Battery)

	// SolveOneInterval returns the desired (unclamped) charge rate for one
	// scenario row. Positive = charge, negative = discharge.
	SolveOneInterval(row model.Interval) float64
}
