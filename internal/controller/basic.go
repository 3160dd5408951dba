package controller

import (
	"math"

	"github.com/solstice-ai/optimal-energy-storage/internal/model"
)

// DoNothing holds the battery idle in every interval. Useful as a baseline
// for comparison, and as a building block for schedules.
type DoNothing struct{}

func NewDoNothing() *DoNothing { return &DoNothing{} }

func (c *DoNothing) Name() string { return "DoNothing" }

func (c *DoNothing) Prepare(*model.Scenario, *model.Battery) {}

func (c *DoNothing) SolveOneInterval(model.Interval) float64 { return 0 }

// Charge charges at a constant rate in every interval. The default rate is
// "as fast as the battery allows"; Prepare caps it at MaxChargeRate.
type Charge struct {
	ChargeRate float64
}

func NewCharge() *Charge {
	return &Charge{ChargeRate: math.MaxFloat64}
}

func (c *Charge) Name() string { return "Charge" }

func (c *Charge) Prepare(_ *model.Scenario, battery *model.Battery) {
	c.ChargeRate = math.Min(c.ChargeRate, battery.Params.MaxChargeRate)
}

func (c *Charge) SolveOneInterval(model.Interval) float64 { return c.ChargeRate }

// Discharge discharges at a constant rate in every interval.
type Discharge struct {
	DischargeRate float64
}

func NewDischarge() *Discharge {
	return &Discharge{DischargeRate: math.MaxFloat64}
}

func (c *Discharge) Name() string { return "Discharge" }

func (c *Discharge) Prepare(_ *model.Scenario, battery *model.Battery) {
	c.DischargeRate = math.Min(c.DischargeRate, battery.Params.MaxDischargeRate)
}

func (c *Discharge) SolveOneInterval(model.Interval) float64 { return -c.DischargeRate }
