package model

import "time"

// TrajectoryPoint is one interval of a battery control trajectory.
// ChargeRate is signed: positive = charging, negative = discharging.
type TrajectoryPoint struct {
	Timestamp        time.Time
	ChargeRate       float64 // W
	SOC              float64 // percent, entering this interval
	SolarCurtailment float64 // W, generation deliberately not used
}

// Trajectory is a per-interval control series aligned to a scenario's
// timestamps.
type Trajectory []TrajectoryPoint

// ChargeRates returns just the charge rate column.
func (t Trajectory) ChargeRates() []float64 {
	out := make([]float64, len(t))
	for i, p := range t {
		out[i] = p.ChargeRate
	}
	return out
}

// FinalSOC is the SOC entering the last interval, or 0 for an empty
// trajectory.
func (t Trajectory) FinalSOC() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].SOC
}

// Action is a human-friendly operating mode for a timestep.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
)

func ActionFromChargeRate(rateW float64) Action {
	switch {
	case rateW > 0:
		return ActionCharging
	case rateW < 0:
		return ActionDischarging
	default:
		return ActionIdle
	}
}
