package model

import (
	"errors"
	"math"
)

// BatteryParams defines the physical and economic parameters of the battery.
// Units:
// - Capacity: Wh
// - MaxChargeRate / MaxDischargeRate: W
// - SOC bounds: percent 0..100
// - Degradation costs: $/kWh of throughput in the given direction
// - Efficiencies: percent (0, 100]
type BatteryParams struct {
	Capacity                       float64
	MaxChargeRate                  float64
	MaxDischargeRate               float64
	MinSOC                         float64
	MaxSOC                         float64
	DegradationCostPerKWhCharge    float64
	DegradationCostPerKWhDischarge float64
	EfficiencyCharging             float64
	EfficiencyDischarging          float64
}

// DefaultBatteryParams returns a representative residential battery.
func DefaultBatteryParams() BatteryParams {
	return BatteryParams{
		Capacity:              13500.0,
		MaxChargeRate:         7000.0,
		MaxDischargeRate:      7000.0,
		MinSOC:                20.0,
		MaxSOC:                94.0,
		EfficiencyCharging:    100.0,
		EfficiencyDischarging: 100.0,
	}
}

// Battery bundles params + current state of charge.
//
// Battery is copied by value at every solve boundary: the solver, the
// controller driver and the evaluator each work on their own copy, so a
// caller's retained Battery is never mutated by a solve.
type Battery struct {
	Params BatteryParams

	// SOC is the state of charge as a percentage within [MinSOC, MaxSOC].
	SOC float64
}

func NewBattery(params BatteryParams, initialSOC float64) (*Battery, error) {
	b := &Battery{
		Params: params,
		SOC:    initialSOC,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Battery) Validate() error {
	p := b.Params
	if p.Capacity <= 0 {
		return errors.New("Capacity must be > 0")
	}
	if p.MaxChargeRate <= 0 {
		return errors.New("MaxChargeRate must be > 0")
	}
	if p.MaxDischargeRate <= 0 {
		return errors.New("MaxDischargeRate must be > 0")
	}
	if p.MaxSOC < 0 || p.MaxSOC > 100 {
		return errors.New("MaxSOC must be between 0 and 100")
	}
	if p.MinSOC < 0 || p.MinSOC > 100 {
		return errors.New("MinSOC must be between 0 and 100")
	}
	if p.MaxSOC < p.MinSOC {
		return errors.New("MaxSOC must be >= MinSOC")
	}
	if b.SOC < 0 || b.SOC > 100 {
		return errors.New("SOC must be between 0 and 100")
	}
	if b.SOC < p.MinSOC || b.SOC > p.MaxSOC {
		return errors.New("SOC must be within [MinSOC, MaxSOC]")
	}
	if p.DegradationCostPerKWhCharge < 0 {
		return errors.New("DegradationCostPerKWhCharge must be >= 0")
	}
	if p.DegradationCostPerKWhDischarge < 0 {
		return errors.New("DegradationCostPerKWhDischarge must be >= 0")
	}
	if p.EfficiencyCharging <= 0 || p.EfficiencyCharging > 100 {
		return errors.New("EfficiencyCharging must be in (0, 100]")
	}
	if p.EfficiencyDischarging <= 0 || p.EfficiencyDischarging > 100 {
		return errors.New("EfficiencyDischarging must be in (0, 100]")
	}
	return nil
}

// SOCChange converts a charge rate held for intervalHours into a change in
// state of charge, in percent. Positive rates charge, negative discharge.
func (b *Battery) SOCChange(powerW, intervalHours float64) float64 {
	return powerW * intervalHours / b.Params.Capacity * 100
}

// ChargeRate is the inverse of SOCChange: the constant power (W) that moves
// the state of charge by socChangePercent over intervalHours.
func (b *Battery) ChargeRate(socChangePercent, intervalHours float64) float64 {
	return socChangePercent / 100 * b.Params.Capacity / intervalHours
}

// SOCChangeWh converts a change in SOC percentage to energy in Wh.
func (b *Battery) SOCChangeWh(socChangePercent float64) float64 {
	return socChangePercent / 100.0 * b.Params.Capacity
}

// ImpactWithEfficiency converts a battery-side charge rate into the grid-side
// power it implies. Charging draws more from the grid than lands in the
// battery; discharging delivers less to the grid than leaves the battery.
func (b *Battery) ImpactWithEfficiency(chargeRateW float64) float64 {
	if chargeRateW > 0 {
		return chargeRateW / (b.Params.EfficiencyCharging / 100)
	}
	return chargeRateW * (b.Params.EfficiencyDischarging / 100)
}

// DegradationCost prices a change in stored energy (Wh) at the configured
// $/kWh rate for its direction. Zero change costs zero.
func (b *Battery) DegradationCost(changeSOCWh float64) float64 {
	if changeSOCWh > 0 {
		return math.Abs(changeSOCWh * b.Params.DegradationCostPerKWhCharge / 1000)
	}
	return math.Abs(changeSOCWh * b.Params.DegradationCostPerKWhDischarge / 1000)
}

// FeasibleChargeRate clamps a requested (dis-)charge rate so that holding it
// for one interval cannot push the SOC outside [MinSOC, MaxSOC], nor exceed
// the rate limits. Charging and discharging are clamped independently; a
// request of exactly 0 passes through unchanged.
func (b *Battery) FeasibleChargeRate(requestedW, currentSOC, intervalHours float64) float64 {
	if requestedW >= 0 {
		rateToFull := b.ChargeRate(b.Params.MaxSOC-currentSOC, intervalHours)
		maxRate := math.Min(b.Params.MaxChargeRate, rateToFull)
		return math.Min(requestedW, maxRate)
	}
	rateToEmpty := b.ChargeRate(currentSOC-b.Params.MinSOC, intervalHours)
	maxRate := math.Min(b.Params.MaxDischargeRate, rateToEmpty)
	return -math.Min(-requestedW, maxRate)
}
