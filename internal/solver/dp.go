package solver

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/solstice-ai/optimal-energy-storage/internal/model"
)

// LimitMode selects how import/export power limits are applied per interval.
type LimitMode string

const (
	LimitModeNone    LimitMode = "no_limit"
	LimitModeStatic  LimitMode = "static_limit"
	LimitModeDynamic LimitMode = "dynamic_limit"
)

func (m LimitMode) valid() bool {
	switch m {
	case LimitModeNone, LimitModeStatic, LimitModeDynamic:
		return true
	}
	return false
}

// Tie-break thresholds for the backward induction update rule. These are
// load-bearing: a candidate must beat the incumbent by more than
// epsImprovement to replace it, and costs within epsTie of each other are
// treated as equal, in which case the higher-SOC successor wins.
const (
	epsImprovement = 1e-4
	epsTie         = 1e-3
)

const (
	// activityPenalty is added to any transition that changes SOC when
	// MinimizeActivity is set, discouraging churn between equal-cost paths.
	activityPenalty = 0.001

	// earlyChargeDivisor scales the (states-row)/states penalty applied when
	// PrioritizeEarlyCharge is set.
	earlyChargeDivisor = 500

	// finalSOCBias is the terminal cost assigned to the requested final SOC
	// state. Large enough to dominate any realistic path cost, small enough
	// that en-route costs keep full float64 precision relative to the
	// epsilons above.
	finalSOCBias = -1e9

	noLimit = math.MaxFloat64
)

// Options configures a dynamic program solve.
type Options struct {
	// SOCInterval is the SOC discretisation step in percent. It must divide
	// 100 without residue.
	SOCInterval float64

	// ConstrainFinalSOC biases the terminal column so the optimal path ends
	// at FinalSOC.
	ConstrainFinalSOC bool
	FinalSOC          float64

	// MinimizeActivity adds a small cost to every interval in which the SOC
	// changes.
	MinimizeActivity bool

	// PrioritizeEarlyCharge adds a small cost that grows with lower SOC,
	// breaking ties toward charging earlier rather than later.
	PrioritizeEarlyCharge bool

	// IncludeDegradationCost adds battery degradation to each transition's
	// cost.
	IncludeDegradationCost bool

	LimitImportMode  LimitMode
	LimitImportValue *float64
	LimitExportMode  LimitMode
	LimitExportValue *float64

	// IncludeChargeLoss applies charge/discharge efficiency when converting
	// battery-side power to grid-side power.
	IncludeChargeLoss bool

	// AllowSolarCurtailment lets the solver spill generation instead of
	// exporting at a negative export tariff.
	AllowSolarCurtailment bool
}

// DefaultOptions mirror a typical day-ahead solve: 1% SOC steps, ending at
// half charge, no limits and no extra cost terms.
func DefaultOptions() Options {
	return Options{
		SOCInterval:       1.0,
		ConstrainFinalSOC: true,
		FinalSOC:          50.0,
		LimitImportMode:   LimitModeNone,
		LimitExportMode:   LimitModeNone,
	}
}

// Validate reports configuration errors before any solve work happens.
func (o Options) Validate() error {
	if o.SOCInterval <= 0 {
		return errors.New("SOCInterval must be > 0")
	}
	if DiscretisationOffset(100, o.SOCInterval) != 0 {
		return errors.New("SOCInterval must divide 100% state of charge without residue")
	}
	if o.FinalSOC < 0 || o.FinalSOC > 100 {
		return errors.New("FinalSOC must be between 0 and 100")
	}
	if !o.LimitImportMode.valid() {
		return fmt.Errorf("LimitImportMode must be one of %q, %q, %q",
			LimitModeNone, LimitModeStatic, LimitModeDynamic)
	}
	if !o.LimitExportMode.valid() {
		return fmt.Errorf("LimitExportMode must be one of %q, %q, %q",
			LimitModeNone, LimitModeStatic, LimitModeDynamic)
	}
	if o.LimitImportMode == LimitModeStatic && o.LimitImportValue == nil {
		return errors.New("LimitImportValue must be set when LimitImportMode is static_limit")
	}
	if o.LimitExportMode == LimitModeStatic && o.LimitExportValue == nil {
		return errors.New("LimitExportValue must be set when LimitExportMode is static_limit")
	}
	return nil
}

// DynamicProgram computes an optimal battery control trajectory by backward
// induction over a discretized SOC x time grid.
type DynamicProgram struct {
	opts Options
}

func New(opts Options) (*DynamicProgram, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &DynamicProgram{opts: opts}, nil
}

// costToGo is one cell of the CTG matrix. Cells start unreached; relying on
// an explicit flag rather than a float-max sentinel keeps the epsilon
// comparisons above honest.
type costToGo struct {
	cost    float64
	reached bool
}

// dpRun holds the working state of a single solve.
type dpRun struct {
	opts    Options
	battery model.Battery
	rows    []model.Interval
	hours   float64

	limitImport []float64
	limitExport []float64

	numStates int
	incSteps  int // max SOC grid steps gained per interval (charging)
	decSteps  int // max SOC grid steps lost per interval (discharging)

	ctg [][]costToGo // [state][interval]
	cf  [][]int      // [state][interval], successor chosen walking backward
	sc  [][]float64  // [state][interval], curtailment of the chosen transition
}

// Solve runs the dynamic program for one scenario. The battery is copied:
// discretisation snapping and the forward walk never touch the caller's
// instance.
func (d *DynamicProgram) Solve(scenario *model.Scenario, battery *model.Battery) (model.Trajectory, error) {
	if battery == nil {
		return nil, errors.New("battery is nil")
	}
	if err := battery.Validate(); err != nil {
		return nil, fmt.Errorf("battery invalid: %w", err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	if d.opts.LimitImportMode == LimitModeDynamic && scenario.LimitImport == nil {
		return nil, errors.New("dynamic import limit requires a limit_import series in the scenario")
	}
	if d.opts.LimitExportMode == LimitModeDynamic && scenario.LimitExport == nil {
		return nil, errors.New("dynamic export limit requires a limit_export series in the scenario")
	}

	r := &dpRun{
		opts:    d.opts,
		battery: *battery,
		rows:    scenario.Rows,
		hours:   scenario.ResolutionHours(),
	}
	r.buildLimits(scenario)
	r.snapToGrid()
	r.initialise()
	r.induct()
	return r.reconstruct(), nil
}

func (r *dpRun) buildLimits(scenario *model.Scenario) {
	n := len(r.rows)
	r.limitImport = make([]float64, n)
	r.limitExport = make([]float64, n)
	for t := 0; t < n; t++ {
		switch r.opts.LimitImportMode {
		case LimitModeStatic:
			r.limitImport[t] = *r.opts.LimitImportValue
		case LimitModeDynamic:
			r.limitImport[t] = scenario.LimitImport[t]
		default:
			r.limitImport[t] = noLimit
		}
		switch r.opts.LimitExportMode {
		case LimitModeStatic:
			r.limitExport[t] = *r.opts.LimitExportValue
		case LimitModeDynamic:
			r.limitExport[t] = scenario.LimitExport[t]
		default:
			r.limitExport[t] = noLimit
		}
	}
}

// snapToGrid aligns the battery's soc/min/max to the discretisation grid.
// Misalignment is recovered, not fatal: the adjustment is logged so callers
// can audit the fidelity loss.
func (r *dpRun) snapToGrid() {
	step := r.opts.SOCInterval

	if offset := DiscretisationOffset(r.battery.SOC, step); offset != 0 {
		slog.Warn("adjusting initial soc to fit soc_interval",
			slog.Float64("soc", r.battery.SOC),
			slog.Float64("adjustment", -offset),
			slog.Float64("soc_interval", step))
		r.battery.SOC -= offset
	}
	if offset := DiscretisationOffset(r.battery.Params.MinSOC, step); offset != 0 {
		slog.Warn("adjusting battery min_soc to fit soc_interval",
			slog.Float64("min_soc", r.battery.Params.MinSOC),
			slog.Float64("adjustment", step-offset),
			slog.Float64("soc_interval", step))
		r.battery.Params.MinSOC += step - offset
	}
	if offset := DiscretisationOffset(r.battery.Params.MaxSOC, step); offset != 0 {
		slog.Warn("adjusting battery max_soc to fit soc_interval",
			slog.Float64("max_soc", r.battery.Params.MaxSOC),
			slog.Float64("adjustment", -offset),
			slog.Float64("soc_interval", step))
		r.battery.Params.MaxSOC -= offset
	}
	if r.battery.SOC < r.battery.Params.MinSOC {
		r.battery.SOC = r.battery.Params.MinSOC
	}
	if r.battery.SOC > r.battery.Params.MaxSOC {
		r.battery.SOC = r.battery.Params.MaxSOC
	}
}

func (r *dpRun) initialise() {
	p := r.battery.Params
	step := r.opts.SOCInterval
	n := len(r.rows)

	r.numStates = int(math.Round((p.MaxSOC-p.MinSOC)/step)) + 1

	// Bound the reachable band: how many grid steps the SOC can move in one
	// interval given the rate limits. This is what keeps the transition
	// search O(states x band) instead of O(states^2).
	r.incSteps = int(math.Round(r.battery.SOCChange(p.MaxChargeRate, r.hours) / step))
	r.decSteps = int(math.Round(r.battery.SOCChange(p.MaxDischargeRate, r.hours) / step))

	r.ctg = make([][]costToGo, r.numStates)
	r.cf = make([][]int, r.numStates)
	r.sc = make([][]float64, r.numStates)
	for i := 0; i < r.numStates; i++ {
		r.ctg[i] = make([]costToGo, n)
		r.cf[i] = make([]int, n-1)
		r.sc[i] = make([]float64, n-1)
		for t := 0; t < n-1; t++ {
			r.cf[i][t] = i
		}
		// Every terminal state is acceptable at zero remaining cost.
		r.ctg[i][n-1] = costToGo{cost: 0, reached: true}
	}

	if r.opts.ConstrainFinalSOC {
		idx := int((r.opts.FinalSOC - p.MinSOC) / step)
		if idx < 0 {
			idx = 0
		}
		if idx > r.numStates-1 {
			idx = r.numStates - 1
		}
		r.ctg[idx][n-1] = costToGo{cost: finalSOCBias, reached: true}
	}

	slog.Debug("dynamic program grid initialised",
		slog.Int("num_soc_states", r.numStates),
		slog.Int("num_time_intervals", n),
		slog.Int("max_increase_steps", r.incSteps),
		slog.Int("max_decrease_steps", r.decSteps))
}

// solarCurtailment decides how much generation to spill for one candidate
// transition. Generation is only curtailed when curtailment is allowed, the
// export tariff is negative, and the transition would otherwise net-export;
// it is cut back exactly to the point of zero net export and never beyond the
// available generation.
func (r *dpRun) solarCurtailment(t int, batteryImpactW float64) float64 {
	if !r.opts.AllowSolarCurtailment {
		return 0
	}
	if r.rows[t].TariffExport >= 0 {
		return 0
	}
	netW := r.rows[t].Demand - r.rows[t].Generation + batteryImpactW
	if netW >= 0 {
		return 0
	}
	return math.Min(-netW, r.rows[t].Generation)
}

func (r *dpRun) induct() {
	n := len(r.rows)
	step := r.opts.SOCInterval

	for col := n - 2; col >= 0; col-- {
		row := &r.rows[col]

		for next := 0; next < r.numStates; next++ {
			if !r.ctg[next][col+1].reached {
				continue
			}

			// States that can reach `next` within one interval's worth of
			// charge or discharge.
			prevMin := next - r.incSteps
			if prevMin < 0 {
				prevMin = 0
			}
			prevMax := next + r.decSteps
			if prevMax > r.numStates-1 {
				prevMax = r.numStates - 1
			}

			for prev := prevMin; prev <= prevMax; prev++ {
				changePercent := float64(next-prev) * step
				changeWh := r.battery.SOCChangeWh(changePercent)
				rateW := changeWh / r.hours

				impactW := rateW
				if r.opts.IncludeChargeLoss {
					impactW = r.battery.ImpactWithEfficiency(rateW)
				}

				curtailW := r.solarCurtailment(col, impactW)
				netW := row.Demand - row.Generation + impactW + curtailW

				if netW > r.limitImport[col] || netW < -r.limitExport[col] {
					continue
				}

				cost := StateTransitionCost(netW*r.hours/1000, row.TariffImport, row.TariffExport)
				if r.opts.IncludeDegradationCost {
					cost += r.battery.DegradationCost(changeWh)
				}
				if r.opts.MinimizeActivity && prev != next {
					cost += activityPenalty
				}
				if r.opts.PrioritizeEarlyCharge {
					cost += float64(r.numStates-next) / float64(r.numStates) / earlyChargeDivisor
				}

				candidate := r.ctg[next][col+1].cost + cost
				cell := &r.ctg[prev][col]

				better := !cell.reached || candidate+epsImprovement < cell.cost
				// Equal cost but higher SOC: prefer the fuller battery as a
				// hedge against forecast error.
				tieToHigherSOC := cell.reached &&
					math.Abs(candidate-cell.cost) < epsTie && next > prev

				if better || tieToHigherSOC {
					cell.cost = candidate
					cell.reached = true
					r.cf[prev][col] = next
					r.sc[prev][col] = curtailW
				}
			}
		}
	}
}

// reconstruct walks the came-from pointers forward from the initial SOC,
// emitting the rate and curtailment of each chosen transition. The last
// interval has no further transition, so its rate and curtailment are zero.
func (r *dpRun) reconstruct() model.Trajectory {
	n := len(r.rows)
	step := r.opts.SOCInterval
	minSOC := r.battery.Params.MinSOC

	cur := int(math.Round((r.battery.SOC - minSOC) / step))
	if cur < 0 {
		cur = 0
	}
	if cur > r.numStates-1 {
		cur = r.numStates - 1
	}

	traj := make(model.Trajectory, 0, n)
	soc := r.battery.SOC
	for t := 0; t < n-1; t++ {
		next := r.cf[cur][t]
		nextSOC := float64(next)*step + minSOC
		traj = append(traj, model.TrajectoryPoint{
			Timestamp:        r.rows[t].Timestamp,
			ChargeRate:       r.battery.ChargeRate(nextSOC-soc, r.hours),
			SOC:              soc,
			SolarCurtailment: r.sc[cur][t],
		})
		soc = nextSOC
		cur = next
	}
	traj = append(traj, model.TrajectoryPoint{
		Timestamp: r.rows[n-1].Timestamp,
		SOC:       soc,
	})
	return traj
}
