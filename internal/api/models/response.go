package models

import "time"

// ErrorResponse is the envelope for all error replies.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// TrajectoryPoint is one interval of a solved trajectory.
type TrajectoryPoint struct {
	Timestamp        time.Time `json:"timestamp"`
	ChargeRate       float64   `json:"charge_rate"`
	SOC              float64   `json:"soc"`
	SolarCurtailment float64   `json:"solar_curtailment,omitempty"`
}

// PerformanceRow is one interval of an evaluated trajectory.
type PerformanceRow struct {
	Timestamp           time.Time `json:"timestamp"`
	ChargeRatePredicted float64   `json:"charge_rate_predicted"`
	ChargeRateActual    float64   `json:"charge_rate_actual"`
	SOCPredicted        float64   `json:"soc_predicted"`
	SOCActual           float64   `json:"soc_actual"`
	SolarCurtailment    float64   `json:"solar_curtailment,omitempty"`
	GridImpact          float64   `json:"grid_impact"`
	IntervalCost        float64   `json:"interval_cost"`
	AccumulatedCost     float64   `json:"accumulated_cost"`
}

// SolveResponse is the reply to a solve request.
type SolveResponse struct {
	Status      string            `json:"status"`
	Trajectory  []TrajectoryPoint `json:"trajectory"`
	TotalCost   float64           `json:"total_cost"`
	FinalSOC    float64           `json:"final_soc"`
	Performance []PerformanceRow  `json:"performance,omitempty"`
}

// ScheduleEntry is one switch point of a synthesized schedule.
type ScheduleEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Controller string    `json:"controller"`
}

// ScheduleResponse is the reply to a schedule request.
type ScheduleResponse struct {
	Status     string            `json:"status"`
	Schedule   []ScheduleEntry   `json:"schedule"`
	Trajectory []TrajectoryPoint `json:"trajectory"`
	TotalCost  float64           `json:"total_cost"`

	// OptimalCost is the cost of the unconstrained optimal trajectory, for
	// comparison against the schedule's TotalCost.
	OptimalCost float64 `json:"optimal_cost"`
}

// ControllersResponse lists the registered controller names.
type ControllersResponse struct {
	Controllers []string `json:"controllers"`
}
