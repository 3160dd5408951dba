package models

// ScenarioRow is one interval of scenario input.
type ScenarioRow struct {
	Timestamp    string  `json:"timestamp" binding:"required"` // RFC 3339
	Generation   float64 `json:"generation"`
	Demand       float64 `json:"demand"`
	TariffImport float64 `json:"tariff_import"`
	TariffExport float64 `json:"tariff_export"`
}

// BatteryConfig defines battery parameters. Zero fields fall back to the
// built-in defaults.
type BatteryConfig struct {
	Name                        string  `json:"name,omitempty"`
	CapacityWh                  float64 `json:"capacity_wh"`
	MaxChargeRateW              float64 `json:"max_charge_rate_w"`
	MaxDischargeRateW           float64 `json:"max_discharge_rate_w"`
	MinSOC                      float64 `json:"min_soc"`
	MaxSOC                      float64 `json:"max_soc"`
	InitialSOC                  float64 `json:"initial_soc,omitempty"`
	DegradationCostPerKWhCharge float64 `json:"degradation_cost_per_kwh_charge,omitempty"`
	DegradationCostPerKWhDischg float64 `json:"degradation_cost_per_kwh_discharge,omitempty"`
	EfficiencyCharging          float64 `json:"efficiency_charging,omitempty"`
	EfficiencyDischarging       float64 `json:"efficiency_discharging,omitempty"`
}

// SolverConfig defines optimisation options.
type SolverConfig struct {
	SOCInterval            float64  `json:"soc_interval,omitempty"`
	ConstrainFinalSOC      *bool    `json:"constrain_final_soc,omitempty"`
	FinalSOC               float64  `json:"final_soc,omitempty"`
	MinimizeActivity       bool     `json:"minimize_activity,omitempty"`
	PrioritizeEarlyCharge  bool     `json:"prioritize_early_charge,omitempty"`
	IncludeDegradationCost bool     `json:"include_degradation_cost,omitempty"`
	IncludeChargeLoss      bool     `json:"include_charge_loss,omitempty"`
	AllowSolarCurtailment  bool     `json:"allow_solar_curtailment,omitempty"`
	LimitImportMode        string   `json:"limit_import_mode,omitempty"`
	LimitImportValue       *float64 `json:"limit_import_value,omitempty"`
	LimitExportMode        string   `json:"limit_export_mode,omitempty"`
	LimitExportValue       *float64 `json:"limit_export_value,omitempty"`
}

// SolveRequest represents the request body for an optimal solve.
type SolveRequest struct {
	Scenario    []ScenarioRow `json:"scenario" binding:"required"`
	LimitImport []float64     `json:"limit_import,omitempty"`
	LimitExport []float64     `json:"limit_export,omitempty"`
	Battery     BatteryConfig `json:"battery,omitempty"`
	Solver      SolverConfig  `json:"solver,omitempty"`
}

// ScheduleRequest represents the request body for schedule synthesis.
type ScheduleRequest struct {
	SolveRequest

	// Controllers lists the controllers eligible for the schedule, by name.
	// Empty means all registered controllers.
	Controllers []string `json:"controllers,omitempty"`

	ThresholdNearOptimal float64 `json:"threshold_near_optimal,omitempty"`
	FillIndividualGaps   bool    `json:"fill_individual_gaps,omitempty"`
}
