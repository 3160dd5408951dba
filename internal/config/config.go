package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/solstice-ai/optimal-energy-storage/internal/model"
	"github.com/solstice-ai/optimal-energy-storage/internal/solver"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load battery parameters from a separate YAML file.
	// If both BatteryFile and Battery are provided, Battery overrides BatteryFile.
	BatteryFile string          `yaml:"battery_file"`
	Battery     BatteryConfig   `yaml:"battery"`
	Solver      SolverConfig    `yaml:"solver"`
	Scheduler   SchedulerConfig `yaml:"scheduler"`
}

type BatteryConfig struct {
	Name                        string  `yaml:"name"`
	CapacityWh                  float64 `yaml:"capacity_wh"`
	MaxChargeRateW              float64 `yaml:"max_charge_rate_w"`
	MaxDischargeRateW           float64 `yaml:"max_discharge_rate_w"`
	MinSOC                      float64 `yaml:"min_soc"`
	MaxSOC                      float64 `yaml:"max_soc"`
	InitialSOC                  float64 `yaml:"initial_soc"`
	DegradationCostPerKWhCharge float64 `yaml:"degradation_cost_per_kwh_charge"`
	DegradationCostPerKWhDischg float64 `yaml:"degradation_cost_per_kwh_discharge"`
	EfficiencyCharging          float64 `yaml:"efficiency_charging"`
	EfficiencyDischarging       float64 `yaml:"efficiency_discharging"`
}

type SolverConfig struct {
	SOCInterval            float64  `yaml:"soc_interval"`
	ConstrainFinalSOC      *bool    `yaml:"constrain_final_soc"`
	FinalSOC               float64  `yaml:"final_soc"`
	MinimizeActivity       bool     `yaml:"minimize_activity"`
	PrioritizeEarlyCharge  bool     `yaml:"prioritize_early_charge"`
	IncludeDegradationCost bool     `yaml:"include_degradation_cost"`
	IncludeChargeLoss      bool     `yaml:"include_charge_loss"`
	AllowSolarCurtailment  bool     `yaml:"allow_solar_curtailment"`
	LimitImportMode        string   `yaml:"limit_import_mode"`
	LimitImportValue       *float64 `yaml:"limit_import_value"`
	LimitExportMode        string   `yaml:"limit_export_mode"`
	LimitExportValue       *float64 `yaml:"limit_export_value"`
}

type SchedulerConfig struct {
	ThresholdNearOptimal float64 `yaml:"threshold_near_optimal"`
	FillIndividualGaps   bool    `yaml:"fill_individual_gaps"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	// If initial_soc is not provided, default it to the midpoint of the SOC
	// window so a bare config still validates.
	if c.Battery.InitialSOC == 0 {
		params := c.Battery.ToModelParams()
		c.Battery.InitialSOC = (params.MinSOC + params.MaxSOC) / 2
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	// If battery_file is set, load it and merge in any explicit overrides from c.Battery.
	if c.BatteryFile != "" {
		batteryPath := c.BatteryFile
		if !filepath.IsAbs(batteryPath) {
			// Prefer interpreting relative paths as relative to the config file
			// directory, falling back to the path as given.
			cand := filepath.Join(filepath.Dir(path), batteryPath)
			if _, err := os.Stat(cand); err == nil {
				batteryPath = cand
			}
		}
		loaded, err := loadBatteryFile(batteryPath)
		if err != nil {
			return nil, err
		}
		c.Battery = MergeBattery(loaded, c.Battery)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	params := c.Battery.ToModelParams()
	if _, err := model.NewBattery(params, c.Battery.InitialSOC); err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	opts := c.Solver.ToSolverOptions()
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("solver config invalid: %w", err)
	}
	if c.Scheduler.ThresholdNearOptimal < 0 {
		return errors.New("scheduler.threshold_near_optimal must not be negative")
	}
	return nil
}

// ToModelParams maps the YAML shape onto battery parameters, filling unset
// fields from the defaults.
func (b BatteryConfig) ToModelParams() model.BatteryParams {
	params := model.DefaultBatteryParams()
	if b.CapacityWh != 0 {
		params.Capacity = b.CapacityWh
	}
	if b.MaxChargeRateW != 0 {
		params.MaxChargeRate = b.MaxChargeRateW
	}
	if b.MaxDischargeRateW != 0 {
		params.MaxDischargeRate = b.MaxDischargeRateW
	}
	if b.MinSOC != 0 {
		params.MinSOC = b.MinSOC
	}
	if b.MaxSOC != 0 {
		params.MaxSOC = b.MaxSOC
	}
	if b.DegradationCostPerKWhCharge != 0 {
		params.DegradationCostPerKWhCharge = b.DegradationCostPerKWhCharge
	}
	if b.DegradationCostPerKWhDischg != 0 {
		params.DegradationCostPerKWhDischarge = b.DegradationCostPerKWhDischg
	}
	if b.EfficiencyCharging != 0 {
		params.EfficiencyCharging = b.EfficiencyCharging
	}
	if b.EfficiencyDischarging != 0 {
		params.EfficiencyDischarging = b.EfficiencyDischarging
	}
	return params
}

// ToSolverOptions maps the YAML shape onto solver options, filling unset
// fields from the defaults.
func (s SolverConfig) ToSolverOptions() solver.Options {
	opts := solver.DefaultOptions()
	if s.SOCInterval != 0 {
		opts.SOCInterval = s.SOCInterval
	}
	if s.ConstrainFinalSOC != nil {
		opts.ConstrainFinalSOC = *s.ConstrainFinalSOC
	}
	if s.FinalSOC != 0 {
		opts.FinalSOC = s.FinalSOC
	}
	opts.MinimizeActivity = s.MinimizeActivity
	opts.PrioritizeEarlyCharge = s.PrioritizeEarlyCharge
	opts.IncludeDegradationCost = s.IncludeDegradationCost
	opts.IncludeChargeLoss = s.IncludeChargeLoss
	opts.AllowSolarCurtailment = s.AllowSolarCurtailment
	if s.LimitImportMode != "" {
		opts.LimitImportMode = solver.LimitMode(s.LimitImportMode)
	}
	if s.LimitExportMode != "" {
		opts.LimitExportMode = solver.LimitMode(s.LimitExportMode)
	}
	opts.LimitImportValue = s.LimitImportValue
	opts.LimitExportValue = s.LimitExportValue
	return opts
}

type batteryFileWrapper struct {
	Battery BatteryConfig `yaml:"battery"`
}

func loadBatteryFile(path string) (BatteryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatteryConfig{}, err
	}
	var w batteryFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return BatteryConfig{}, err
	}
	return w.Battery, nil
}

// MergeBattery overlays non-zero fields from override onto base.
// Used when loading a battery file and then applying inline overrides.
func MergeBattery(base, override BatteryConfig) BatteryConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.CapacityWh != 0 {
		out.CapacityWh = override.CapacityWh
	}
	if override.MaxChargeRateW != 0 {
		out.MaxChargeRateW = override.MaxChargeRateW
	}
	if override.MaxDischargeRateW != 0 {
		out.MaxDischargeRateW = override.MaxDischargeRateW
	}
	if override.MinSOC != 0 {
		out.MinSOC = override.MinSOC
	}
	if override.MaxSOC != 0 {
		out.MaxSOC = override.MaxSOC
	}
	if override.InitialSOC != 0 {
		out.InitialSOC = override.InitialSOC
	}
	if override.DegradationCostPerKWhCharge != 0 {
		out.DegradationCostPerKWhCharge = override.DegradationCostPerKWhCharge
	}
	if override.DegradationCostPerKWhDischg != 0 {
		out.DegradationCostPerKWhDischg = override.DegradationCostPerKWhDischg
	}
	if override.EfficiencyCharging != 0 {
		out.EfficiencyCharging = override.EfficiencyCharging
	}
	if override.EfficiencyDischarging != 0 {
		out.EfficiencyDischarging = override.EfficiencyDischarging
	}
	return out
}
