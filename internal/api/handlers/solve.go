package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/solstice-ai/optimal-energy-storage/internal/api/models"
	"github.com/solstice-ai/optimal-energy-storage/internal/config"
	"github.com/solstice-ai/optimal-energy-storage/internal/evaluate"
	"github.com/solstice-ai/optimal-energy-storage/internal/model"
	"github.com/solstice-ai/optimal-energy-storage/internal/solver"
)

// SolveHandler handles optimal-solve requests
type SolveHandler struct{}

func NewSolveHandler() *SolveHandler {
	return &SolveHandler{}
}

// Solve handles POST /api/v1/solve
func (h *SolveHandler) Solve(c *gin.Context) {
	var req models.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	scenario, battery, dp, errResp := buildSolve(&req)
	if errResp != nil {
		c.JSON(http.StatusBadRequest, *errResp)
		return
	}

	trajectory, err := dp.Solve(scenario, battery)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "SOLVE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	perf, err := evaluate.Performance(scenario, trajectory, battery)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "EVALUATE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SolveResponse{
		Status:      "completed",
		Trajectory:  convertTrajectory(trajectory),
		TotalCost:   perf.TotalCost,
		FinalSOC:    trajectory.FinalSOC(),
		Performance: convertPerformance(perf),
	})
}

// buildSolve converts a request into a scenario, battery and solver. A
// non-nil error response means the request was invalid.
func buildSolve(req *models.SolveRequest) (*model.Scenario, *model.Battery, *solver.DynamicProgram, *models.ErrorResponse) {
	scenario, err := convertScenario(req.Scenario, req.LimitImport, req.LimitExport)
	if err != nil {
		return nil, nil, nil, &models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_SCENARIO", Message: err.Error()},
		}
	}

	battery, err := buildBattery(req.Battery)
	if err != nil {
		return nil, nil, nil, &models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_BATTERY", Message: err.Error()},
		}
	}

	dp, err := solver.New(convertSolverConfig(req.Solver).ToSolverOptions())
	if err != nil {
		return nil, nil, nil, &models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INVALID_SOLVER_CONFIG", Message: err.Error()},
		}
	}

	return scenario, battery, dp, nil
}

func convertScenario(rows []models.ScenarioRow, limitImport, limitExport []float64) (*model.Scenario, error) {
	scenario := &model.Scenario{
		LimitImport: limitImport,
		LimitExport: limitExport,
	}
	for i, r := range rows {
		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("scenario row %d: %w", i, err)
		}
		scenario.Rows = append(scenario.Rows, model.Interval{
			Timestamp:    ts,
			Generation:   r.Generation,
			Demand:       r.Demand,
			TariffImport: r.TariffImport,
			TariffExport: r.TariffExport,
		})
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return scenario, nil
}

func buildBattery(b models.BatteryConfig) (*model.Battery, error) {
	cfg := config.BatteryConfig{
		Name:                        b.Name,
		CapacityWh:                  b.CapacityWh,
		MaxChargeRateW:              b.MaxChargeRateW,
		MaxDischargeRateW:           b.MaxDischargeRateW,
		MinSOC:                      b.MinSOC,
		MaxSOC:                      b.MaxSOC,
		InitialSOC:                  b.InitialSOC,
		DegradationCostPerKWhCharge: b.DegradationCostPerKWhCharge,
		DegradationCostPerKWhDischg: b.DegradationCostPerKWhDischg,
		EfficiencyCharging:          b.EfficiencyCharging,
		EfficiencyDischarging:       b.EfficiencyDischarging,
	}
	params := cfg.ToModelParams()
	if cfg.InitialSOC == 0 {
		cfg.InitialSOC = (params.MinSOC + params.MaxSOC) / 2
	}
	return model.NewBattery(params, cfg.InitialSOC)
}

func convertSolverConfig(s models.SolverConfig) config.SolverConfig {
	return config.SolverConfig{
		SOCInterval:            s.SOCInterval,
		ConstrainFinalSOC:      s.ConstrainFinalSOC,
		FinalSOC:               s.FinalSOC,
		MinimizeActivity:       s.MinimizeActivity,
		PrioritizeEarlyCharge:  s.PrioritizeEarlyCharge,
		IncludeDegradationCost: s.IncludeDegradationCost,
		IncludeChargeLoss:      s.IncludeChargeLoss,
		AllowSolarCurtailment:  s.AllowSolarCurtailment,
		LimitImportMode:        s.LimitImportMode,
		LimitImportValue:       s.LimitImportValue,
		LimitExportMode:        s.LimitExportMode,
		LimitExportValue:       s.LimitExportValue,
	}
}

func convertTrajectory(trajectory model.Trajectory) []models.TrajectoryPoint {
	out := make([]models.TrajectoryPoint, len(trajectory))
	for i, p := range trajectory {
		out[i] = models.TrajectoryPoint{
			Timestamp:        p.Timestamp,
			ChargeRate:       p.ChargeRate,
			SOC:              p.SOC,
			SolarCurtailment: p.SolarCurtailment,
		}
	}
	return out
}

func convertPerformance(result *evaluate.Result) []models.PerformanceRow {
	out := make([]models.PerformanceRow, len(result.Rows))
	for i, r := range result.Rows {
		out[i] = models.PerformanceRow{
			Timestamp:           r.Timestamp,
			ChargeRatePredicted: r.ChargeRatePredicted,
			ChargeRateActual:    r.ChargeRateActual,
			SOCPredicted:        r.SOCPredicted,
			SOCActual:           r.SOCActual,
			SolarCurtailment:    r.SolarCurtailment,
			GridImpact:          r.GridImpact,
			IntervalCost:        r.IntervalCost,
			AccumulatedCost:     r.AccumulatedCost,
		}
	}
	return out
}
