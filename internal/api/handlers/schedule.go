package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solstice-ai/optimal-energy-storage/internal/api/models"
	"github.com/solstice-ai/optimal-energy-storage/internal/controller"
	"github.com/solstice-ai/optimal-energy-storage/internal/evaluate"
	"github.com/solstice-ai/optimal-energy-storage/internal/model"
	"github.com/solstice-ai/optimal-energy-storage/internal/scheduler"
)

func evaluateOptimal(scenario *model.Scenario, optimal model.Trajectory, battery *model.Battery) (float64, error) {
	perf, err := evaluate.Performance(scenario, optimal, battery)
	if err != nil {
		return 0, err
	}
	return perf.TotalCost, nil
}

// ScheduleHandler handles schedule synthesis requests
type ScheduleHandler struct{}

func NewScheduleHandler() *ScheduleHandler {
	return &ScheduleHandler{}
}

// Schedule handles POST /api/v1/schedule
func (h *ScheduleHandler) Schedule(c *gin.Context) {
	var req models.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	controllers, err := controller.ByName(req.Controllers)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "UNKNOWN_CONTROLLER",
				Message: err.Error(),
			},
		})
		return
	}

	scenario, battery, dp, errResp := buildSolve(&req.SolveRequest)
	if errResp != nil {
		c.JSON(http.StatusBadRequest, *errResp)
		return
	}

	optimal, err := dp.Solve(scenario, battery)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "SOLVE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	sched := scheduler.New(scheduler.Options{
		ThresholdNearOptimal: req.ThresholdNearOptimal,
		FillIndividualGaps:   req.FillIndividualGaps,
	})
	result, err := sched.Solve(scenario, battery, controllers, optimal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "SCHEDULE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	optimalPerf, err := evaluateOptimal(scenario, optimal, battery)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "EVALUATE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	entries := make([]models.ScheduleEntry, len(result.Schedule))
	for i, e := range result.Schedule {
		entries[i] = models.ScheduleEntry{Timestamp: e.Timestamp, Controller: e.Controller}
	}

	c.JSON(http.StatusOK, models.ScheduleResponse{
		Status:      "completed",
		Schedule:    entries,
		Trajectory:  convertTrajectory(result.Trajectory),
		TotalCost:   result.Performance.TotalCost,
		OptimalCost: optimalPerf,
	})
}

// ListControllers handles GET /api/v1/controllers
func ListControllers(c *gin.Context) {
	all := controller.Registry()
	names := make([]string, len(all))
	for i, ctrl := range all {
		names[i] = ctrl.Name()
	}
	c.JSON(http.StatusOK, models.ControllersResponse{Controllers: names})
}
