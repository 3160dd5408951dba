package main

import (
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/solstice-ai/optimal-energy-storage/internal/controller"
	"github.com/solstice-ai/optimal-energy-storage/internal/evaluate"
	"github.com/solstice-ai/optimal-energy-storage/internal/model"
	"github.com/solstice-ai/optimal-energy-storage/internal/scheduler"
	"github.com/solstice-ai/optimal-energy-storage/internal/solver"
)

// Demo:
// - Build a synthetic one-day scenario (solar generation, evening peak, TOU tariff)
// - Solve it with the dynamic program
// - Synthesize a controller schedule matching the optimal trajectory
// - Rank every controller against the optimal solve
func main() {
	n := flag.Int("n", 48, "Number of half-hour intervals to simulate")
	flag.Parse()

	scenario := syntheticScenario(*n)
	battery, err := model.NewBattery(model.DefaultBatteryParams(), 50)
	if err != nil {
		panic(err)
	}

	dp, err := solver.New(solver.DefaultOptions())
	if err != nil {
		panic(err)
	}
	optimal, err := dp.Solve(scenario, battery)
	if err != nil {
		panic(err)
	}
	optimalPerf, err := evaluate.Performance(scenario, optimal, battery)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Scenario: %d intervals @ %s resolution\n\n", len(scenario.Rows), scenario.Resolution())

	fmt.Println("Optimal trajectory (first 12 intervals):")
	for i := 0; i < minInt(12, len(optimal)); i++ {
		p := optimal[i]
		fmt.Printf(
			"%s  rate=%8.1f  soc=%6.2f  action=%s\n",
			p.Timestamp.Format("2006-01-02 15:04"),
			p.ChargeRate,
			p.SOC,
			model.ActionFromChargeRate(p.ChargeRate),
		)
	}

	sched := scheduler.New(scheduler.Options{})
	schedResult, err := sched.Solve(scenario, battery, controller.Registry(), optimal)
	if err != nil {
		panic(err)
	}

	fmt.Printf("\nSynthesized schedule (%d entries):\n", len(schedResult.Schedule))
	for _, e := range schedResult.Schedule {
		fmt.Printf("  %s  %s\n", e.Timestamp.Format("15:04"), e.Controller)
	}

	results := map[string]*evaluate.Result{"DynamicProgram": optimalPerf}
	for _, c := range controller.Registry() {
		trajectory, err := controller.Run(scenario, battery, c, controller.RunOptions{ConstrainChargeRate: true})
		if err != nil {
			panic(err)
		}
		perf, err := evaluate.Performance(scenario, trajectory, battery)
		if err != nil {
			panic(err)
		}
		results[c.Name()] = perf
	}

	fmt.Println("\nRanking by total cost:")
	for i, r := range evaluate.Rank(results) {
		fmt.Printf("%-4d %-28s cost=%8.2f  final soc=%6.2f\n", i+1, r.Name, r.TotalCost, r.FinalSOC)
	}

	fmt.Printf("\nDone. Optimal cost=$%.2f  Schedule cost=$%.2f\n",
		optimalPerf.TotalCost, schedResult.Performance.TotalCost)
}

// syntheticScenario builds a day with a midday solar bump, an evening demand
// peak and a time-of-use import tariff.
func syntheticScenario(n int) *model.Scenario {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	scenario := &model.Scenario{}
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * 30 * time.Minute)
		hour := float64(ts.Hour()) + float64(ts.Minute())/60

		// Solar roughly follows a half-sine between 06:00 and 18:00.
		generation := 0.0
		if hour >= 6 && hour <= 18 {
			generation = 4000 * math.Sin((hour-6)/12*math.Pi)
		}

		// Base load plus an evening peak.
		demand := 1000.0
		if hour >= 17 && hour <= 21 {
			demand = 3500
		}

		// Peak import tariff in the evening, shoulder during the day.
		tariffImport := 0.20
		if hour >= 17 && hour <= 21 {
			tariffImport = 0.45
		} else if hour >= 7 && hour < 17 {
			tariffImport = 0.25
		}

		scenario.Rows = append(scenario.Rows, model.Interval{
			Timestamp:    ts,
			Generation:   generation,
			Demand:       demand,
			TariffImport: tariffImport,
			TariffExport: 0.07,
		})
	}
	return scenario
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
