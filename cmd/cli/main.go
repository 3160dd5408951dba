package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/solstice-ai/optimal-energy-storage/internal/config"
	"github.com/solstice-ai/optimal-energy-storage/internal/controller"
	"github.com/solstice-ai/optimal-energy-storage/internal/data"
	"github.com/solstice-ai/optimal-energy-storage/internal/evaluate"
	"github.com/solstice-ai/optimal-energy-storage/internal/model"
	"github.com/solstice-ai/optimal-energy-storage/internal/scheduler"
	"github.com/solstice-ai/optimal-energy-storage/internal/solver"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "solve":
		cmdSolve(os.Args[2:])
	case "schedule":
		cmdSchedule(os.Args[2:])
	case "compare":
		cmdCompare(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli solve --data scenario.csv --config config.yaml --out results/trajectory.csv")
	fmt.Println("  cli schedule --data scenario.csv --config config.yaml --out results/schedule.csv")
	fmt.Println("  cli compare --data scenario.csv --config config.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - solve writes the optimal charge/discharge trajectory per interval")
	fmt.Println("  - schedule matches the optimal trajectory against rule-based controllers")
	fmt.Println("  - compare ranks every controller plus the optimal solve by total cost")
}

func cmdSolve(args []string) {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	dataPath := fs.String("data", "scenario.csv", "Path to scenario CSV")
	cfgPath := fs.String("config", "", "Path to YAML config")
	outPath := fs.String("out", "results/trajectory.csv", "Output CSV path")
	perfPath := fs.String("perf", "", "Optional: write per-interval performance CSV")
	_ = fs.Parse(args)

	scenario, battery, cfg := loadInputs(*dataPath, *cfgPath)

	dp, err := solver.New(cfg.Solver.ToSolverOptions())
	if err != nil {
		panic(err)
	}
	trajectory, err := dp.Solve(scenario, battery)
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		panic(err)
	}
	if err := data.WriteTrajectoryCSV(*outPath, trajectory); err != nil {
		panic(err)
	}

	perf, err := evaluate.Performance(scenario, trajectory, battery)
	if err != nil {
		panic(err)
	}
	if *perfPath != "" {
		if err := data.WritePerformanceCSV(*perfPath, perf); err != nil {
			panic(err)
		}
	}

	fmt.Printf("Wrote %d rows to %s\n", len(trajectory), *outPath)
	fmt.Printf("Total cost=$%.2f Final SOC=%.2f\n", perf.TotalCost, trajectory.FinalSOC())
}

func cmdSchedule(args []string) {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	dataPath := fs.String("data", "scenario.csv", "Path to scenario CSV")
	cfgPath := fs.String("config", "", "Path to YAML config")
	outPath := fs.String("out", "results/schedule_trajectory.csv", "Output CSV path")
	controllerNames := fs.String("controllers", "", "Comma-separated controller names (empty=all)")
	_ = fs.Parse(args)

	scenario, battery, cfg := loadInputs(*dataPath, *cfgPath)

	dp, err := solver.New(cfg.Solver.ToSolverOptions())
	if err != nil {
		panic(err)
	}
	optimal, err := dp.Solve(scenario, battery)
	if err != nil {
		panic(err)
	}

	controllers, err := controller.ByName(splitNames(*controllerNames))
	if err != nil {
		panic(err)
	}

	sched := scheduler.New(scheduler.Options{
		ThresholdNearOptimal: cfg.Scheduler.ThresholdNearOptimal,
		FillIndividualGaps:   cfg.Scheduler.FillIndividualGaps,
	})
	result, err := sched.Solve(scenario, battery, controllers, optimal)
	if err != nil {
		panic(err)
	}

	optimalPerf, err := evaluate.Performance(scenario, optimal, battery)
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		panic(err)
	}
	if err := data.WriteTrajectoryCSV(*outPath, result.Trajectory); err != nil {
		panic(err)
	}

	fmt.Printf("Schedule (%d entries):\n", len(result.Schedule))
	for _, e := range result.Schedule {
		fmt.Printf("  %s  %s\n", e.Timestamp.Format("2006-01-02 15:04"), e.Controller)
	}
	fmt.Printf("Schedule cost=$%.2f  Optimal cost=$%.2f\n",
		result.Performance.TotalCost, optimalPerf.TotalCost)
	fmt.Printf("Wrote %d rows to %s\n", len(result.Trajectory), *outPath)
}

func cmdCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	dataPath := fs.String("data", "scenario.csv", "Path to scenario CSV")
	cfgPath := fs.String("config", "", "Path to YAML config")
	_ = fs.Parse(args)

	scenario, battery, cfg := loadInputs(*dataPath, *cfgPath)

	results := map[string]*evaluate.Result{}

	dp, err := solver.New(cfg.Solver.ToSolverOptions())
	if err != nil {
		panic(err)
	}
	optimal, err := dp.Solve(scenario, battery)
	if err != nil {
		panic(err)
	}
	perf, err := evaluate.Performance(scenario, optimal, battery)
	if err != nil {
		panic(err)
	}
	results["DynamicProgram"] = perf

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

	ranked := evaluate.Rank(results)
	fmt.Printf("%-4s %-28s %-12s %-8s\n", "rank", "name", "cost", "soc")
	for i, r := range ranked {
		fmt.Printf("%-4d %-28s %-12.2f %-8.2f\n", i+1, r.Name, r.TotalCost, r.FinalSOC)
	}
}

func loadInputs(dataPath, cfgPath string) (*model.Scenario, *model.Battery, *config.Config) {
	scenario, err := data.LoadScenarioCSV(dataPath)
	if err != nil {
		panic(err)
	}

	var cfg *config.Config
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			panic(err)
		}
	} else {
		cfg = &config.Config{}
		cfg.Battery.InitialSOC = (model.DefaultBatteryParams().MinSOC + model.DefaultBatteryParams().MaxSOC) / 2
	}

	battery, err := model.NewBattery(cfg.Battery.ToModelParams(), cfg.Battery.InitialSOC)
	if err != nil {
		panic(err)
	}

	return scenario, battery, cfg
}

func splitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
