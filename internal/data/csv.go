// Package data handles scenario input and result output on disk.
package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/solstice-ai/optimal-energy-storage/internal/evaluate"
	"github.com/solstice-ai/optimal-energy-storage/internal/model"
)

// LoadScenarioCSV reads a scenario from a CSV file with a header row:
//
//	timestamp,generation,demand,tariff_import,tariff_export[,limit_import,limit_export]
//
// Timestamps are RFC 3339. The limit columns are optional and must appear
// together or not at all.
func LoadScenarioCSV(path string) (*model.Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: expected header and at least one data row", path)
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"timestamp", "generation", "demand", "tariff_import", "tariff_export"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, name)
		}
	}
	_, hasLimitImport := col["limit_import"]
	_, hasLimitExport := col["limit_export"]
	if hasLimitImport != hasLimitExport {
		return nil, fmt.Errorf("%s: limit_import and limit_export must be provided together", path)
	}

	scenario := &model.Scenario{}
	for i, rec := range records[1:] {
		ts, err := time.Parse(time.RFC3339, rec[col["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		row := model.Interval{Timestamp: ts}
		if row.Generation, err = parseFloat(rec[col["generation"]]); err != nil {
			return nil, fmt.Errorf("%s row %d generation: %w", path, i+1, err)
		}
		if row.Demand, err = parseFloat(rec[col["demand"]]); err != nil {
			return nil, fmt.Errorf("%s row %d demand: %w", path, i+1, err)
		}
		if row.TariffImport, err = parseFloat(rec[col["tariff_import"]]); err != nil {
			return nil, fmt.Errorf("%s row %d tariff_import: %w", path, i+1, err)
		}
		if row.TariffExport, err = parseFloat(rec[col["tariff_export"]]); err != nil {
			return nil, fmt.Errorf("%s row %d tariff_export: %w", path, i+1, err)
		}
		scenario.Rows = append(scenario.Rows, row)

		if hasLimitImport {
			li, err := parseFloat(rec[col["limit_import"]])
			if err != nil {
				return nil, fmt.Errorf("%s row %d limit_import: %w", path, i+1, err)
			}
			le, err := parseFloat(rec[col["limit_export"]])
			if err != nil {
				return nil, fmt.Errorf("%s row %d limit_export: %w", path, i+1, err)
			}
			scenario.LimitImport = append(scenario.LimitImport, li)
			scenario.LimitExport = append(scenario.LimitExport, le)
		}
	}

	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenario, nil
}

func WriteTrajectoryCSV(path string, trajectory model.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"timestamp", "charge_rate", "soc", "solar_curtailment"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range trajectory {
		row := []string{
			fmtTime(p.Timestamp),
			fmtFloat(p.ChargeRate),
			fmtFloat(p.SOC),
			fmtFloat(p.SolarCurtailment),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func WritePerformanceCSV(path string, result *evaluate.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"timestamp",
		"charge_rate_predicted",
		"charge_rate_actual",
		"soc_predicted",
		"soc_actual",
		"solar_curtailment",
		"grid_impact",
		"interval_cost",
		"accumulated_cost",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range result.Rows {
		row := []string{
			fmtTime(r.Timestamp),
			fmtFloat(r.ChargeRatePredicted),
			fmtFloat(r.ChargeRateActual),
			fmtFloat(r.SOCPredicted),
			fmtFloat(r.SOCActual),
			fmtFloat(r.SolarCurtailment),
			fmtFloat(r.GridImpact),
			fmtFloat(r.IntervalCost),
			fmtFloat(r.AccumulatedCost),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
