package model

import (
	"errors"
	"fmt"
	"time"
)

// Interval is one row of a scenario time series.
// Power columns are in W, tariffs in $/kWh.
type Interval struct {
	Timestamp    time.Time
	Generation   float64
	Demand       float64
	TariffImport float64
	TariffExport float64
}

// Scenario is an ordered, fixed-resolution, gap-free time series of
// generation, demand and tariff signals. The optional LimitImport and
// LimitExport series (W) are nil when absent; when present they must be
// parallel to Rows. They are never inferred from anything else.
type Scenario struct {
	Rows []Interval

	LimitImport []float64
	LimitExport []float64
}

// Validate checks the preconditions the solvers rely on. A scenario shorter
// than two rows cannot define a resolution and is rejected.
func (s *Scenario) Validate() error {
	if len(s.Rows) < 2 {
		return errors.New("scenario must contain at least 2 intervals")
	}
	for i := 1; i < len(s.Rows); i++ {
		if !s.Rows[i].Timestamp.After(s.Rows[i-1].Timestamp) {
			return fmt.Errorf("scenario timestamps must be strictly increasing (row %d)", i)
		}
	}
	if s.LimitImport != nil && len(s.LimitImport) != len(s.Rows) {
		return fmt.Errorf("limit_import series has %d values, expected %d", len(s.LimitImport), len(s.Rows))
	}
	if s.LimitExport != nil && len(s.LimitExport) != len(s.Rows) {
		return fmt.Errorf("limit_export series has %d values, expected %d", len(s.LimitExport), len(s.Rows))
	}
	return nil
}

// Resolution is the spacing between the first two timestamps. The package
// assumes gaps have been handled before data is passed in, so the spacing of
// any two adjacent rows defines the resolution.
func (s *Scenario) Resolution() time.Duration {
	return s.Rows[1].Timestamp.Sub(s.Rows[0].Timestamp)
}

// ResolutionHours returns the interval size as a fraction of an hour
// (e.g. 5 minutes = 1/12).
func (s *Scenario) ResolutionHours() float64 {
	return s.Resolution().Hours()
}

// TariffImportAverage is the mean import tariff across the scenario.
func (s *Scenario) TariffImportAverage() float64 {
	sum := 0.0
	for _, r := range s.Rows {
		sum += r.TariffImport
	}
	return sum / float64(len(s.Rows))
}

// TariffImportMin is the lowest import tariff across the scenario.
func (s *Scenario) TariffImportMin() float64 {
	min := s.Rows[0].TariffImport
	for _, r := range s.Rows[1:] {
		if r.TariffImport < min {
			min = r.TariffImport
		}
	}
	return min
}

// TariffExportMax is the highest export tariff across the scenario.
func (s *Scenario) TariffExportMax() float64 {
	max := s.Rows[0].TariffExport
	for _, r := range s.Rows[1:] {
		if r.TariffExport > max {
			max = r.TariffExport
		}
	}
	return max
}
