package controller

import (
	"github.com/solstice-ai/optimal-energy-storage/internal/model"
)

// SolarSelfConsumption charges with excess generation and discharges to meet
// excess demand: the charge rate is generation minus demand.
type SolarSelfConsumption struct{}

func NewSolarSelfConsumption() *SolarSelfConsumption { return &SolarSelfConsumption{} }

func (c *SolarSelfConsumption) Name() string { return "SolarSelfConsumption" }

func (c *SolarSelfConsumption) Prepare(*model.Scenario, *model.Battery) {}

func (c *SolarSelfConsumption) SolveOneInterval(row model.Interval) float64 {
	return row.Generation - row.Demand
}

// ImportTariffOptimisation discharges to meet demand when the import tariff
// is at or above the scenario average, and charges at the maximum rate when
// it is below.
type ImportTariffOptimisation struct {
	importTariffAverage float64
	maxChargeRate       float64
}

func NewImportTariffOptimisation() *ImportTariffOptimisation { return &ImportTariffOptimisation{} }

func (c *ImportTariffOptimisation) Name() string { return "ImportTariffOptimisation" }

func (c *ImportTariffOptimisation) Prepare(scenario *model.Scenario, battery *model.Battery) {
	c.importTariffAverage = scenario.TariffImportAverage()
	c.maxChargeRate = battery.Params.MaxChargeRate
}

func (c *ImportTariffOptimisation) SolveOneInterval(row model.Interval) float64 {
	if row.TariffImport >= c.importTariffAverage {
		return -row.Demand
	}
	return c.maxChargeRate
}

// SpotPriceArbitrageNaive assumes both tariffs track the wholesale spot
// price. It charges when the import tariff is below the midpoint between the
// scenario's minimum import tariff and maximum export tariff, discharges when
// the export tariff is above that midpoint, and otherwise holds. Demand and
// generation are ignored; this is intentionally not very smart.
type SpotPriceArbitrageNaive struct {
	arbitrageMean    float64
	maxChargeRate    float64
	maxDischargeRate float64
}

func NewSpotPriceArbitrageNaive() *SpotPriceArbitrageNaive { return &SpotPriceArbitrageNaive{} }

func (c *SpotPriceArbitrageNaive) Name() string { return "SpotPriceArbitrageNaive" }

func (c *SpotPriceArbitrageNaive) Prepare(scenario *model.Scenario, battery *model.Battery) {
	low := scenario.TariffImportMin()
	high := scenario.TariffExportMax()
	c.arbitrageMean = low + (high-low)/2
	c.maxChargeRate = battery.Params.MaxChargeRate
	c.maxDischargeRate = battery.Params.MaxDischargeRate
}

func (c *SpotPriceArbitrageNaive) SolveOneInterval(row model.Interval) float64 {
	if row.TariffImport < c.arbitrageMean {
		return c.maxChargeRate
	}
	if row.TariffExport > c.arbitrageMean {
		return -c.maxDischargeRate
	}
	return 0
}
