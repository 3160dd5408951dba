package solver

// StateTransitionCost prices net grid energy exchange for one state
// transition. Positive energy (importing) is charged at the import tariff;
// negative energy (exporting) is credited at the export tariff, yielding a
// negative cost (revenue) when the export tariff is positive. Zero impact
// costs exactly zero.
//
// This is called once per accepted transition in the DP's inner loop, so it
// must stay pure and allocation-free.
func StateTransitionCost(netGridImpactKWh, tariffImport, tariffExport float64) float64 {
	if netGridImpactKWh > 0 {
		return netGridImpactKWh * tariffImport
	}
	if netGridImpactKWh < 0 {
		return netGridImpactKWh * tariffExport
	}
	return 0
}

// IntervalCost prices a net grid impact held in W for an interval of the
// given length.
func IntervalCost(netGridImpactW, intervalHours, tariffImport, tariffExport float64) float64 {
	netGridImpactKWh := netGridImpactW * intervalHours / 1000.0
	return StateTransitionCost(netGridImpactKWh, tariffImport, tariffExport)
}
