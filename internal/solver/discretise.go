package solver

import "math"

// discretisationPrecision is the decimal precision used when checking SOC
// values against the grid step. Two decimal places suffice for any step down
// to 0.01%.
const discretisationPrecision = 2

// fixDecimal rounds x to the given number of decimal places, papering over
// float noise like 10.800000001.
func fixDecimal(x float64, precision int) float64 {
	f := math.Pow(10, float64(precision))
	return math.Round(x*f) / f
}

// DiscretisationOffset reports how far stateOfCharge sits from the nearest
// lower point of the grid defined by socInterval. A SOC of 52.8 on a 0.5
// grid has an offset of 0.3; a SOC already on the grid has an offset of 0.
func DiscretisationOffset(stateOfCharge, socInterval float64) float64 {
	remainder := fixDecimal(math.Mod(stateOfCharge, socInterval), discretisationPrecision)
	if fixDecimal(remainder-socInterval, discretisationPrecision) == 0 {
		return 0
	}
	return remainder
}
