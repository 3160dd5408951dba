package controller

import "fmt"

// Registry returns fresh instances of every built-in controller, in a
// stable order. Callers get their own instances because Prepare mutates
// controller state.
func Registry() []Controller {
	return []Controller{
		NewDoNothing(),
		NewCharge(),
		NewDischarge(),
		NewSolarSelfConsumption(),
		NewImportTariffOptimisation(),
		NewSpotPriceArbitrageNaive(),
	}
}

// ByName resolves controller names against the registry, preserving the
// requested order. An empty list means all controllers.
func ByName(names []string) ([]Controller, error) {
	all := Registry()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]Controller, len(all))
	for _, c := range all {
		byName[c.Name()] = c
	}
	out := make([]Controller, 0, len(names))
	for _, name := range names {
		c, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown controller: %q", name)
		}
		out = append(out, c)
	}
	return out, nil
}
