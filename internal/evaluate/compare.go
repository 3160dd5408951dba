package evaluate

import "sort"

// RankedResult is a named evaluation summary, used when comparing several
// control approaches over the same scenario.
type RankedResult struct {
	Name      string
	TotalCost float64
	FinalSOC  float64
}

// Rank orders evaluation results ascending by total cost (cheapest first).
func Rank(results map[string]*Result) []RankedResult {
	out := make([]RankedResult, 0, len(results))
	for name, res := range results {
		r := RankedResult{Name: name, TotalCost: res.TotalCost}
		if len(res.Rows) > 0 {
			r.FinalSOC = res.Rows[len(res.Rows)-1].SOCActual
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCost != out[j].TotalCost {
			return out[i].TotalCost < out[j].TotalCost
		}
		return out[i].Name < out[j].Name
	})
	return out
}
