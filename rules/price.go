package rules

import "math"

// Price applies the item and brand multipliers to each candidate.
// Both bounds are scaled identically, so CostLow <= CostHigh holds whenever BaseLow <= BaseHigh.
func Price(items []CandidateItem, brandMultiplier float64) []PricedItem {
	priced := make([]PricedItem, 0, len(items))
	for _, it := range items {
		priced = append(priced, PricedItem{
			ID:           it.ID,
			Label:        it.Label,
			Category:     it.Category,
			Status:       it.Status,
			CostLow:      scale(it.BaseLow, it.Multiplier, brandMultiplier),
			CostHigh:     scale(it.BaseHigh, it.Multiplier, brandMultiplier),
			WhyFlagged:   it.WhyFlagged,
			WhyItMatters: it.WhyItMatters,
			Questions:    it.Questions,
			RedFlags:     it.RedFlags,
			Weight:       it.Weight,
		})
	}
	return priced
}

func scale(base, itemMultiplier, brandMultiplier float64) int {
	return int(math.Round(base * itemMultiplier * brandMultiplier))
}
