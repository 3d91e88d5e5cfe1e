package rules

import "testing"

func TestPrice(t *testing.T) {
	testCases := []struct {
		name            string
		baseLow         float64
		baseHigh        float64
		itemMultiplier  float64
		brandMultiplier float64
		wantLow         int
		wantHigh        int
	}{
		{"Full confidence, mass tier", 450, 900, 1.0, 1.0, 450, 900},
		{"Verification band", 120, 220, 0.7, 1.0, 84, 154},
		{"Weak band", 300, 600, 0.25, 1.0, 75, 150},
		{"Budget tier", 60, 120, 1.0, 0.9, 54, 108},
		{"Premium half band", 250, 450, 0.5, 1.4, 175, 315},
		{"Performance tier", 120, 220, 0.7, 3.0, 252, 462},
		{"Rounds half away from zero", 5, 15, 0.5, 1.0, 3, 8},
		{"Zero cost", 0, 0, 1.0, 3.0, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			items := Price([]CandidateItem{{
				ID:         "item",
				BaseLow:    tc.baseLow,
				BaseHigh:   tc.baseHigh,
				Multiplier: tc.itemMultiplier,
				Weight:     3,
			}}, tc.brandMultiplier)

			if len(items) != 1 {
				t.Fatalf("Price() returned %d items, want 1", len(items))
			}
			got := items[0]
			if got.CostLow != tc.wantLow || got.CostHigh != tc.wantHigh {
				t.Errorf("cost = %d-%d, want %d-%d", got.CostLow, got.CostHigh, tc.wantLow, tc.wantHigh)
			}
			if got.CostLow > got.CostHigh {
				t.Errorf("cost_low %d exceeds cost_high %d", got.CostLow, got.CostHigh)
			}
			if got.Weight != 3 {
				t.Errorf("weight = %d, want 3", got.Weight)
			}
		})
	}
}

func TestPrice_KeepsOrder(t *testing.T) {
	items := Price([]CandidateItem{
		{ID: "a", Multiplier: 1},
		{ID: "b", Multiplier: 1},
		{ID: "c", Multiplier: 1},
	}, 1.0)

	for i, id := range []string{"a", "b", "c"} {
		if items[i].ID != id {
			t.Errorf("items[%d] = %s, want %s", i, items[i].ID, id)
		}
	}
}
