package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/autoaudit/estimator/rules"
)

func item(id string, low, high, weight int) rules.PricedItem {
	return rules.PricedItem{
		ID:         id,
		Label:      id + " label",
		CostLow:    low,
		CostHigh:   high,
		WhyFlagged: id + " reason",
		Weight:     weight,
	}
}

func TestClassifyRisk(t *testing.T) {
	testCases := []struct {
		exposureHigh int
		want         RiskLevel
	}{
		{0, RiskLow},
		{890, RiskLow},
		{900, RiskMedium},
		{1790, RiskMedium},
		{1800, RiskHigh},
		{25000, RiskHigh},
	}

	for _, tc := range testCases {
		if got := ClassifyRisk(tc.exposureHigh); got != tc.want {
			t.Errorf("ClassifyRisk(%d) = %s, want %s", tc.exposureHigh, got, tc.want)
		}
	}
}

// TestClassifyRisk_Monotonic verifies a higher exposure never lowers the risk level
func TestClassifyRisk_Monotonic(t *testing.T) {
	rank := map[RiskLevel]int{RiskLow: 0, RiskMedium: 1, RiskHigh: 2}
	prev := RiskLow
	for e := 0; e <= 5000; e += 10 {
		got := ClassifyRisk(e)
		if rank[got] < rank[prev] {
			t.Fatalf("risk dropped from %s to %s at exposure %d", prev, got, e)
		}
		prev = got
	}
}

func TestSuggestReduction(t *testing.T) {
	testCases := []struct {
		name         string
		exposureHigh int
		want         int
	}{
		{"Zero exposure uses floor", 0, 150},
		{"Small exposure uses floor", 120, 150},
		{"Just above floor", 260, 160},
		{"Rounded to nearest ten", 1770, 1060},
		{"Large exposure", 5320, 3190},
		{"Ceiling", 40000, 10000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SuggestReduction(tc.exposureHigh); got != tc.want {
				t.Errorf("SuggestReduction(%d) = %d, want %d", tc.exposureHigh, got, tc.want)
			}
		})
	}
}

func TestPrimaryDrivers(t *testing.T) {
	items := []rules.PricedItem{
		item("timing_belt", 450, 900, 10),
		item("gearbox_service", 250, 450, 4),
		item("brake_fluid", 60, 120, 3),
		item("oil_service", 84, 154, 3),
		item("brakes", 75, 150, 6),
	}

	got := PrimaryDrivers(items, MaxPrimaryDrivers)
	want := []Driver{
		{Label: "timing_belt label", ReasonShort: "timing_belt reason"},
		{Label: "brakes label", ReasonShort: "brakes reason"},
		{Label: "gearbox_service label", ReasonShort: "gearbox_service reason"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PrimaryDrivers() mismatch (-want +got):\n%s", diff)
	}

	// Input order is untouched
	if items[1].ID != "gearbox_service" {
		t.Error("PrimaryDrivers() should not reorder its input")
	}
}

// TestPrimaryDrivers_TiesKeepCatalogOrder verifies equal weights are not shuffled
func TestPrimaryDrivers_TiesKeepCatalogOrder(t *testing.T) {
	items := []rules.PricedItem{
		item("brake_fluid", 60, 120, 3),
		item("spark_plugs", 120, 300, 3),
		item("oil_service", 84, 154, 3),
		item("service_history", 0, 0, 1),
		item("extra", 10, 20, 3),
	}

	for i := 0; i < 20; i++ {
		got := PrimaryDrivers(items, 3)
		labels := []string{got[0].Label, got[1].Label, got[2].Label}
		want := []string{"brake_fluid label", "spark_plugs label", "oil_service label"}
		if diff := cmp.Diff(want, labels); diff != "" {
			t.Fatalf("run %d: tie order mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestPrimaryDrivers_FewerThanLimit(t *testing.T) {
	got := PrimaryDrivers([]rules.PricedItem{item("service_history", 0, 0, 1)}, MaxPrimaryDrivers)
	if len(got) != 1 {
		t.Errorf("PrimaryDrivers() returned %d drivers, want 1", len(got))
	}

	if got := PrimaryDrivers(nil, MaxPrimaryDrivers); len(got) != 0 {
		t.Errorf("PrimaryDrivers(nil) returned %d drivers, want 0", len(got))
	}
}

func TestAggregate(t *testing.T) {
	items := []rules.PricedItem{
		item("timing_belt", 450, 900, 10),
		item("gearbox_service", 250, 450, 4),
		item("brake_fluid", 60, 120, 3),
		item("oil_service", 84, 154, 3),
		item("brakes", 75, 150, 6),
	}

	s := Aggregate(items)
	if s.ExposureLow != 920 {
		t.Errorf("ExposureLow = %d, want 920", s.ExposureLow)
	}
	if s.ExposureHigh != 1770 {
		t.Errorf("ExposureHigh = %d, want 1770", s.ExposureHigh)
	}
	if s.RiskLevel != RiskMedium {
		t.Errorf("RiskLevel = %s, want %s", s.RiskLevel, RiskMedium)
	}
	if s.NegotiationSuggested != 1060 {
		t.Errorf("NegotiationSuggested = %d, want 1060", s.NegotiationSuggested)
	}
	if len(s.PrimaryDrivers) != 3 {
		t.Errorf("PrimaryDrivers has %d entries, want 3", len(s.PrimaryDrivers))
	}
}

func TestRoundTo(t *testing.T) {
	testCases := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{4, 0},
		{5, 10},
		{919, 920},
		{1774, 1770},
		{1062, 1060},
		{1065, 1070},
	}

	for _, tc := range testCases {
		if got := roundTo(tc.in, 10); got != tc.want {
			t.Errorf("roundTo(%v, 10) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatGBP(t *testing.T) {
	testCases := []struct {
		pounds int
		want   string
	}{
		{150, "£150"},
		{1060, "£1,060"},
		{10000, "£10,000"},
	}

	for _, tc := range testCases {
		if got := FormatGBP(tc.pounds); got != tc.want {
			t.Errorf("FormatGBP(%d) = %q, want %q", tc.pounds, got, tc.want)
		}
	}
}
