package report

import (
	"cmp"
	"math"
	"slices"

	"github.com/autoaudit/estimator/rules"
)

// RiskLevel is the overall classification shown on the preview
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Classification and negotiation constants
const (
	HighRiskExposure   = 1800
	MediumRiskExposure = 900

	MaxPrimaryDrivers = 3

	NegotiationFactor = 0.6
	NegotiationFloor  = 150
	NegotiationCeil   = 10000

	roundingStep = 10
)

// Driver is a primary driver reduced to what the free preview shows
type Driver struct {
	Label       string `json:"label"`
	ReasonShort string `json:"reason_short"`
}

// Summary is the aggregate over all priced items
type Summary struct {
	RiskLevel            RiskLevel `json:"risk_level"`
	ExposureLow          int       `json:"exposure_low"`
	ExposureHigh         int       `json:"exposure_high"`
	NegotiationSuggested int       `json:"negotiation_suggested"`
	PrimaryDrivers       []Driver  `json:"primary_drivers"`
}

// Aggregate sums the items into an exposure range and derives the rest of the summary
func Aggregate(items []rules.PricedItem) Summary {
	var low, high int
	for _, it := range items {
		low += it.CostLow
		high += it.CostHigh
	}

	exposureLow := roundTo(float64(low), roundingStep)
	exposureHigh := roundTo(float64(high), roundingStep)

	return Summary{
		RiskLevel:            ClassifyRisk(exposureHigh),
		ExposureLow:          exposureLow,
		ExposureHigh:         exposureHigh,
		NegotiationSuggested: SuggestReduction(exposureHigh),
		PrimaryDrivers:       PrimaryDrivers(items, MaxPrimaryDrivers),
	}
}

// ClassifyRisk is a step function of the upper exposure bound
func ClassifyRisk(exposureHigh int) RiskLevel {
	switch {
	case exposureHigh >= HighRiskExposure:
		return RiskHigh
	case exposureHigh >= MediumRiskExposure:
		return RiskMedium
	default:
		return RiskLow
	}
}

// SuggestReduction damps the upper exposure bound into a negotiation figure
func SuggestReduction(exposureHigh int) int {
	v := float64(exposureHigh) * NegotiationFactor
	v = math.Max(NegotiationFloor, math.Min(NegotiationCeil, v))
	return roundTo(v, roundingStep)
}

// PrimaryDrivers returns up to n items ordered by descending weight.
// Equal weights keep catalog order.
func PrimaryDrivers(items []rules.PricedItem, n int) []Driver {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b rules.PricedItem) int {
		return cmp.Compare(b.Weight, a.Weight)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	drivers := make([]Driver, 0, len(sorted))
	for _, it := range sorted {
		drivers = append(drivers, Driver{Label: it.Label, ReasonShort: it.WhyFlagged})
	}
	return drivers
}

func roundTo(v float64, step int) int {
	return int(math.Round(v/float64(step))) * step
}
