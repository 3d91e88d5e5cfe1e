// Package report turns vehicle facts into the preview and full report payloads.
//
// The pipeline is a single pass: derive facts, evaluate the rule catalog, price
// the fired items with the brand multiplier, then aggregate. It performs no I/O
// and keeps no state between calls, so one Estimator can serve concurrent requests.
package report

import (
	"fmt"

	"github.com/autoaudit/estimator/rules"
	"github.com/autoaudit/estimator/vehicle"
)

// Estimator runs the estimation pipeline
type Estimator struct {
	engine *rules.Engine
	clock  vehicle.Clock
}

// NewEstimator creates an estimator. A nil clock uses the system clock.
func NewEstimator(engine *rules.Engine, clock vehicle.Clock) *Estimator {
	if clock == nil {
		clock = vehicle.SystemClock{}
	}
	return &Estimator{engine: engine, clock: clock}
}

// Clock returns the clock used to derive vehicle age
func (e *Estimator) Clock() vehicle.Clock {
	return e.clock
}

// Generate builds both payloads for already-validated facts.
// An error is returned only if a rule condition fails to evaluate.
func (e *Estimator) Generate(f vehicle.Facts) (*Preview, *Full, error) {
	d := f.Derive(e.clock)

	candidates, err := e.engine.Evaluate(d)
	if err != nil {
		return nil, nil, fmt.Errorf("rule evaluation failed: %w", err)
	}

	items := rules.Price(candidates, d.BrandMultiplier)
	summary := Aggregate(items)

	preview := &Preview{Summary: summary}
	full := &Full{
		Summary: summary,
		Vehicle: VehicleProfile{
			Age:             d.Age,
			Miles:           d.Miles,
			BrandTier:       d.BrandTier,
			BrandMultiplier: d.BrandMultiplier,
		},
		Items:       items,
		Negotiation: NewNegotiation(summary.NegotiationSuggested),
		Disclaimer:  DisclaimerBlock{Text: Disclaimer},
	}

	return preview, full, nil
}
