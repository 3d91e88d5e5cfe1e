package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/autoaudit/estimator/brand"
	"github.com/autoaudit/estimator/rules"
)

// Disclaimer is attached to every full report
const Disclaimer = "AutoAudit provides cost guidance based on typical UK maintenance intervals and " +
	"independent garage pricing. It is not a mechanical inspection and does not diagnose faults " +
	"or guarantee required repairs."

const (
	scriptTemplate = "Based on the vehicle’s age and mileage, I’d need to budget roughly %s for potential " +
		"near-term maintenance unless there’s documented proof these items were recently done. " +
		"I’m happy to proceed at £X."
	negotiationTip = "Set £X as asking price minus the suggested reduction."
)

// Reports are written for a UK audience only
var gbp = message.NewPrinter(language.BritishEnglish)

// Preview is the free payload: the summary only
type Preview struct {
	Summary Summary `json:"summary"`
}

// Full is the paid payload
type Full struct {
	Summary     Summary            `json:"summary"`
	Vehicle     VehicleProfile     `json:"vehicle"`
	Items       []rules.PricedItem `json:"items"`
	Negotiation Negotiation        `json:"negotiation"`
	Disclaimer  DisclaimerBlock    `json:"disclaimer"`
}

// VehicleProfile echoes the derived facts the estimate was based on
type VehicleProfile struct {
	Age             int        `json:"age"`
	Miles           int        `json:"miles"`
	BrandTier       brand.Tier `json:"brand_tier"`
	BrandMultiplier float64    `json:"brand_multiplier"`
}

// Negotiation is the talking-points block of the full report
type Negotiation struct {
	SuggestedReduction int    `json:"suggested_reduction"`
	Script             string `json:"script"`
	Tip                string `json:"tip"`
}

// DisclaimerBlock wraps the disclaimer text
type DisclaimerBlock struct {
	Text string `json:"text"`
}

// NewNegotiation fills the script template with the suggested figure
func NewNegotiation(suggested int) Negotiation {
	return Negotiation{
		SuggestedReduction: suggested,
		Script:             gbp.Sprintf(scriptTemplate, FormatGBP(suggested)),
		Tip:                negotiationTip,
	}
}

// FormatGBP renders whole pounds with thousands separators, e.g. £1,060
func FormatGBP(pounds int) string {
	return gbp.Sprintf("£%d", pounds)
}
