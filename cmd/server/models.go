package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/autoaudit/estimator/vehicle"
)

// CreateReportRequest is the body of POST /api/v1/reports
type CreateReportRequest struct {
	Year         *int     `json:"year" example:"2015"`
	Mileage      *int     `json:"mileage" example:"65000"`
	Fuel         string   `json:"fuel" example:"diesel"`
	Transmission string   `json:"transmission" example:"automatic"`
	TimingType   string   `json:"timing_type,omitempty" example:"belt"`
	AskingPrice  *float64 `json:"asking_price,omitempty" example:"7995"`
	Make         string   `json:"make,omitempty" example:"Ford"`
}

// Facts converts the request into engine input, rejecting malformed fields.
// Range checks happen in vehicle.Facts.Validate.
func (r CreateReportRequest) Facts() (vehicle.Facts, error) {
	if r.Year == nil {
		return vehicle.Facts{}, fmt.Errorf("%w: year is required", vehicle.ErrInvalidYear)
	}
	if r.Mileage == nil {
		return vehicle.Facts{}, fmt.Errorf("%w: mileage is required", vehicle.ErrInvalidMileage)
	}

	fuel, err := vehicle.ParseFuel(r.Fuel)
	if err != nil {
		return vehicle.Facts{}, err
	}
	trans, err := vehicle.ParseTransmission(r.Transmission)
	if err != nil {
		return vehicle.Facts{}, err
	}
	timing, err := vehicle.ParseTimingType(r.TimingType)
	if err != nil {
		return vehicle.Facts{}, err
	}

	return vehicle.Facts{
		Year:         *r.Year,
		Mileage:      *r.Mileage,
		Fuel:         fuel,
		Transmission: trans,
		TimingType:   timing,
		AskingPrice:  r.AskingPrice,
		Make:         r.Make,
	}, nil
}

// CreateReportResponse is returned after a report is stored
type CreateReportResponse struct {
	ReportID string `json:"report_id" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// UnlockRequest is the optional body of POST /api/v1/reports/{id}/unlock
type UnlockRequest struct {
	CheckoutRef string `json:"checkout_ref,omitempty" example:"cs_test_a1b2c3"`
}

// UnlockResponse is returned by the unlock endpoint
type UnlockResponse struct {
	ReportID    string `json:"report_id"`
	IsPaid      bool   `json:"is_paid"`
	Unlocked    bool   `json:"unlocked"`
	CheckoutRef string `json:"checkout_ref,omitempty"`
}

// CheckoutReportResponse maps a payment session back to its report
type CheckoutReportResponse struct {
	ReportID string `json:"report_id"`
	IsPaid   bool   `json:"is_paid"`
}

// PaymentRequiredResponse is returned when the full report is requested before payment
type PaymentRequiredResponse struct {
	Error    string          `json:"error" example:"payment required"`
	ReportID string          `json:"report_id"`
	Preview  json.RawMessage `json:"preview"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid request body"`
	Details string `json:"details,omitempty" example:"invalid mileage: 600000 (must be between 0 and 500000)"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string           `json:"status" example:"healthy"`
	Store    string           `json:"store" example:"postgres"`
	Rules    int              `json:"rules" example:"9"`
	Time     time.Time        `json:"time"`
	Counters map[string]int64 `json:"counters,omitempty"`
}
