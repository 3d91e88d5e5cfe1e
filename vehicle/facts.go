package vehicle

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/autoaudit/estimator/brand"
)

// Fuel is the vehicle's fuel type
type Fuel string

const (
	FuelPetrol Fuel = "petrol"
	FuelDiesel Fuel = "diesel"
	FuelHybrid Fuel = "hybrid"
	FuelEV     Fuel = "ev"
)

// Transmission is the gearbox type
type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
	TransmissionCVT       Transmission = "cvt"
	TransmissionDCT       Transmission = "dct"
)

// TimingType is how the camshaft is driven
type TimingType string

const (
	TimingBelt    TimingType = "belt"
	TimingChain   TimingType = "chain"
	TimingUnknown TimingType = "unknown"
)

// Accepted input ranges
const (
	MinYear    = 1990
	MinMileage = 0
	MaxMileage = 500000
	MaxAge     = 50
)

var (
	ErrInvalidYear         = errors.New("invalid year")
	ErrInvalidMileage      = errors.New("invalid mileage")
	ErrInvalidFuel         = errors.New("invalid fuel")
	ErrInvalidTransmission = errors.New("invalid transmission")
	ErrInvalidTimingType   = errors.New("invalid timing type")
	ErrInvalidAskingPrice  = errors.New("invalid asking price")
)

// Facts is the input record for one report request.
// It is built once by the caller and never mutated by the engine.
type Facts struct {
	Year         int          `json:"year"`
	Mileage      int          `json:"mileage"`
	Fuel         Fuel         `json:"fuel"`
	Transmission Transmission `json:"transmission"`
	TimingType   TimingType   `json:"timing_type"`

	// AskingPrice is stored with the report but not used for scoring yet
	AskingPrice *float64 `json:"asking_price,omitempty"`
	Make        string   `json:"make,omitempty"`
}

// Derived holds the facts the rule catalog is evaluated against.
// Age and Miles are clamped, the brand tier is resolved from Make.
type Derived struct {
	Age             int          `json:"age"`
	Miles           int          `json:"miles"`
	Fuel            Fuel         `json:"fuel"`
	Transmission    Transmission `json:"transmission"`
	TimingType      TimingType   `json:"timing_type"`
	BrandTier       brand.Tier   `json:"brand_tier"`
	BrandMultiplier float64      `json:"brand_multiplier"`
}

// Validate rejects facts the engine must never see.
// now supplies the upper bound for Year.
func (f Facts) Validate(now time.Time) error {
	if f.Year < MinYear || f.Year > now.Year() {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidYear, f.Year, MinYear, now.Year())
	}
	if f.Mileage < MinMileage || f.Mileage > MaxMileage {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidMileage, f.Mileage, MinMileage, MaxMileage)
	}
	if !f.Fuel.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFuel, f.Fuel)
	}
	if !f.Transmission.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransmission, f.Transmission)
	}
	if !f.TimingType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTimingType, f.TimingType)
	}
	if f.AskingPrice != nil {
		p := *f.AskingPrice
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidAskingPrice, p)
		}
	}
	return nil
}

// Derive computes the derived facts using the clock's calendar year
func (f Facts) Derive(clock Clock) Derived {
	tier, mult := brand.Resolve(f.Make)
	return Derived{
		Age:             clamp(clock.Now().Year()-f.Year, 0, MaxAge),
		Miles:           clamp(f.Mileage, MinMileage, MaxMileage),
		Fuel:            f.Fuel,
		Transmission:    f.Transmission,
		TimingType:      f.TimingType,
		BrandTier:       tier,
		BrandMultiplier: mult,
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// IsValid reports whether the fuel is one of the known values
func (f Fuel) IsValid() bool {
	switch f {
	case FuelPetrol, FuelDiesel, FuelHybrid, FuelEV:
		return true
	}
	return false
}

// IsValid reports whether the transmission is one of the known values
func (t Transmission) IsValid() bool {
	switch t {
	case TransmissionManual, TransmissionAutomatic, TransmissionCVT, TransmissionDCT:
		return true
	}
	return false
}

// IsValid reports whether the timing type is one of the known values
func (t TimingType) IsValid() bool {
	switch t {
	case TimingBelt, TimingChain, TimingUnknown:
		return true
	}
	return false
}

// ParseFuel normalizes user input into a Fuel
func ParseFuel(s string) (Fuel, error) {
	f := Fuel(normalize(s))
	switch f {
	case "electric":
		f = FuelEV
	case "gasoline":
		f = FuelPetrol
	}
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFuel, s)
	}
	return f, nil
}

// ParseTransmission normalizes user input into a Transmission
func ParseTransmission(s string) (Transmission, error) {
	t := Transmission(normalize(s))
	if t == "auto" {
		t = TransmissionAutomatic
	}
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransmission, s)
	}
	return t, nil
}

// ParseTimingType normalizes user input into a TimingType.
// Empty input means the buyer does not know.
func ParseTimingType(s string) (TimingType, error) {
	t := TimingType(normalize(s))
	switch t {
	case "":
		t = TimingUnknown
	case "cambelt", "cam_belt", "timing_belt":
		t = TimingBelt
	case "timing_chain":
		t = TimingChain
	}
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimingType, s)
	}
	return t, nil
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-'
	}), "_")
}
