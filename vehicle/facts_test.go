package vehicle

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/autoaudit/estimator/brand"
)

var now2025 = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func validFacts() Facts {
	return Facts{
		Year:         2015,
		Mileage:      65000,
		Fuel:         FuelDiesel,
		Transmission: TransmissionAutomatic,
		TimingType:   TimingBelt,
		Make:         "Ford",
	}
}

func TestValidate(t *testing.T) {
	price := func(p float64) *float64 { return &p }

	testCases := []struct {
		name    string
		mutate  func(f *Facts)
		wantErr error
	}{
		{"Valid", func(f *Facts) {}, nil},
		{"Oldest year", func(f *Facts) { f.Year = MinYear }, nil},
		{"Current year", func(f *Facts) { f.Year = 2025 }, nil},
		{"Year too old", func(f *Facts) { f.Year = 1989 }, ErrInvalidYear},
		{"Year in future", func(f *Facts) { f.Year = 2026 }, ErrInvalidYear},
		{"Zero mileage", func(f *Facts) { f.Mileage = 0 }, nil},
		{"Max mileage", func(f *Facts) { f.Mileage = MaxMileage }, nil},
		{"Negative mileage", func(f *Facts) { f.Mileage = -1 }, ErrInvalidMileage},
		{"Mileage too high", func(f *Facts) { f.Mileage = MaxMileage + 1 }, ErrInvalidMileage},
		{"Unknown fuel", func(f *Facts) { f.Fuel = "lpg" }, ErrInvalidFuel},
		{"Unknown transmission", func(f *Facts) { f.Transmission = "sequential" }, ErrInvalidTransmission},
		{"Unknown timing", func(f *Facts) { f.TimingType = "gear" }, ErrInvalidTimingType},
		{"Asking price", func(f *Facts) { f.AskingPrice = price(7995) }, nil},
		{"Negative asking price", func(f *Facts) { f.AskingPrice = price(-1) }, ErrInvalidAskingPrice},
		{"NaN asking price", func(f *Facts) { f.AskingPrice = price(math.NaN()) }, ErrInvalidAskingPrice},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := validFacts()
			tc.mutate(&f)

			err := f.Validate(now2025)
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestDerive(t *testing.T) {
	testCases := []struct {
		name      string
		year      int
		mileage   int
		make      string
		clock     Clock
		wantAge   int
		wantMiles int
		wantTier  brand.Tier
	}{
		{"Ten years old", 2015, 65000, "Ford", YearClock(2025), 10, 65000, brand.TierMass},
		{"Brand new", 2025, 10, "", YearClock(2025), 0, 10, brand.TierMass},
		{"Age clamped low", 2026, 0, "", YearClock(2025), 0, 0, brand.TierMass},
		{"Age clamped high", 1960, 0, "", YearClock(2025), MaxAge, 0, brand.TierMass},
		{"Miles clamped high", 2015, 900000, "", YearClock(2025), 10, MaxMileage, brand.TierMass},
		{"Miles clamped low", 2015, -50, "", YearClock(2025), 10, 0, brand.TierMass},
		{"Premium make", 2020, 30000, "Audi", YearClock(2025), 5, 30000, brand.TierPremium},
		{"Fixed clock", 2020, 30000, "", FixedClock(time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC)), 4, 30000, brand.TierMass},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := validFacts()
			f.Year, f.Mileage, f.Make = tc.year, tc.mileage, tc.make

			d := f.Derive(tc.clock)
			if d.Age != tc.wantAge {
				t.Errorf("Age = %d, want %d", d.Age, tc.wantAge)
			}
			if d.Miles != tc.wantMiles {
				t.Errorf("Miles = %d, want %d", d.Miles, tc.wantMiles)
			}
			if d.BrandTier != tc.wantTier {
				t.Errorf("BrandTier = %s, want %s", d.BrandTier, tc.wantTier)
			}
			if d.BrandMultiplier != tc.wantTier.Multiplier() {
				t.Errorf("BrandMultiplier = %v, want %v", d.BrandMultiplier, tc.wantTier.Multiplier())
			}
			if d.Fuel != f.Fuel || d.Transmission != f.Transmission || d.TimingType != f.TimingType {
				t.Errorf("enum facts not carried over: %+v", d)
			}
		})
	}
}

func TestParseFuel(t *testing.T) {
	testCases := []struct {
		in   string
		want Fuel
		ok   bool
	}{
		{"petrol", FuelPetrol, true},
		{" Diesel ", FuelDiesel, true},
		{"HYBRID", FuelHybrid, true},
		{"ev", FuelEV, true},
		{"Electric", FuelEV, true},
		{"gasoline", FuelPetrol, true},
		{"", "", false},
		{"hydrogen", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFuel(tc.in)
			if tc.ok != (err == nil) {
				t.Fatalf("ParseFuel(%q) error = %v, want ok=%v", tc.in, err, tc.ok)
			}
			if err != nil && !errors.Is(err, ErrInvalidFuel) {
				t.Errorf("ParseFuel(%q) error should wrap ErrInvalidFuel, got %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseFuel(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseTransmission(t *testing.T) {
	testCases := []struct {
		in   string
		want Transmission
		ok   bool
	}{
		{"manual", TransmissionManual, true},
		{"Automatic", TransmissionAutomatic, true},
		{"auto", TransmissionAutomatic, true},
		{"CVT", TransmissionCVT, true},
		{"dct", TransmissionDCT, true},
		{"", "", false},
		{"semi", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTransmission(tc.in)
			if tc.ok != (err == nil) {
				t.Fatalf("ParseTransmission(%q) error = %v, want ok=%v", tc.in, err, tc.ok)
			}
			if got != tc.want {
				t.Errorf("ParseTransmission(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseTimingType(t *testing.T) {
	testCases := []struct {
		in   string
		want TimingType
		ok   bool
	}{
		{"", TimingUnknown, true},
		{"unknown", TimingUnknown, true},
		{"belt", TimingBelt, true},
		{"Cambelt", TimingBelt, true},
		{"cam belt", TimingBelt, true},
		{"timing-belt", TimingBelt, true},
		{"chain", TimingChain, true},
		{"Timing Chain", TimingChain, true},
		{"gears", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimingType(tc.in)
			if tc.ok != (err == nil) {
				t.Fatalf("ParseTimingType(%q) error = %v, want ok=%v", tc.in, err, tc.ok)
			}
			if got != tc.want {
				t.Errorf("ParseTimingType(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestYearClock(t *testing.T) {
	if y := YearClock(2025).Now().Year(); y != 2025 {
		t.Errorf("YearClock(2025).Now().Year() = %d, want 2025", y)
	}
}
