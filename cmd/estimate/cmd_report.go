package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/autoaudit/estimator/report"
	"github.com/autoaudit/estimator/rules"
	"github.com/autoaudit/estimator/vehicle"
)

// vehicleFlags are shared by the report and explain commands
type vehicleFlags struct {
	year         int
	mileage      int
	fuel         string
	transmission string
	timing       string
	make         string
	askingPrice  float64
	currentYear  int
}

func (v *vehicleFlags) register(f *pflag.FlagSet) {
	f.IntVar(&v.year, "year", 0, "Year of manufacture (required)")
	f.IntVar(&v.mileage, "mileage", -1, "Odometer reading in miles (required)")
	f.StringVar(&v.fuel, "fuel", "petrol", "Fuel type: petrol, diesel, hybrid, ev")
	f.StringVar(&v.transmission, "transmission", "manual", "Transmission: manual, automatic, cvt, dct")
	f.StringVar(&v.timing, "timing", "unknown", "Timing drive: belt, chain, unknown")
	f.StringVar(&v.make, "make", "", "Manufacturer, e.g. Ford")
	f.Float64Var(&v.askingPrice, "asking-price", 0, "Seller's asking price")
	f.IntVar(&v.currentYear, "current-year", 0, "Override the current year (for reproducible output)")
}

func (v *vehicleFlags) clock() vehicle.Clock {
	if v.currentYear > 0 {
		return vehicle.YearClock(v.currentYear)
	}
	return vehicle.SystemClock{}
}

// facts parses and validates the flags the same way the HTTP API does
func (v *vehicleFlags) facts(cmd *cobra.Command, clock vehicle.Clock) (vehicle.Facts, error) {
	var price *float64
	if cmd.Flags().Changed("asking-price") {
		p := v.askingPrice
		price = &p
	}
	return buildFacts(v.year, v.mileage, v.fuel, v.transmission, v.timing, v.make, price, clock)
}

func buildFacts(year, mileage int, fuel, transmission, timing, carMake string, askingPrice *float64, clock vehicle.Clock) (vehicle.Facts, error) {
	f, err := vehicle.ParseFuel(fuel)
	if err != nil {
		return vehicle.Facts{}, err
	}
	trans, err := vehicle.ParseTransmission(transmission)
	if err != nil {
		return vehicle.Facts{}, err
	}
	tt, err := vehicle.ParseTimingType(timing)
	if err != nil {
		return vehicle.Facts{}, err
	}

	facts := vehicle.Facts{
		Year:         year,
		Mileage:      mileage,
		Fuel:         f,
		Transmission: trans,
		TimingType:   tt,
		AskingPrice:  askingPrice,
		Make:         carMake,
	}
	if err := facts.Validate(clock.Now()); err != nil {
		return vehicle.Facts{}, err
	}
	return facts, nil
}

func newReportCmd() *cobra.Command {
	var (
		vf   vehicleFlags
		full bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the preview (or full) report payload for a vehicle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := engineFor(cmd)
			if err != nil {
				return err
			}
			clock := vf.clock()
			facts, err := vf.facts(cmd, clock)
			if err != nil {
				return err
			}

			preview, fullReport, err := report.NewEstimator(engine, clock).Generate(facts)
			if err != nil {
				return err
			}
			if full {
				return writeJSON(cmd.OutOrStdout(), fullReport)
			}
			return writeJSON(cmd.OutOrStdout(), preview)
		},
	}

	vf.register(cmd.Flags())
	cmd.Flags().BoolVar(&full, "full", false, "Print the full itemised report instead of the preview")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("mileage")
	return cmd
}

func newExplainCmd() *cobra.Command {
	var vf vehicleFlags

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show which band of every rule matched",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := engineFor(cmd)
			if err != nil {
				return err
			}
			clock := vf.clock()
			facts, err := vf.facts(cmd, clock)
			if err != nil {
				return err
			}

			d := facts.Derive(clock)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Age:    %d years\n", d.Age)
			fmt.Fprintf(out, "Miles:  %d\n", d.Miles)
			fmt.Fprintf(out, "Brand:  %s (x%.1f)\n", d.BrandTier, d.BrandMultiplier)
			for _, res := range engine.Explain(d) {
				switch {
				case res.Error != nil:
					fmt.Fprintf(out, "  %-16s error: %v\n", res.RuleID, res.Error)
				case res.Matched:
					fmt.Fprintf(out, "  %-16s band %d (%s)\n", res.RuleID, res.Band, res.Status)
				default:
					fmt.Fprintf(out, "  %-16s -\n", res.RuleID)
				}
			}
			return nil
		},
	}

	vf.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("mileage")
	return cmd
}

func engineFor(cmd *cobra.Command) (*rules.Engine, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		return rules.NewDefaultEngine()
	}
	c, err := rules.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return rules.NewEngine(c)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
