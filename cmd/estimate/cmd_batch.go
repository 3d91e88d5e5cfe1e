package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/autoaudit/estimator/report"
	"github.com/autoaudit/estimator/vehicle"
)

// batchVehicle is one entry of a batch file
type batchVehicle struct {
	Year         *int     `yaml:"year"`
	Mileage      *int     `yaml:"mileage"`
	Fuel         string   `yaml:"fuel"`
	Transmission string   `yaml:"transmission"`
	TimingType   string   `yaml:"timing_type"`
	Make         string   `yaml:"make"`
	AskingPrice  *float64 `yaml:"asking_price"`
}

type batchResult struct {
	Index   int             `json:"index"`
	Make    string          `json:"make,omitempty"`
	Year    int             `json:"year,omitempty"`
	Summary *report.Summary `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func readBatch(path string) ([]batchVehicle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	var entries []batchVehicle
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse batch file %s: %w", path, err)
	}
	return entries, nil
}

func newBatchCmd() *cobra.Command {
	var (
		workers     int
		currentYear int
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Estimate every vehicle in a YAML list",
		Long: `Reads a YAML list of vehicles (year, mileage, fuel, transmission,
timing_type, make, asking_price) and prints one summary per entry, in input
order. Entries that fail validation carry an error instead of a summary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readBatch(args[0])
			if err != nil {
				return err
			}
			engine, err := engineFor(cmd)
			if err != nil {
				return err
			}

			var clock vehicle.Clock = vehicle.SystemClock{}
			if currentYear > 0 {
				clock = vehicle.YearClock(currentYear)
			}
			estimator := report.NewEstimator(engine, clock)

			if workers < 1 {
				workers = 1
			}
			results := make([]batchResult, len(entries))

			g, gCtx := errgroup.WithContext(cmd.Context())
			g.SetLimit(workers)
			for i, entry := range entries {
				i, entry := i, entry
				g.Go(func() error {
					if err := gCtx.Err(); err != nil {
						return err
					}
					results[i] = estimateEntry(estimator, clock, i, entry)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Number of vehicles estimated concurrently")
	cmd.Flags().IntVar(&currentYear, "current-year", 0, "Override the current year (for reproducible output)")
	return cmd
}

func estimateEntry(estimator *report.Estimator, clock vehicle.Clock, i int, entry batchVehicle) batchResult {
	res := batchResult{Index: i, Make: entry.Make}
	if entry.Year == nil {
		res.Error = fmt.Errorf("%w: year is required", vehicle.ErrInvalidYear).Error()
		return res
	}
	res.Year = *entry.Year
	if entry.Mileage == nil {
		res.Error = fmt.Errorf("%w: mileage is required", vehicle.ErrInvalidMileage).Error()
		return res
	}

	fuel, trans, timing := entry.Fuel, entry.Transmission, entry.TimingType
	if fuel == "" {
		fuel = "petrol"
	}
	if trans == "" {
		trans = "manual"
	}
	if timing == "" {
		timing = "unknown"
	}

	facts, err := buildFacts(*entry.Year, *entry.Mileage, fuel, trans, timing, entry.Make, entry.AskingPrice, clock)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	preview, _, err := estimator.Generate(facts)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	summary := preview.Summary
	res.Summary = &summary
	return res
}
