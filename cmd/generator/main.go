package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

// generator emits random patent application records as JSON lines. The
// output feeds the in-memory searcher for local development and demos.

var (
	subjects = map[string][]string{
		"Battery":       {"Electrode", "Charging Controller", "Thermal Housing", "Cell Separator", "Management System"},
		"Solar":         {"Panel Mounting Bracket", "Cell Array", "Tracking Actuator", "Inverter Circuit"},
		"Hydraulic":     {"Valve Assembly", "Pump Housing", "Pressure Regulator", "Actuator Seal"},
		"Optical":       {"Lens Assembly", "Fiber Coupler", "Sensor Array", "Waveguide"},
		"Antenna":       {"Feed Network", "Radome Housing", "Phase Shifter", "Array Element"},
		"Semiconductor": {"Gate Structure", "Interconnect Layer", "Package Substrate", "Etch Process"},
	}

	prefixes = []string{
		"Improved", "Modular", "Compact", "High-Efficiency", "Self-Calibrating", "Low-Power", "Reinforced",
	}

	inventors = []string{
		"Chen, Wei", "Patel, Anika", "Garcia, Luis", "Kim, Soo-Jin", "Okafor, Chidi",
		"Muller, Hans", "Tanaka, Yuki", "Johnson, Marcus", "Silva, Beatriz", "Novak, Petra",
	}

	statuses = []string{
		"Patented Case", "Docketed New Case - Ready for Examination", "Non Final Action Mailed",
		"Abandoned  --  Failure to Respond to an Office Action", "Notice of Allowance Mailed -- Application Received in Office of Publications",
	}
)

func randomRecord() map[string]interface{} {
	subjectKeys := make([]string, 0, len(subjects))
	for s := range subjects {
		subjectKeys = append(subjectKeys, s)
	}

	subject := subjectKeys[rand.IntN(len(subjectKeys))]
	parts := subjects[subject]
	title := fmt.Sprintf("%s %s %s", prefixes[rand.IntN(len(prefixes))], subject, parts[rand.IntN(len(parts))])

	year := rand.IntN(10) + 2015 // 2015-2024
	filingDate := fmt.Sprintf("%d-%02d-%02d", year, rand.IntN(12)+1, rand.IntN(28)+1)
	appNumber := fmt.Sprintf("%d", 17000000+rand.IntN(900000))

	return map[string]interface{}{
		"applicationNumberText": appNumber,
		"inventionTitle":        title,
		"inventorNameText":      []string{inventors[rand.IntN(len(inventors))]},
		"applicationMetaData": map[string]interface{}{
			"filingDate":                       filingDate,
			"applicationTypeLabelName":         "Utility",
			"applicationStatusDescriptionText": statuses[rand.IntN(len(statuses))],
		},
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	count := c.Int("count")
	output := c.String("output")

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	slog.InfoContext(ctx, "Starting patent record generator", "count", count, "output", output)

	enc := json.NewEncoder(out)
	for i := 0; i < count; i++ {
		record := randomRecord()
		line := map[string]interface{}{
			"id":     ksuid.New().String(),
			"record": record,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i+1, err)
		}
	}

	slog.InfoContext(ctx, "Successfully generated records", "count", count)
	return nil
}

func main() {
	// Configure JSON logging for AWS environments
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	app := &cli.App{
		Name:  "generator",
		Usage: "Generate random patent application records as JSON lines",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Number of records to generate",
				Value:   1,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path; defaults to stdout",
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
