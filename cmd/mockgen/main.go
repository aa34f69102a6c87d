package main

import (
	"flag"
	"fmt"
	"os"

	"shelf-dcs/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, crowded, skewed")
	distribution := flag.String("distribution", "uniform", "Sales distribution: uniform, weibull")
	outDir := flag.String("out", "./.cache", "Output directory for mock files")
	fixtures := flag.Int("fixtures", 6, "Number of gondolas to generate")
	seed := flag.Uint64("seed", 1, "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Fixtures:     *fixtures,
		PeriodDays:   49,
		Seed:         *seed,
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Fixtures: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Fixtures, *outDir)

	snap := engine.Generate(cfg)
	if err := engine.Save(*outDir, snap, engine.Candidates(cfg.Seed, 4)); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done: %d products.\n", snap.ProductCount())
}
