package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ganbarometer/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "steady", "Scenario to generate: steady, cram, lapsed")
	distribution := flag.String("distribution", "uniform", "Answer latency distribution: uniform, weibull")
	out := flag.String("out", "./.cache/mock-reviews.jsonl", "Output JSONL file")
	days := flag.Int("days", 7, "Number of days of history")
	perDay := flag.Int("per-day", 150, "Reviews per active day")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Days:         *days,
		PerDay:       *perDay,
		Seed:         *seed,
		Now:          time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Days: %d, Per day: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Days, cfg.PerDay, *out)

	events := engine.Generate(cfg)
	if err := engine.Save(*out, events); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done. %d reviews written.\n", len(events))
}
