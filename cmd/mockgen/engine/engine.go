package engine

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"ganbarometer/internal/review"
)

type GeneratorConfig struct {
	Scenario     string // "steady", "cram" or "lapsed"
	Distribution string // "uniform" or "weibull"
	Days         int
	PerDay       int
	Seed         uint64
	Now          time.Time
}

// Generate produces a chronological synthetic review history ending at cfg.Now.
func Generate(cfg GeneratorConfig) []review.Event {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	var events []review.Event
	id := int64(1)

	for day := cfg.Days - 1; day >= 0; day-- {
		dayStart := cfg.Now.Add(-time.Duration(day+1) * 24 * time.Hour)

		// 1. Decide how many sessions and reviews today
		sessions, reviews, missRate := 2, cfg.PerDay, 0.15
		switch cfg.Scenario {
		case "cram":
			sessions = 1
			if day%3 != 0 {
				reviews = 0
			} else {
				reviews = cfg.PerDay * 3
			}
			missRate = 0.3
		case "lapsed":
			// Nothing in the last third of the window
			if day < cfg.Days/3 {
				reviews = 0
			}
		}
		if reviews == 0 {
			continue
		}

		// 2. Spread reviews over sessions starting at random hours
		perSession := max(1, reviews/sessions)
		for s := 0; s < sessions; s++ {
			t := dayStart.Add(time.Duration(7+s*8+rng.IntN(4)) * time.Hour).
				Add(time.Duration(rng.IntN(60)) * time.Minute)

			for i := 0; i < perSession; i++ {
				t = t.Add(answerLatency(rng, cfg))
				if !t.Before(cfg.Now) {
					break
				}

				e := review.Event{
					ID:               id,
					Timestamp:        t,
					UpdatedAt:        t,
					SubjectID:        int64(1 + rng.IntN(9000)),
					AssignmentID:     int64(100000 + rng.IntN(900000)),
					StartingSRSStage: 1 + rng.IntN(8),
				}
				e.EndingSRSStage = e.StartingSRSStage + 1
				if rng.Float64() < missRate {
					if rng.IntN(2) == 0 {
						e.IncorrectMeaningCount = 1
					} else {
						e.IncorrectReadingCount = 1 + rng.IntN(2)
					}
					e.EndingSRSStage = max(1, e.StartingSRSStage-2)
				}
				events = append(events, e)
				id++
			}
		}
	}

	return events
}

// answerLatency samples the time between two consecutive answers.
func answerLatency(rng *rand.Rand, cfg GeneratorConfig) time.Duration {
	var secs float64
	if cfg.Distribution == "weibull" {
		// Long tail: most answers under 20s, the occasional multi-minute pause
		secs = 2 + weibullSample(rng, 0.9, 12)
	} else {
		secs = 3 + rng.Float64()*25
		if cfg.Scenario == "cram" && rng.Float64() < 0.05 {
			secs += 60 + rng.Float64()*240
		}
	}
	return time.Duration(secs * float64(time.Second))
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes events as a JSONL review file, creating parent directories.
func Save(path string, events []review.Event) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return review.WriteFile(path, events)
}
