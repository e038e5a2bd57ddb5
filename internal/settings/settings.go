// Package settings holds the user-tunable GanbarOmeter parameters and the
// stores that persist them.
package settings

import (
	"math"
	"time"

	"ganbarometer/internal/stats"
)

// CurrentVersion tags the settings schema. Stored settings carrying any other
// version are replaced wholesale with Defaults.
const CurrentVersion = "3.0"

// MaxInterval caps the lookback window at one year.
const MaxInterval = 365 * 24

// Settings is an immutable snapshot of the tunable parameters.
type Settings struct {
	Interval             int     `json:"interval" toml:"interval" validate:"interval"`
	SessionIntervalMax   float64 `json:"sessionIntervalMax" toml:"session_interval_max" validate:"gte=1,lte=10"`
	NormalApprenticeQty  int     `json:"normalApprenticeQty" toml:"normal_apprentice_qty" validate:"gte=30,lte=500"`
	NewKanjiWeighting    float64 `json:"newKanjiWeighting" toml:"new_kanji_weighting" validate:"gte=0,lte=0.1"`
	NormalMissPercent    float64 `json:"normalMissPercent" toml:"normal_miss_percent" validate:"gte=0,lte=50"`
	ExtraMissesWeighting float64 `json:"extraMissesWeighting" toml:"extra_misses_weighting" validate:"gte=0,lte=0.1"`
	MaxPace              int     `json:"maxPace" toml:"max_pace" validate:"gte=10,lte=500"`
	BackgroundColor      string  `json:"backgroundColor" toml:"background_color" validate:"iscolor"`
	Debug                bool    `json:"debug" toml:"debug"`
	Version              string  `json:"version" toml:"version" validate:"required"`
}

// Defaults returns the factory settings.
func Defaults() Settings {
	return Settings{
		Interval:             72,
		SessionIntervalMax:   10,
		NormalApprenticeQty:  100,
		NewKanjiWeighting:    0.05,
		NormalMissPercent:    20,
		ExtraMissesWeighting: 0.03,
		MaxPace:              300,
		BackgroundColor:      "#f4f4f4",
		Debug:                false,
		Version:              CurrentVersion,
	}
}

// Lookback returns the review window as a duration.
func (s Settings) Lookback() time.Duration {
	return time.Duration(s.Interval) * time.Hour
}

// SessionGap returns the session-boundary threshold as a duration.
func (s Settings) SessionGap() time.Duration {
	return time.Duration(s.SessionIntervalMax * float64(time.Minute))
}

// Params extracts the scoring weights for the metrics engine.
func (s Settings) Params() stats.Params {
	return stats.Params{
		NormalApprenticeQty:  s.NormalApprenticeQty,
		NewKanjiWeighting:    s.NewKanjiWeighting,
		NormalMissPercent:    s.NormalMissPercent,
		ExtraMissesWeighting: s.ExtraMissesWeighting,
		MaxPace:              s.MaxPace,
	}
}

// Clamp pulls every out-of-range field back into bounds and reports which
// fields were adjusted.
func (s Settings) Clamp() (Settings, []string) {
	var adjusted []string
	def := Defaults()

	if !validInterval(s.Interval) {
		switch {
		case s.Interval < 1:
			s.Interval = 1
		case s.Interval > MaxInterval:
			s.Interval = MaxInterval
		default:
			s.Interval = s.Interval / 24 * 24
		}
		adjusted = append(adjusted, "interval")
	}

	clampFloat := func(name string, v *float64, lo, hi, fallback float64) {
		if math.IsNaN(*v) {
			*v = fallback
			adjusted = append(adjusted, name)
			return
		}
		if *v < lo || *v > hi {
			*v = min(max(*v, lo), hi)
			adjusted = append(adjusted, name)
		}
	}
	clampInt := func(name string, v *int, lo, hi int) {
		if *v < lo || *v > hi {
			*v = min(max(*v, lo), hi)
			adjusted = append(adjusted, name)
		}
	}

	clampFloat("sessionIntervalMax", &s.SessionIntervalMax, 1, 10, def.SessionIntervalMax)
	clampInt("normalApprenticeQty", &s.NormalApprenticeQty, 30, 500)
	clampFloat("newKanjiWeighting", &s.NewKanjiWeighting, 0, 0.1, def.NewKanjiWeighting)
	clampFloat("normalMissPercent", &s.NormalMissPercent, 0, 50, def.NormalMissPercent)
	clampFloat("extraMissesWeighting", &s.ExtraMissesWeighting, 0, 0.1, def.ExtraMissesWeighting)
	clampInt("maxPace", &s.MaxPace, 10, 500)

	if GetValidator().Var(s.BackgroundColor, "iscolor") != nil {
		s.BackgroundColor = def.BackgroundColor
		adjusted = append(adjusted, "backgroundColor")
	}

	return s, adjusted
}

// validInterval accepts 1-168 hours or a whole number of days up to MaxInterval.
func validInterval(hours int) bool {
	if hours >= 1 && hours <= 168 {
		return true
	}
	return hours > 0 && hours <= MaxInterval && hours%24 == 0
}
