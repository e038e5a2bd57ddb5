package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Store persists settings under a script id.
type Store interface {
	// Load returns the stored settings, or defaults when nothing is stored.
	// Stored records are decoded as-is; they are never merged with defaults.
	Load(ctx context.Context, id string, defaults Settings) (Settings, error)
	Save(ctx context.Context, id string, s Settings) error
	Close() error
}

// Loaded is the outcome of Resolve.
type Loaded struct {
	Settings Settings
	// Reset is set when stale settings were discarded and replaced with defaults.
	Reset bool
	// Clamped lists fields that were pulled back into range.
	Clamped []string
}

// Notice returns the user-facing message for a reset, or "".
func (l Loaded) Notice() string {
	if !l.Reset {
		return ""
	}
	return fmt.Sprintf("GanbarOmeter settings were reset to defaults for version %s. Please review them with `ganbarometer settings show`.", CurrentVersion)
}

// Resolve loads settings, resetting them to defaults on a version mismatch and
// clamping any out-of-range values.
func Resolve(ctx context.Context, store Store, id string) (Loaded, error) {
	s, err := store.Load(ctx, id, Defaults())
	if err != nil {
		return Loaded{}, fmt.Errorf("loading settings %q: %w", id, err)
	}

	var res Loaded
	if s.Version != CurrentVersion {
		log.Warn().Str("stored", s.Version).Str("current", CurrentVersion).Msg("Stale settings version, resetting to defaults")
		s = Defaults()
		if err := store.Save(ctx, id, s); err != nil {
			return Loaded{}, fmt.Errorf("persisting reset settings: %w", err)
		}
		res.Reset = true
	}

	s, res.Clamped = s.Clamp()
	if len(res.Clamped) > 0 {
		log.Warn().Strs("fields", res.Clamped).Msg("Clamped out-of-range settings")
	}

	if err := s.Validate(); err != nil {
		return Loaded{}, fmt.Errorf("settings %q after clamping: %w", id, err)
	}

	res.Settings = s
	return res, nil
}

// Keys lists the editable setting names in display order.
var Keys = []string{
	"interval",
	"sessionIntervalMax",
	"normalApprenticeQty",
	"newKanjiWeighting",
	"normalMissPercent",
	"extraMissesWeighting",
	"maxPace",
	"backgroundColor",
	"debug",
}

// With returns a copy of s with the named setting parsed from value and
// validated. Out-of-range values are rejected, not clamped.
func (s Settings) With(key, value string) (Settings, error) {
	value = strings.TrimSpace(value)
	var err error

	switch key {
	case "interval":
		s.Interval, err = strconv.Atoi(value)
	case "sessionIntervalMax":
		s.SessionIntervalMax, err = strconv.ParseFloat(value, 64)
	case "normalApprenticeQty":
		s.NormalApprenticeQty, err = strconv.Atoi(value)
	case "newKanjiWeighting":
		s.NewKanjiWeighting, err = strconv.ParseFloat(value, 64)
	case "normalMissPercent":
		s.NormalMissPercent, err = strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
	case "extraMissesWeighting":
		s.ExtraMissesWeighting, err = strconv.ParseFloat(value, 64)
	case "maxPace":
		s.MaxPace, err = strconv.Atoi(value)
	case "backgroundColor":
		s.BackgroundColor = value
	case "debug":
		s.Debug, err = strconv.ParseBool(value)
	default:
		return s, fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	if err != nil {
		return s, fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
