package commands

import (
	"errors"
	"fmt"

	"ganbarometer/internal/config"
	"ganbarometer/internal/meter"
	"ganbarometer/internal/review"
	"ganbarometer/internal/settings"
	"ganbarometer/internal/wanikani"
)

// sourceFlags select between the live API and a replayed review file.
type sourceFlags struct {
	fromFile   string
	apprentice int
	newKanji   int
}

func openSettings() (settings.Store, error) {
	switch cfg.SettingsBackend {
	case config.BackendTOML:
		return settings.TOMLStore{Dir: cfg.SettingsPath()}, nil
	default:
		return settings.OpenSQLite(cfg.SettingsPath())
	}
}

// buildMeter wires a Meter for the current configuration. The caller owns
// the returned store.
func buildMeter(src sourceFlags, sinks ...meter.Sink) (*meter.Meter, settings.Store, error) {
	var (
		source  review.Source
		counter meter.StageCounter
	)

	if src.fromFile != "" {
		source = review.FileSource{Path: src.fromFile}
		counter = meter.StaticCounts{Apprentice: src.apprentice, NewKanji: src.newKanji}
	} else {
		if cfg.WaniKani.Token == "" {
			return nil, nil, errors.New("WANIKANI_API_TOKEN is not set (or use --from-file)")
		}
		client := wanikani.NewClient(cfg.WaniKani)
		source = review.NewProvider(client, review.NewStore(), cfg.CacheDir)
		counter = client
	}

	store, err := openSettings()
	if err != nil {
		return nil, nil, fmt.Errorf("opening settings: %w", err)
	}
	return meter.New(source, counter, store, cfg.SettingsID, sinks...), store, nil
}
