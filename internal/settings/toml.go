package settings

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// TOMLStore keeps each settings id in its own TOML file under Dir.
type TOMLStore struct {
	Dir string
}

func (s TOMLStore) path(id string) string {
	return filepath.Join(s.Dir, id+".toml")
}

// Load reads the TOML file for id. A missing file yields defaults.
func (s TOMLStore) Load(_ context.Context, id string, defaults Settings) (Settings, error) {
	path := s.path(id)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return Settings{}, fmt.Errorf("failed to stat settings: %w", err)
	}

	var stored Settings
	if _, err := toml.DecodeFile(path, &stored); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return stored, nil
}

// Save atomically rewrites the TOML file for id.
func (s TOMLStore) Save(_ context.Context, id string, st Settings) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}

	path := s.path(id)
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}

	w := bufio.NewWriter(file)
	if err := toml.NewEncoder(w).Encode(st); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

func (s TOMLStore) Close() error { return nil }
