package review

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const (
	cacheFileName = "reviews.jsonl"
	metaFileName  = "reviews.meta.json"
)

type cacheMeta struct {
	CoveredFrom time.Time `json:"coveredFrom"`
}

// Store provides thread-safe, chronological storage for review events.
type Store struct {
	mu     sync.RWMutex
	events []Event
	index  map[int64]int // review ID -> position in events

	// coveredFrom is the earliest point from which the log is known to be complete.
	coveredFrom time.Time
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{
		index: make(map[int64]int),
	}
}

// Append adds events to the log, replacing earlier copies of the same review
// and keeping the log sorted by Timestamp.
func (s *Store) Append(events []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, e := range events {
		if pos, ok := s.index[e.ID]; ok && e.ID != 0 {
			if !e.UpdatedAt.After(s.events[pos].UpdatedAt) {
				continue
			}
			s.events[pos] = e
		} else {
			s.events = append(s.events, e)
			if e.ID != 0 {
				s.index[e.ID] = len(s.events) - 1
			}
		}
		changed++
	}

	if changed == 0 {
		return
	}

	sort.SliceStable(s.events, func(i, j int) bool {
		if !s.events[i].Timestamp.Equal(s.events[j].Timestamp) {
			return s.events[i].Timestamp.Before(s.events[j].Timestamp)
		}
		return s.events[i].ID < s.events[j].ID
	})

	for i, e := range s.events {
		if e.ID != 0 {
			s.index[e.ID] = i
		}
	}
}

// Load reads events from the JSONL cache file in cacheDir.
func (s *Store) Load(cacheDir string) error {
	path := filepath.Join(cacheDir, cacheFileName)
	events, err := ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No cache yet, not an error
		}
		return err
	}

	log.Info().Int("count", len(events)).Msg("Loaded reviews from cache")
	s.Append(events)

	if raw, err := os.ReadFile(filepath.Join(cacheDir, metaFileName)); err == nil {
		var meta cacheMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			log.Warn().Err(err).Msg("Ignoring invalid review cache metadata")
		} else {
			s.MarkCovered(meta.CoveredFrom)
		}
	}
	return nil
}

// ReadFile decodes a JSONL file of events, skipping malformed lines.
func ReadFile(path string) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping invalid JSON line in review cache")
			continue
		}
		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading review cache: %w", err)
	}
	return events, nil
}

// Save persists the log to a JSONL cache file in cacheDir.
func (s *Store) Save(cacheDir string) error {
	s.mu.RLock()
	data := make([]Event, len(s.events))
	copy(data, s.events)
	s.mu.RUnlock()

	if len(data) == 0 {
		return nil
	}

	path := filepath.Join(cacheDir, cacheFileName)
	if err := WriteFile(path, data); err != nil {
		return err
	}

	raw, err := json.Marshal(cacheMeta{CoveredFrom: s.CoveredFrom()})
	if err != nil {
		return fmt.Errorf("failed to encode cache metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, metaFileName), raw, 0644); err != nil {
		return fmt.Errorf("failed to write cache metadata: %w", err)
	}

	log.Info().Int("count", len(data)).Msg("Reviews saved to cache")
	return nil
}

// WriteFile atomically writes events to path as JSONL.
func WriteFile(path string, events []Event) error {
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, e := range events {
		if err := encoder.Encode(e); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode review: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}

// LatestUpdate returns the most recent UpdatedAt across the log, used as the
// incremental sync cursor.
func (s *Store) LatestUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest time.Time
	for _, e := range s.events {
		if e.UpdatedAt.After(latest) {
			latest = e.UpdatedAt
		}
	}
	return latest
}

// Count returns the number of events in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Since returns a copy of the events submitted strictly after since.
func (s *Store) Since(since time.Time) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Event
	for _, e := range s.events {
		if e.Timestamp.After(since) {
			result = append(result, e)
		}
	}
	return result
}

// CoveredFrom returns the earliest time from which the log is complete.
func (s *Store) CoveredFrom() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coveredFrom
}

// MarkCovered records that the log is complete from t onward.
func (s *Store) MarkCovered(t time.Time) {
	if t.IsZero() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coveredFrom.IsZero() || t.Before(s.coveredFrom) {
		s.coveredFrom = t
	}
}

// Clear drops every event from the log.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.index = make(map[int64]int)
	s.coveredFrom = time.Time{}
}

// DeleteCache removes the JSONL cache files from cacheDir.
func DeleteCache(cacheDir string) error {
	for _, name := range []string{cacheFileName, metaFileName} {
		err := os.Remove(filepath.Join(cacheDir, name))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
