// Package meter orchestrates one GanbarOmeter render: settings, reviews,
// stage counts, segmentation and scoring, then publication to the sinks.
package meter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"ganbarometer/internal/logging"
	"ganbarometer/internal/review"
	"ganbarometer/internal/settings"
	"ganbarometer/internal/stats"
	"ganbarometer/internal/wanikani"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrDataUnavailable wraps any failure to fetch reviews or stage counts.
var ErrDataUnavailable = errors.New("review data unavailable")

// StageCounter reports how many assignments match a stage filter.
// wanikani.Client satisfies it.
type StageCounter interface {
	CountAssignments(ctx context.Context, filter wanikani.StageFilter) (int, error)
}

// Sink receives every freshly rendered report.
type Sink interface {
	Publish(ctx context.Context, r Report) error
}

// Report is a snapshot together with the context it was computed in.
type Report struct {
	stats.Snapshot
	GeneratedAt time.Time         `json:"generatedAt"`
	Interval    int               `json:"interval"`
	Settings    settings.Settings `json:"settings"`
	Notice      string            `json:"notice,omitempty"`
}

// Meter renders reports on demand. It is safe for concurrent use.
type Meter struct {
	source     review.Source
	counter    StageCounter
	store      settings.Store
	settingsID string
	sinks      []Sink

	now        func() time.Time
	group      singleflight.Group
	generation atomic.Uint64

	mu       sync.Mutex
	last     *Report
	lastGen  uint64
	lastTime time.Time
}

// New creates a Meter. settingsID names the record in the settings store.
func New(source review.Source, counter StageCounter, store settings.Store, settingsID string, sinks ...Sink) *Meter {
	return &Meter{
		source:     source,
		counter:    counter,
		store:      store,
		settingsID: settingsID,
		sinks:      sinks,
		now:        time.Now,
	}
}

// Invalidate marks any in-flight render as stale and drops the last report,
// so the next caller renders with the current settings. A stale render still
// returns its report to its callers but does not publish it.
func (m *Meter) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation.Add(1)
	m.last = nil
}

// Last returns the most recently published report.
func (m *Meter) Last() (Report, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return Report{}, false
	}
	return *m.last, true
}

// Render computes a fresh report. Concurrent calls within the same generation
// share one computation, which outlives the cancellation of any single caller.
func (m *Meter) Render(ctx context.Context) (Report, error) {
	gen := m.generation.Load()
	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		r, err := m.render(shared)
		if err != nil {
			return Report{}, err
		}
		m.publish(shared, gen, r)
		return r, nil
	})

	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		if res.Shared {
			log.Debug().Uint64("generation", gen).Msg("Render coalesced with an in-flight call")
		}
		return res.Val.(Report), nil
	}
}

func (m *Meter) render(ctx context.Context) (Report, error) {
	loaded, err := settings.Resolve(ctx, m.store, m.settingsID)
	if err != nil {
		return Report{}, err
	}
	s := loaded.Settings
	logging.SetDebug(s.Debug)

	now := m.now()
	since := now.Add(-s.Lookback())

	events, err := m.source.ReviewsSince(ctx, since)
	if err != nil {
		return Report{}, fmt.Errorf("%w: fetching reviews: %w", ErrDataUnavailable, err)
	}
	events = review.FilterRecent(events, now, s.Lookback())

	var apprentice, newKanji int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := m.counter.CountAssignments(gctx, wanikani.ApprenticeItems)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		apprentice = n
		return nil
	})
	g.Go(func() error {
		n, err := m.counter.CountAssignments(gctx, wanikani.NewKanji)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		newKanji = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	sessions, hist := stats.Segment(events, s.SessionGap())
	snap := stats.Compute(sessions, hist, apprentice, newKanji, s.Params())

	if s.Debug {
		log.Info().Msgf("%d items reviewed over past %d hours", len(events), s.Interval)
		log.Info().Msgf("%d review sessions", len(sessions))
		log.Info().Dur("span", snap.Span()).Int("reviewDays", snap.ReviewDays).Msg("Review window span")
		for i, sess := range sessions {
			log.Info().
				Int("session", i).
				Int("firstIndex", sess.FirstIndex).
				Time("start", sess.Start).
				Time("end", sess.End).
				Int("reviews", sess.Count).
				Int("misses", sess.MissCount).
				Float64("minutes", sess.Minutes()).
				Msg("Review session")
		}
	}

	return Report{
		Snapshot:    snap,
		GeneratedAt: now,
		Interval:    s.Interval,
		Settings:    s,
		Notice:      loaded.Notice(),
	}, nil
}

// publish hands r to the sinks unless a newer generation has started or a
// newer report was already published.
func (m *Meter) publish(ctx context.Context, gen uint64, r Report) {
	m.mu.Lock()
	if gen != m.generation.Load() || (m.last != nil && (gen < m.lastGen || r.GeneratedAt.Before(m.lastTime))) {
		m.mu.Unlock()
		log.Debug().Uint64("generation", gen).Msg("Discarding stale render")
		return
	}
	m.last = &r
	m.lastGen = gen
	m.lastTime = r.GeneratedAt
	m.mu.Unlock()

	for _, sink := range m.sinks {
		if err := sink.Publish(ctx, r); err != nil {
			log.Warn().Err(err).Msgf("Sink %T failed to publish report", sink)
		}
	}
}

// StaticCounts serves fixed stage counts, for offline renders.
type StaticCounts struct {
	Apprentice int
	NewKanji   int
}

func (c StaticCounts) CountAssignments(_ context.Context, filter wanikani.StageFilter) (int, error) {
	switch filter.Name {
	case wanikani.ApprenticeItems.Name:
		return c.Apprentice, nil
	case wanikani.NewKanji.Name:
		return c.NewKanji, nil
	default:
		return 0, fmt.Errorf("no static count for filter %q", filter.Name)
	}
}
