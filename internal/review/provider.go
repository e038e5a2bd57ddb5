package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ganbarometer/internal/wanikani"

	"github.com/rs/zerolog/log"
)

// Source returns the review events submitted after a point in time, oldest first.
type Source interface {
	ReviewsSince(ctx context.Context, since time.Time) ([]Event, error)
}

// Provider orchestrates review ingestion from the API into the cached Store.
type Provider struct {
	client   wanikani.Client
	store    *Store
	cacheDir string

	mu     sync.Mutex
	loaded bool
}

func NewProvider(client wanikani.Client, store *Store, cacheDir string) *Provider {
	return &Provider{
		client:   client,
		store:    store,
		cacheDir: cacheDir,
	}
}

// ReviewsSince hydrates the store and returns the events submitted after since.
func (p *Provider) ReviewsSince(ctx context.Context, since time.Time) ([]Event, error) {
	if err := p.Hydrate(ctx, since); err != nil {
		return nil, err
	}
	return p.store.Since(since), nil
}

// Hydrate ensures the review log covers everything submitted after since.
func (p *Provider) Hydrate(ctx context.Context, since time.Time) error {
	const MaxPages = 200

	p.mu.Lock()
	defer p.mu.Unlock()

	// 1. Try to Load from Cache
	if !p.loaded && p.cacheDir != "" {
		if err := p.store.Load(p.cacheDir); err != nil {
			log.Warn().Err(err).Msg("Hydrate: failed to load review cache")
		}
		p.loaded = true
	}

	latest := p.store.LatestUpdate()

	// 2. Validate Cache Recency (2-month rule)
	if !latest.IsZero() && time.Since(latest) > (60*24*time.Hour) {
		log.Info().Time("latest", latest).Msg("Review cache is older than 2 months, evicting")
		p.store.Clear()
		if p.cacheDir != "" {
			_ = DeleteCache(p.cacheDir)
		}
		latest = time.Time{}
	}

	// 3. Incremental sync only when the cache already reaches back to since
	cursor := latest
	covered := p.store.CoveredFrom()
	isIncremental := !latest.IsZero() && !covered.IsZero() && !covered.After(since)
	if !isIncremental {
		cursor = since
	}

	log.Debug().Bool("incremental", isIncremental).Time("cursor", cursor).Msg("Starting review hydration")

	fetched := 0
	next := ""
	for page := 0; page < MaxPages; page++ {
		resp, err := p.client.SearchReviews(ctx, cursor, next)
		if err != nil {
			return fmt.Errorf("review hydration failed after %d reviews: %w", fetched, err)
		}

		batch := make([]Event, 0, len(resp.Data))
		for _, dto := range resp.Data {
			e, err := TransformReview(dto)
			if err != nil {
				log.Warn().Err(err).Msg("Skipping malformed review")
				continue
			}
			batch = append(batch, e)
		}
		p.store.Append(batch)
		fetched += len(batch)

		if resp.Pages.NextURL == "" {
			break
		}
		next = resp.Pages.NextURL
	}

	p.store.MarkCovered(since)

	// 4. Save to Cache
	if p.cacheDir != "" && (fetched > 0 || !isIncremental) {
		if err := p.store.Save(p.cacheDir); err != nil {
			log.Warn().Err(err).Msg("Hydrate: failed to save review cache")
		}
	}

	log.Debug().Int("fetched", fetched).Int("total", p.store.Count()).Msg("Review hydration complete")
	return nil
}

// FileSource replays events from a JSONL file instead of the API.
type FileSource struct {
	Path string
}

func (f FileSource) ReviewsSince(_ context.Context, since time.Time) ([]Event, error) {
	events, err := ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	store := NewStore()
	store.Append(events)
	return store.Since(since), nil
}
