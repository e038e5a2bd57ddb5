package wanikani

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
)

// breakerClient isolates callers from a failing WaniKani API.
// Authentication errors and cancellations do not count as failures.
type breakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker[any]
}

func newBreakerClient(next Client) *breakerClient {
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "wanikani-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrUnauthorized) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
		},
	})
	return &breakerClient{next: next, cb: cb}
}

func (b *breakerClient) SearchReviews(ctx context.Context, updatedAfter time.Time, pageURL string) (*ReviewCollection, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.SearchReviews(ctx, updatedAfter, pageURL)
	})
	if err != nil {
		return nil, err
	}
	return res.(*ReviewCollection), nil
}

func (b *breakerClient) CountAssignments(ctx context.Context, filter StageFilter) (int, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.CountAssignments(ctx, filter)
	})
	if err != nil {
		return 0, err
	}
	return res.(int), nil
}
