package wanikani

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnauthorized is returned when the API token is missing, revoked or lacks permission.
	ErrUnauthorized = errors.New("wanikani authentication failed")
	// ErrRateLimited is returned when the API answers 429.
	ErrRateLimited = errors.New("wanikani rate limit exceeded")
)

// StageFilter selects assignments by SRS stage and subject type.
type StageFilter struct {
	Name         string
	SRSStages    []int
	SubjectTypes []string
}

// ApprenticeItems counts every subject currently in Apprentice 1-4.
var ApprenticeItems = StageFilter{
	Name:      "apprentice",
	SRSStages: []int{1, 2, 3, 4},
}

// NewKanji counts kanji in the first two Apprentice stages.
var NewKanji = StageFilter{
	Name:         "new_kanji",
	SRSStages:    []int{1, 2},
	SubjectTypes: []string{"kanji"},
}

func (f StageFilter) key() string {
	stages := make([]string, len(f.SRSStages))
	for i, s := range f.SRSStages {
		stages[i] = strconv.Itoa(s)
	}
	return strings.Join(stages, ",") + "|" + strings.Join(f.SubjectTypes, ",")
}

// Client is the interface for interacting with the WaniKani API.
type Client interface {
	// SearchReviews fetches one page of reviews updated after the given time.
	// An empty pageURL requests the first page; subsequent pages use Pages.NextURL.
	SearchReviews(ctx context.Context, updatedAfter time.Time, pageURL string) (*ReviewCollection, error)
	// CountAssignments returns how many assignments currently match the filter.
	CountAssignments(ctx context.Context, filter StageFilter) (int, error)
}

// Config holds the authentication and connection settings for WaniKani.
type Config struct {
	BaseURL  string
	Token    string
	Revision string

	// Performance Settings
	RequestsPerMinute int
	Timeout           time.Duration
}

// NewClient creates a WaniKani client protected by a circuit breaker.
func NewClient(cfg Config) Client {
	return newBreakerClient(NewAPIClient(cfg))
}
