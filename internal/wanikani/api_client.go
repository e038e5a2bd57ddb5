package wanikani

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.wanikani.com"
	defaultRevision = "20170710"
)

type apiClient struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter

	// Session Cache
	cache      map[string]*cacheEntry
	cacheMutex sync.Mutex
}

type cacheEntry struct {
	Value      int
	Expiration time.Time
}

// NewAPIClient returns the plain HTTP client without circuit breaking.
func NewAPIClient(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Revision == "" {
		cfg.Revision = defaultRevision
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &apiClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute),
		cache:   make(map[string]*cacheEntry),
	}
}

func (c *apiClient) getFromCache(key string) (int, bool) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		log.Debug().Str("key", key).Msg("Cache miss")
		return 0, false
	}
	if time.Now().After(entry.Expiration) {
		delete(c.cache, key)
		return 0, false
	}
	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Value, true
}

func (c *apiClient) addToCache(key string, value int, ttl time.Duration) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.cache[key] = &cacheEntry{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	}
}

func (c *apiClient) authenticateRequest(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Wanikani-Revision", c.cfg.Revision)
	req.Header.Set("Accept", "application/json")
}

// get performs a paced, authenticated GET and decodes the JSON body into out.
func (c *apiClient) get(ctx context.Context, target string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	c.authenticateRequest(req)

	log.Debug().Str("url", target).Msg("Requesting WaniKani resource")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr ErrorDTO
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(body, &apiErr)

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w (%d): check WANIKANI_API_TOKEN", ErrUnauthorized, resp.StatusCode)
		case http.StatusTooManyRequests:
			if reset := resp.Header.Get("RateLimit-Reset"); reset != "" {
				return fmt.Errorf("%w: retry after epoch %s", ErrRateLimited, reset)
			}
			return ErrRateLimited
		default:
			if apiErr.Error != "" {
				return fmt.Errorf("wanikani API returned status %d: %s", resp.StatusCode, apiErr.Error)
			}
			return fmt.Errorf("wanikani API returned status %d", resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode wanikani response: %w", err)
	}
	return nil
}

func (c *apiClient) SearchReviews(ctx context.Context, updatedAfter time.Time, pageURL string) (*ReviewCollection, error) {
	target := pageURL
	if target == "" {
		params := url.Values{}
		if !updatedAfter.IsZero() {
			params.Set("updated_after", FormatTime(updatedAfter))
		}
		target = c.cfg.BaseURL + "/v2/reviews"
		if len(params) > 0 {
			target += "?" + params.Encode()
		}
	}

	var result ReviewCollection
	if err := c.get(ctx, target, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *apiClient) CountAssignments(ctx context.Context, filter StageFilter) (int, error) {
	cacheKey := "assignments:" + filter.key()
	if val, ok := c.getFromCache(cacheKey); ok {
		return val, nil
	}

	params := url.Values{}
	if len(filter.SRSStages) > 0 {
		stages := make([]string, len(filter.SRSStages))
		for i, s := range filter.SRSStages {
			stages[i] = strconv.Itoa(s)
		}
		params.Set("srs_stages", strings.Join(stages, ","))
	}
	if len(filter.SubjectTypes) > 0 {
		params.Set("subject_types", strings.Join(filter.SubjectTypes, ","))
	}
	params.Set("hidden", "false")

	target := fmt.Sprintf("%s/v2/assignments?%s", c.cfg.BaseURL, params.Encode())

	var result AssignmentCollection
	if err := c.get(ctx, target, &result); err != nil {
		return 0, fmt.Errorf("counting %s assignments: %w", filter.Name, err)
	}

	c.addToCache(cacheKey, result.TotalCount, time.Minute)
	return result.TotalCount, nil
}
