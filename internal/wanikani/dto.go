package wanikani

import "time"

// Pages carries the cursor links of a collection response.
type Pages struct {
	PerPage     int    `json:"per_page"`
	NextURL     string `json:"next_url"`
	PreviousURL string `json:"previous_url"`
}

// ReviewCollection is the top-level container for /v2/reviews results.
type ReviewCollection struct {
	Object        string      `json:"object"`
	URL           string      `json:"url"`
	Pages         Pages       `json:"pages"`
	TotalCount    int         `json:"total_count"`
	DataUpdatedAt string      `json:"data_updated_at"`
	Data          []ReviewDTO `json:"data"`
}

// ReviewDTO represents a single review resource.
type ReviewDTO struct {
	ID            int64         `json:"id"`
	Object        string        `json:"object"`
	URL           string        `json:"url"`
	DataUpdatedAt string        `json:"data_updated_at"`
	Data          ReviewDataDTO `json:"data"`
}

// ReviewDataDTO contains the review fields we care about.
type ReviewDataDTO struct {
	CreatedAt               string `json:"created_at"`
	AssignmentID            int64  `json:"assignment_id"`
	SubjectID               int64  `json:"subject_id"`
	StartingSRSStage        int    `json:"starting_srs_stage"`
	EndingSRSStage          int    `json:"ending_srs_stage"`
	IncorrectMeaningAnswers int    `json:"incorrect_meaning_answers"`
	IncorrectReadingAnswers int    `json:"incorrect_reading_answers"`
}

// AssignmentCollection is used only for its total_count.
type AssignmentCollection struct {
	Object     string `json:"object"`
	Pages      Pages  `json:"pages"`
	TotalCount int    `json:"total_count"`
}

// ErrorDTO is the body WaniKani returns alongside non-2xx responses.
type ErrorDTO struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// ParseTime is a helper for the ISO 8601 timestamps WaniKani emits.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// FormatTime renders a timestamp the way WaniKani expects in filters.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}
