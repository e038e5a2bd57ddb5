package review

import "time"

// Event represents a single answered review on WaniKani.
// It is the primary unit of the review log.
type Event struct {
	// ID is the WaniKani review id, used for de-duplication.
	ID int64 `json:"id"`
	// Timestamp is when the review was submitted.
	Timestamp time.Time `json:"ts"`
	// UpdatedAt is the last modification time reported by the API.
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
	// SubjectID identifies the radical, kanji or vocabulary item reviewed.
	SubjectID int64 `json:"subjectId"`
	// AssignmentID links the review to the user's assignment.
	AssignmentID int64 `json:"assignmentId,omitempty"`

	StartingSRSStage int `json:"startingSrsStage,omitempty"`
	EndingSRSStage   int `json:"endingSrsStage,omitempty"`

	IncorrectMeaningCount int `json:"incorrectMeaning"`
	IncorrectReadingCount int `json:"incorrectReading"`
}

// IsMiss reports whether the learner answered meaning or reading incorrectly at least once.
func (e Event) IsMiss() bool {
	return e.IncorrectMeaningCount+e.IncorrectReadingCount > 0
}

// FilterRecent returns the events submitted strictly after now minus the lookback window.
func FilterRecent(events []Event, now time.Time, window time.Duration) []Event {
	cutoff := now.Add(-window)
	var result []Event
	for _, e := range events {
		if e.Timestamp.After(cutoff) {
			result = append(result, e)
		}
	}
	return result
}
