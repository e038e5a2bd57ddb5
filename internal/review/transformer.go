package review

import (
	"fmt"

	"ganbarometer/internal/wanikani"
)

// TransformReview converts an API review resource into an Event.
// Incorrect answer counts are always read from the nested data object.
func TransformReview(dto wanikani.ReviewDTO) (Event, error) {
	created, err := wanikani.ParseTime(dto.Data.CreatedAt)
	if err != nil {
		return Event{}, fmt.Errorf("review %d: invalid created_at %q: %w", dto.ID, dto.Data.CreatedAt, err)
	}

	e := Event{
		ID:                    dto.ID,
		Timestamp:             created,
		SubjectID:             dto.Data.SubjectID,
		AssignmentID:          dto.Data.AssignmentID,
		StartingSRSStage:      dto.Data.StartingSRSStage,
		EndingSRSStage:        dto.Data.EndingSRSStage,
		IncorrectMeaningCount: max(0, dto.Data.IncorrectMeaningAnswers),
		IncorrectReadingCount: max(0, dto.Data.IncorrectReadingAnswers),
	}

	if dto.DataUpdatedAt != "" {
		if upd, err := wanikani.ParseTime(dto.DataUpdatedAt); err == nil {
			e.UpdatedAt = upd
		}
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = created
	}
	return e, nil
}
