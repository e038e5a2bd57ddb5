package stats

import (
	"errors"
	"time"
)

// ErrDivisionUndefined is returned when a per-review rate is requested for zero reviews.
var ErrDivisionUndefined = errors.New("division undefined: no reviews")

// Params holds the weighting heuristics used to score difficulty and pace.
type Params struct {
	NormalApprenticeQty  int
	NewKanjiWeighting    float64
	NormalMissPercent    float64
	ExtraMissesWeighting float64
	MaxPace              int
}

// Snapshot is the full set of derived metrics for one invocation.
type Snapshot struct {
	ReviewedCount   int       `json:"reviewedCount"`
	Sessions        []Session `json:"sessions"`
	Histogram       Histogram `json:"histogram"`
	ApprenticeCount int       `json:"apprenticeCount"`
	NewKanjiCount   int       `json:"newKanjiCount"`

	TotalMinutes float64 `json:"totalMinutes"`
	TotalMisses  int     `json:"totalMisses"`
	ReviewDays   int     `json:"reviewDays"`

	ReviewsPerDay       int  `json:"reviewsPerDay"`
	MissesPerDay        int  `json:"missesPerDay"`
	AllowedMissesPerDay int  `json:"allowedMissesPerDay"`
	ExtraMissesPerDay   int  `json:"extraMissesPerDay"`
	SecondsPerReview    *int `json:"secondsPerReview,omitempty"` // nil when no reviews

	Difficulty float64 `json:"difficulty"`
	Pace       float64 `json:"pace"`
}

// Compute derives a Snapshot from segmented sessions and external stage counts.
// It performs no I/O and keeps no state between calls.
func Compute(sessions []Session, hist Histogram, apprentice, newKanji int, p Params) Snapshot {
	snap := Snapshot{
		Sessions:        sessions,
		Histogram:       hist,
		ApprenticeCount: apprentice,
		NewKanjiCount:   newKanji,
	}

	for _, s := range sessions {
		snap.ReviewedCount += s.Count
		snap.TotalMinutes += s.Minutes()
		snap.TotalMisses += s.MissCount
	}

	snap.ReviewDays = ReviewDays(sessions)
	snap.ReviewsPerDay = perDay(snap.ReviewedCount, snap.ReviewDays)
	snap.MissesPerDay = perDay(snap.TotalMisses, snap.ReviewDays)

	if spr, err := SecondsPerReview(snap.TotalMinutes, snap.ReviewedCount); err == nil {
		snap.SecondsPerReview = &spr
	}

	snap.AllowedMissesPerDay = round(float64(snap.ReviewsPerDay) * p.NormalMissPercent / 100)
	snap.ExtraMissesPerDay = snap.MissesPerDay - snap.AllowedMissesPerDay

	snap.Difficulty = Difficulty(apprentice, newKanji, snap.ExtraMissesPerDay, p)
	snap.Pace = Pace(snap.ReviewsPerDay, p.MaxPace)
	return snap
}

// ReviewDays returns the whole number of days spanned by the sessions, rounded.
func ReviewDays(sessions []Session) int {
	if len(sessions) == 0 {
		return 0
	}
	span := sessions[len(sessions)-1].End.Sub(sessions[0].Start)
	return max(0, round(span.Hours()/24))
}

// perDay normalizes a count by days; histories under a day use the raw count.
func perDay(count, days int) int {
	if days < 1 {
		return count
	}
	return round(float64(count) / float64(days))
}

// SecondsPerReview returns the average answer time, or ErrDivisionUndefined
// when there were no reviews.
func SecondsPerReview(totalMinutes float64, reviewed int) (int, error) {
	if reviewed == 0 {
		return 0, ErrDivisionUndefined
	}
	return round(60 * totalMinutes / float64(reviewed)), nil
}

// Difficulty scores apprentice load, weighted by new kanji and excess misses, in [0, 1].
func Difficulty(apprentice, newKanji, extraMissesPerDay int, p Params) float64 {
	if p.NormalApprenticeQty <= 0 {
		return 0
	}
	d := float64(apprentice) / (2 * float64(p.NormalApprenticeQty))
	d *= 1 + float64(newKanji)*p.NewKanjiWeighting
	if extraMissesPerDay > 0 {
		d *= 1 + float64(extraMissesPerDay)*p.ExtraMissesWeighting
	}
	return clamp01(d)
}

// Pace scores daily throughput against maxPace, in [0, 1].
func Pace(reviewsPerDay, maxPace int) float64 {
	if maxPace <= 0 {
		return 0
	}
	return clamp01(float64(reviewsPerDay) / float64(maxPace))
}

// Span returns the wall-clock time between the first and last review.
func (s Snapshot) Span() time.Duration {
	if len(s.Sessions) == 0 {
		return 0
	}
	return s.Sessions[len(s.Sessions)-1].End.Sub(s.Sessions[0].Start)
}
