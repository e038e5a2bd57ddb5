package stats

import (
	"slices"
	"time"

	"ganbarometer/internal/review"
)

// MinSessionDuration is the floor applied to session durations so that
// single-review sessions don't report zero minutes.
const MinSessionDuration = 15 * time.Second

// Session is a maximal run of reviews whose consecutive gaps stay within the
// configured threshold.
type Session struct {
	// FirstIndex is the position of the session's first review in the segmented slice.
	FirstIndex int       `json:"firstIndex"`
	Start      time.Time `json:"startTime"`
	End        time.Time `json:"endTime"`
	Count      int       `json:"count"`
	MissCount  int       `json:"missCount"`
}

// Minutes returns the session length in minutes, floored at MinSessionDuration.
func (s Session) Minutes() float64 {
	d := s.End.Sub(s.Start)
	if d < MinSessionDuration {
		d = MinSessionDuration
	}
	return d.Minutes()
}

func newSession(index int, e review.Event) Session {
	s := Session{
		FirstIndex: index,
		Start:      e.Timestamp,
		End:        e.Timestamp,
		Count:      1,
	}
	if e.IsMiss() {
		s.MissCount = 1
	}
	return s
}

// Segment partitions events into sessions in a single pass, classifying every
// consecutive gap into the latency histogram along the way.
//
// Events are expected in ascending timestamp order; out-of-order input is
// sorted on a copy first. An empty input yields one degenerate session with
// Count 0 and zero start/end times.
func Segment(events []review.Event, maxGap time.Duration) ([]Session, Histogram) {
	hist := NewHistogram()

	if len(events) == 0 {
		return []Session{{}}, hist
	}

	byTime := func(a, b review.Event) int {
		return a.Timestamp.Compare(b.Timestamp)
	}
	if !slices.IsSortedFunc(events, byTime) {
		events = slices.Clone(events)
		slices.SortStableFunc(events, byTime)
	}

	var sessions []Session
	cur := newSession(0, events[0])

	for i := 1; i < len(events); i++ {
		e := events[i]
		gap := e.Timestamp.Sub(cur.End)
		hist.Classify(gap)

		if gap <= maxGap {
			cur.Count++
			if e.IsMiss() {
				cur.MissCount++
			}
			cur.End = e.Timestamp
			continue
		}

		sessions = append(sessions, cur)
		cur = newSession(i, e)
	}

	sessions = append(sessions, cur)
	return sessions, hist
}
