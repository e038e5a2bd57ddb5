package meter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ganbarometer/internal/review"
	"ganbarometer/internal/settings"
	"ganbarometer/internal/wanikani"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	events []review.Event
	err    error

	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	since   time.Time
}

func (f *fakeSource) ReviewsSince(ctx context.Context, since time.Time) ([]review.Event, error) {
	f.calls.Add(1)
	f.since = since
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.events, f.err
}

type recordingSink struct {
	mu      sync.Mutex
	reports []Report
}

func (s *recordingSink) Publish(_ context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

type failingCounter struct{}

func (failingCounter) CountAssignments(context.Context, wanikani.StageFilter) (int, error) {
	return 0, wanikani.ErrUnauthorized
}

func newMeter(t *testing.T, src review.Source, counter StageCounter, sinks ...Sink) *Meter {
	t.Helper()
	m := New(src, counter, settings.TOMLStore{Dir: t.TempDir()}, "gbSettings", sinks...)
	m.now = func() time.Time { return now }
	return m
}

func at(offset time.Duration, miss bool) review.Event {
	e := review.Event{Timestamp: now.Add(-offset)}
	if miss {
		e.IncorrectReadingCount = 1
	}
	return e
}

func TestRender_ComputesReport(t *testing.T) {
	src := &fakeSource{events: []review.Event{
		at(100*time.Hour, false), // outside the 72h window
		at(3*time.Hour, false),
		at(3*time.Hour-30*time.Second, true),
		at(3*time.Hour-60*time.Second, false),
		at(time.Hour, true),
	}}
	sink := &recordingSink{}
	m := newMeter(t, src, StaticCounts{Apprentice: 100, NewKanji: 2}, sink)

	r, err := m.Render(context.Background())
	require.NoError(t, err)

	assert.Equal(t, now.Add(-72*time.Hour), src.since)
	assert.Equal(t, 4, r.ReviewedCount)
	assert.Len(t, r.Sessions, 2)
	assert.Equal(t, 2, r.TotalMisses)
	assert.Equal(t, 100, r.ApprenticeCount)
	assert.Equal(t, 2, r.NewKanjiCount)
	assert.Equal(t, 72, r.Interval)
	assert.Equal(t, now, r.GeneratedAt)
	assert.Empty(t, r.Notice)
	// 100/200 * (1 + 2*0.05) * (1 + 1*0.03): one miss over the allowed 20% of 4.
	assert.InDelta(t, 0.5665, r.Difficulty, 1e-9)

	require.Equal(t, 1, sink.count())
	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, r.ReviewedCount, last.ReviewedCount)
}

func TestRender_EmptyWindowYieldsDegenerateReport(t *testing.T) {
	m := newMeter(t, &fakeSource{}, StaticCounts{})

	r, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, r.ReviewedCount)
	assert.Len(t, r.Sessions, 1)
	assert.Nil(t, r.SecondsPerReview)
	assert.Equal(t, 0.0, r.Pace)
}

func TestRender_FetchFailureIsAnError(t *testing.T) {
	sink := &recordingSink{}
	m := newMeter(t, &fakeSource{err: errors.New("connection reset")}, StaticCounts{}, sink)

	_, err := m.Render(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Equal(t, 0, sink.count())

	m = newMeter(t, &fakeSource{}, failingCounter{}, sink)
	_, err = m.Render(context.Background())
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorIs(t, err, wanikani.ErrUnauthorized)
}

func TestRender_StaleSettingsNotice(t *testing.T) {
	store := settings.TOMLStore{Dir: t.TempDir()}
	stale := settings.Defaults()
	stale.Version = "1.0"
	require.NoError(t, store.Save(context.Background(), "gbSettings", stale))

	m := New(&fakeSource{}, StaticCounts{}, store, "gbSettings")
	m.now = func() time.Time { return now }

	r, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, r.Notice)
	assert.Equal(t, settings.CurrentVersion, r.Settings.Version)
}

func TestRender_InvalidatedRenderIsNotPublished(t *testing.T) {
	src := &fakeSource{entered: make(chan struct{}), release: make(chan struct{})}
	sink := &recordingSink{}
	m := newMeter(t, src, StaticCounts{}, sink)

	done := make(chan error, 1)
	go func() {
		_, err := m.Render(context.Background())
		done <- err
	}()

	<-src.entered
	m.Invalidate()
	close(src.release)

	require.NoError(t, <-done)
	assert.Equal(t, 0, sink.count())
	_, ok := m.Last()
	assert.False(t, ok)
}

func TestRender_CoalescesConcurrentCalls(t *testing.T) {
	src := &fakeSource{entered: make(chan struct{}, 2), release: make(chan struct{})}
	sink := &recordingSink{}
	m := newMeter(t, src, StaticCounts{}, sink)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Render(context.Background())
			assert.NoError(t, err)
		}()
		if i == 0 {
			<-src.entered
		}
	}

	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, 1, sink.count())
}

func TestInvalidate_DropsLastReport(t *testing.T) {
	m := newMeter(t, &fakeSource{}, StaticCounts{})

	_, err := m.Render(context.Background())
	require.NoError(t, err)
	_, ok := m.Last()
	require.True(t, ok)

	m.Invalidate()
	_, ok = m.Last()
	assert.False(t, ok)

	_, err = m.Render(context.Background())
	require.NoError(t, err)
	_, ok = m.Last()
	assert.True(t, ok)
}

func TestRender_CancelledCallerDoesNotFailSharedRender(t *testing.T) {
	src := &fakeSource{entered: make(chan struct{}, 1), release: make(chan struct{})}
	sink := &recordingSink{}
	m := newMeter(t, src, StaticCounts{}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := m.Render(ctx)
		first <- err
	}()
	<-src.entered

	second := make(chan error, 1)
	go func() {
		_, err := m.Render(context.Background())
		second <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(src.release)
	require.NoError(t, <-second)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, 1, sink.count())
}

func TestStaticCounts(t *testing.T) {
	c := StaticCounts{Apprentice: 7, NewKanji: 3}
	n, err := c.CountAssignments(context.Background(), wanikani.ApprenticeItems)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = c.CountAssignments(context.Background(), wanikani.NewKanji)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = c.CountAssignments(context.Background(), wanikani.StageFilter{Name: "guru"})
	assert.Error(t, err)
}
