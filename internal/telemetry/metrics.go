// Package telemetry exposes rendered reports as Prometheus gauges and over HTTP.
package telemetry

import (
	"context"
	"math"
	"strconv"

	"ganbarometer/internal/meter"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a Sink that mirrors the latest report into Prometheus gauges.
type Metrics struct {
	Registry *prometheus.Registry

	difficulty      prometheus.Gauge
	pace            prometheus.Gauge
	reviewsPerDay   prometheus.Gauge
	missesPerDay    prometheus.Gauge
	secondsPerRev   prometheus.Gauge
	apprentice      prometheus.Gauge
	newKanji        prometheus.Gauge
	sessions        prometheus.Gauge
	reviewed        prometheus.Gauge
	intervals       *prometheus.GaugeVec
	renders         prometheus.Counter
	lastRenderEpoch prometheus.Gauge
}

// NewMetrics registers the GanbarOmeter gauges on a fresh registry.
func NewMetrics() *Metrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ganbarometer", Name: name, Help: help})
	}

	m := &Metrics{
		Registry:        prometheus.NewRegistry(),
		difficulty:      gauge("difficulty_ratio", "Difficulty gauge in [0, 1]"),
		pace:            gauge("pace_ratio", "Pace gauge in [0, 1]"),
		reviewsPerDay:   gauge("reviews_per_day", "Reviews per day over the lookback window"),
		missesPerDay:    gauge("misses_per_day", "Missed reviews per day over the lookback window"),
		secondsPerRev:   gauge("seconds_per_review", "Average seconds per review, NaN when no reviews"),
		apprentice:      gauge("apprentice_items", "Assignments in Apprentice 1-4"),
		newKanji:        gauge("new_kanji_items", "Kanji in Apprentice 1-2"),
		sessions:        gauge("sessions", "Review sessions in the lookback window"),
		reviewed:        gauge("reviews", "Reviews in the lookback window"),
		lastRenderEpoch: gauge("last_render_timestamp_seconds", "Unix time of the last published report"),
		intervals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ganbarometer",
			Name:      "review_intervals",
			Help:      "Gaps between consecutive reviews by histogram bucket",
		}, []string{"lower_bound_seconds", "label"}),
		renders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ganbarometer",
			Name:      "renders_total",
			Help:      "Reports published",
		}),
	}

	m.Registry.MustRegister(
		m.difficulty, m.pace, m.reviewsPerDay, m.missesPerDay, m.secondsPerRev,
		m.apprentice, m.newKanji, m.sessions, m.reviewed, m.intervals,
		m.renders, m.lastRenderEpoch,
	)
	return m
}

// Publish updates every gauge from r.
func (m *Metrics) Publish(_ context.Context, r meter.Report) error {
	m.difficulty.Set(r.Difficulty)
	m.pace.Set(r.Pace)
	m.reviewsPerDay.Set(float64(r.ReviewsPerDay))
	m.missesPerDay.Set(float64(r.MissesPerDay))
	if r.SecondsPerReview != nil {
		m.secondsPerRev.Set(float64(*r.SecondsPerReview))
	} else {
		m.secondsPerRev.Set(math.NaN())
	}
	m.apprentice.Set(float64(r.ApprenticeCount))
	m.newKanji.Set(float64(r.NewKanjiCount))
	m.reviewed.Set(float64(r.ReviewedCount))

	sessions := 0
	for _, s := range r.Sessions {
		if s.Count > 0 {
			sessions++
		}
	}
	m.sessions.Set(float64(sessions))

	for _, b := range r.Histogram.Buckets {
		m.intervals.WithLabelValues(strconv.Itoa(b.LowerBoundSeconds), b.Label).Set(float64(b.Count))
	}

	m.renders.Inc()
	m.lastRenderEpoch.Set(float64(r.GeneratedAt.Unix()))
	return nil
}
