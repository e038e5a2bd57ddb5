package stats

import "time"

// Bucket counts inter-review gaps of at least LowerBoundSeconds.
type Bucket struct {
	Label             string `json:"label"`
	LowerBoundSeconds int    `json:"lowerBoundSeconds"`
	Count             int    `json:"count"`
}

// LowerBound returns the bucket's lower edge as a duration.
func (b Bucket) LowerBound() time.Duration {
	return time.Duration(b.LowerBoundSeconds) * time.Second
}

// Histogram is a fixed, ascending set of latency buckets.
// Labels name the upper edge of each bucket; the last one is open-ended.
type Histogram struct {
	Buckets []Bucket `json:"buckets"`
}

var bucketLayout = []Bucket{
	{Label: `10"`, LowerBoundSeconds: 0},
	{Label: `20"`, LowerBoundSeconds: 10},
	{Label: `30"`, LowerBoundSeconds: 20},
	{Label: `1'`, LowerBoundSeconds: 30},
	{Label: `1.5'`, LowerBoundSeconds: 60},
	{Label: `2'`, LowerBoundSeconds: 90},
	{Label: `5'`, LowerBoundSeconds: 120},
	{Label: `10'`, LowerBoundSeconds: 300},
	{Label: `>10'`, LowerBoundSeconds: 600},
}

// NewHistogram returns an all-zero histogram with the standard bucket layout.
func NewHistogram() Histogram {
	buckets := make([]Bucket, len(bucketLayout))
	copy(buckets, bucketLayout)
	return Histogram{Buckets: buckets}
}

// Classify increments the highest bucket whose lower bound is <= gap.
// Negative gaps land in the first bucket.
func (h *Histogram) Classify(gap time.Duration) {
	if len(h.Buckets) == 0 {
		return
	}
	idx := 0
	for i, b := range h.Buckets {
		if b.LowerBound() <= gap {
			idx = i
		}
	}
	h.Buckets[idx].Count++
}

// Total returns the number of classified gaps.
func (h Histogram) Total() int {
	total := 0
	for _, b := range h.Buckets {
		total += b.Count
	}
	return total
}

// Count returns the count of the bucket starting at lowerBoundSeconds, or 0.
func (h Histogram) Count(lowerBoundSeconds int) int {
	for _, b := range h.Buckets {
		if b.LowerBoundSeconds == lowerBoundSeconds {
			return b.Count
		}
	}
	return 0
}
