package stats

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"Zero", 0, 0},
		{"BelowHalf", 2.49, 2},
		{"Half", 2.5, 3},
		{"NegativeHalf", -2.5, -2},
		{"Negative", -2.6, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := round(tt.value); got != tt.want {
				t.Errorf("round(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{-0.1, 0},
		{0.3, 0.3},
		{1.7, 1},
		{math.Inf(1), 1},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := clamp01(tt.value); got != tt.want {
			t.Errorf("clamp01(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
