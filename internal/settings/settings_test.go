package settings

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_Validate(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestSettings_Durations(t *testing.T) {
	s := Defaults()
	assert.Equal(t, 72*time.Hour, s.Lookback())
	assert.Equal(t, 10*time.Minute, s.SessionGap())

	s.SessionIntervalMax = 1.5
	assert.Equal(t, 90*time.Second, s.SessionGap())
}

func TestValidInterval(t *testing.T) {
	tests := []struct {
		hours int
		want  bool
	}{
		{0, false},
		{1, true},
		{72, true},
		{168, true},
		{169, false},
		{192, true},
		{200, false},
		{-24, false},
		{MaxInterval, true},
		{MaxInterval + 24, false},
		{24 * 200000, false},
	}
	for _, tt := range tests {
		if got := validInterval(tt.hours); got != tt.want {
			t.Errorf("validInterval(%d) = %v, want %v", tt.hours, got, tt.want)
		}
	}
}

func TestValidate_OutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"interval", func(s *Settings) { s.Interval = 200 }, "interval"},
		{"gap low", func(s *Settings) { s.SessionIntervalMax = 0.5 }, "sessionIntervalMax"},
		{"apprentice high", func(s *Settings) { s.NormalApprenticeQty = 600 }, "normalApprenticeQty"},
		{"kanji weight", func(s *Settings) { s.NewKanjiWeighting = 0.2 }, "newKanjiWeighting"},
		{"miss percent", func(s *Settings) { s.NormalMissPercent = 51 }, "normalMissPercent"},
		{"pace low", func(s *Settings) { s.MaxPace = 5 }, "maxPace"},
		{"colour", func(s *Settings) { s.BackgroundColor = "ugly" }, "backgroundColor"},
		{"version", func(s *Settings) { s.Version = "" }, "version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOutOfRange))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestClamp(t *testing.T) {
	s := Defaults()
	s.Interval = 200
	s.SessionIntervalMax = 42
	s.NormalApprenticeQty = 1
	s.ExtraMissesWeighting = -1
	s.MaxPace = 9000
	s.BackgroundColor = "not-a-colour"

	got, adjusted := s.Clamp()

	assert.Equal(t, 192, got.Interval)
	assert.Equal(t, 10.0, got.SessionIntervalMax)
	assert.Equal(t, 30, got.NormalApprenticeQty)
	assert.Equal(t, 0.0, got.ExtraMissesWeighting)
	assert.Equal(t, 500, got.MaxPace)
	assert.Equal(t, "#f4f4f4", got.BackgroundColor)
	assert.ElementsMatch(t, []string{
		"interval", "sessionIntervalMax", "normalApprenticeQty",
		"extraMissesWeighting", "maxPace", "backgroundColor",
	}, adjusted)
	require.NoError(t, got.Validate())

	_, none := Defaults().Clamp()
	assert.Empty(t, none)
}

func TestClamp_IntervalBelowOne(t *testing.T) {
	s := Defaults()
	s.Interval = -3
	got, _ := s.Clamp()
	assert.Equal(t, 1, got.Interval)
}

func TestClamp_IntervalAboveCap(t *testing.T) {
	s := Defaults()
	s.Interval = 24 * 200000
	require.Error(t, s.Validate())

	got, adjusted := s.Clamp()
	assert.Equal(t, MaxInterval, got.Interval)
	assert.Equal(t, []string{"interval"}, adjusted)
	assert.Equal(t, 365*24*time.Hour, got.Lookback())
}

func TestClamp_NaNResetsToDefault(t *testing.T) {
	s := Defaults()
	s.SessionIntervalMax = math.NaN()
	s.NewKanjiWeighting = math.NaN()

	got, adjusted := s.Clamp()
	assert.Equal(t, Defaults().SessionIntervalMax, got.SessionIntervalMax)
	assert.Equal(t, Defaults().NewKanjiWeighting, got.NewKanjiWeighting)
	assert.ElementsMatch(t, []string{"sessionIntervalMax", "newKanjiWeighting"}, adjusted)
	require.NoError(t, got.Validate())
}

func TestWith(t *testing.T) {
	s, err := Defaults().With("interval", "48")
	require.NoError(t, err)
	assert.Equal(t, 48, s.Interval)

	s, err = s.With("normalMissPercent", "25%")
	require.NoError(t, err)
	assert.Equal(t, 25.0, s.NormalMissPercent)

	s, err = s.With("debug", "true")
	require.NoError(t, err)
	assert.True(t, s.Debug)

	_, err = s.With("maxPace", "9000")
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = s.With("interval", "4800000")
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = s.With("maxPace", "fast")
	assert.Error(t, err)

	_, err = s.With("colour", "#fff")
	assert.ErrorContains(t, err, "unknown setting")
}
