package stats_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/forgeheat/internal/models"
	"github.com/jengzang/forgeheat/internal/stats"
)

func TestAggregates(t *testing.T) {
	t.Parallel()

	assert.EqualValues(t, 0, stats.Sum(nil))
	assert.EqualValues(t, 0, stats.Max(nil))
	assert.Zero(t, stats.Mean(nil))

	values := []int64{3, 9, 6}
	assert.EqualValues(t, 18, stats.Sum(values))
	assert.EqualValues(t, 9, stats.Max(values))
	assert.InDelta(t, 6.0, stats.Mean(values), 1e-9)
}

func TestDetectStreaks(t *testing.T) {
	t.Parallel()

	streaks := stats.DetectStreaks([]string{
		"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01",
		"2024-03-03",
		"bogus",
		"2024-03-04",
	})
	assert.Equal(t, []stats.Streak{
		{Start: "2024-02-27", End: "2024-03-01", Days: 4},
		{Start: "2024-03-03", End: "2024-03-03", Days: 1},
		{Start: "2024-03-04", End: "2024-03-04", Days: 1},
	}, streaks)
}

func TestCurrentStreak(t *testing.T) {
	t.Parallel()

	streaks := []stats.Streak{{Start: "2024-03-01", End: "2024-03-05", Days: 5}}
	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"ends today", time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), 5},
		{"ends yesterday", time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC), 5},
		{"broken", time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, stats.CurrentStreak(streaks, tt.today))
		})
	}
	assert.Zero(t, stats.CurrentStreak(nil, time.Now()))
}

func TestCurrentStreak_AfterSkippedMidnight(t *testing.T) {
	t.Parallel()

	// 2024-09-08 00:00 does not exist in Santiago; yesterday must still be
	// the 8th.
	santiago, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	streaks := []stats.Streak{{Start: "2024-09-06", End: "2024-09-08", Days: 3}}
	today := time.Date(2024, 9, 9, 0, 0, 0, 0, santiago)
	assert.Equal(t, 3, stats.CurrentStreak(streaks, today))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	totals := models.Totals{
		"2024-01-01": 5,
		"2024-01-02": 10,
		"2024-01-03": 0,
		"2024-01-04": 1,
		"2024-01-05": 2,
		"2024-01-06": 3,
	}
	got := stats.Summarize(totals, time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, models.Summary{
		Total:         21,
		MaxDaily:      10,
		ActiveDays:    5,
		MeanActive:    4.2,
		LongestStreak: 3,
		CurrentStreak: 3,
		FirstDate:     "2024-01-01",
		LastDate:      "2024-01-06",
	}, got)

	assert.Equal(t, models.Summary{}, stats.Summarize(models.Totals{}, time.Now()))
}
