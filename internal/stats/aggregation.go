// Package stats summarizes merged contribution histories.
package stats

import (
	"time"

	"github.com/jengzang/forgeheat/internal/models"
)

// Sum returns the total of values
func Sum(values []int64) int64 {
	var sum int64
	for _, v := range values {
		sum += v
	}
	return sum
}

// Max returns the largest value, or 0 for an empty slice
func Max(values []int64) int64 {
	var max int64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

// Mean calculates the arithmetic mean of values
func Mean(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	return float64(Sum(values)) / float64(len(values))
}

// Summarize computes the contribution summary of totals as seen on today
func Summarize(totals models.Totals, today time.Time) models.Summary {
	history := totals.History()

	var active []int64
	var activeDates []string
	for _, d := range history {
		if d.Count > 0 {
			active = append(active, d.Count)
			activeDates = append(activeDates, d.Date)
		}
	}

	summary := models.Summary{
		Total:      Sum(active),
		MaxDaily:   Max(active),
		ActiveDays: len(active),
		MeanActive: Mean(active),
	}
	if len(activeDates) > 0 {
		summary.FirstDate = activeDates[0]
		summary.LastDate = activeDates[len(activeDates)-1]
	}

	streaks := DetectStreaks(activeDates)
	for _, s := range streaks {
		if s.Days > summary.LongestStreak {
			summary.LongestStreak = s.Days
		}
	}
	summary.CurrentStreak = CurrentStreak(streaks, today)
	return summary
}
