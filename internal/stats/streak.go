package stats

import (
	"time"

	"github.com/jengzang/forgeheat/internal/models"
)

// Streak represents a run of consecutive active days
type Streak struct {
	Start string // YYYY-MM-DD
	End   string // YYYY-MM-DD
	Days  int
}

// DetectStreaks groups sorted, unique active dates into runs of consecutive
// calendar days. Unparseable dates break a run
func DetectStreaks(dates []string) []Streak {
	var streaks []Streak
	var current *Streak
	var prev time.Time

	for _, date := range dates {
		day, err := time.Parse(models.DateLayout, date)
		if err != nil {
			current = nil
			continue
		}

		if current != nil && day.Equal(prev.AddDate(0, 0, 1)) {
			current.End = date
			current.Days++
		} else {
			streaks = append(streaks, Streak{Start: date, End: date, Days: 1})
			current = &streaks[len(streaks)-1]
		}
		prev = day
	}
	return streaks
}

// CurrentStreak returns the length of the streak ending today, or ending
// yesterday when today has no activity yet. Only the calendar date of today
// is used
func CurrentStreak(streaks []Streak, today time.Time) int {
	if len(streaks) == 0 {
		return 0
	}
	last := streaks[len(streaks)-1]
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	todayStr := day.Format(models.DateLayout)
	yesterday := day.AddDate(0, 0, -1).Format(models.DateLayout)
	if last.End == todayStr || last.End == yesterday {
		return last.Days
	}
	return 0
}
