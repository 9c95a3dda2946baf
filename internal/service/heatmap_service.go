package service

import (
	"time"

	"github.com/coder/quartz"

	"github.com/jengzang/forgeheat/internal/models"
)

const (
	heatmapWeeks = 52
	maxWeeks     = 54
	daysPerWeek  = 7
)

// HeatmapService lays merged totals out on a Sunday-anchored calendar grid
type HeatmapService struct {
	clock    quartz.Clock
	location *time.Location
}

// NewHeatmapService creates a new heatmap service. A nil location means
// time.Local
func NewHeatmapService(clock quartz.Clock, location *time.Location) *HeatmapService {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if location == nil {
		location = time.Local
	}
	return &HeatmapService{clock: clock, location: location}
}

// Today returns the current calendar date in the service location as
// midnight UTC. Grid arithmetic runs in UTC so DST transitions in the
// location never skip or repeat a day
func (s *HeatmapService) Today() time.Time {
	y, m, d := s.clock.Now().In(s.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Build returns the trailing year of totals as weeks, oldest first. The
// level scale uses the maximum over all of totals, not just the window
func (s *HeatmapService) Build(totals models.Totals) []models.HeatmapWeek {
	today := s.Today()
	start := today.AddDate(0, 0, -heatmapWeeks*daysPerWeek)
	start = start.AddDate(0, 0, -int(start.Weekday()))
	max := totals.Max()

	weeks := make([]models.HeatmapWeek, 0, heatmapWeeks+1)
	days := make([]models.HeatmapCell, 0, daysPerWeek)

	for current := start; !current.After(today) || current.Weekday() != time.Sunday; current = current.AddDate(0, 0, 1) {
		date := current.Format(models.DateLayout)
		count := totals[date]
		days = append(days, models.HeatmapCell{
			Date:  date,
			Count: count,
			Level: Level(count, max),
		})

		if len(days) == daysPerWeek {
			weeks = append(weeks, models.HeatmapWeek{Days: days})
			days = make([]models.HeatmapCell, 0, daysPerWeek)
			if len(weeks) >= maxWeeks {
				break
			}
		}
	}

	if len(days) > 0 {
		weeks = append(weeks, models.HeatmapWeek{Days: days})
	}
	return weeks
}

// Level quantizes count relative to max into 0-4
func Level(count, max int64) int {
	if count <= 0 || max <= 0 {
		return models.MinLevel
	}

	ratio := float64(count) / float64(max)
	switch {
	case ratio <= 0.25:
		return 1
	case ratio <= 0.50:
		return 2
	case ratio <= 0.75:
		return 3
	default:
		return models.MaxLevel
	}
}
