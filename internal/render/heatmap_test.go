package render_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/forgeheat/internal/models"
	"github.com/jengzang/forgeheat/internal/render"
)

func weeksFrom(start time.Time, n int) []models.HeatmapWeek {
	weeks := make([]models.HeatmapWeek, n)
	day := start
	for i := range weeks {
		for j := 0; j < 7; j++ {
			weeks[i].Days = append(weeks[i].Days, models.HeatmapCell{
				Date:  day.Format(models.DateLayout),
				Level: (i + j) % (models.MaxLevel + 1),
			})
			day = day.AddDate(0, 0, 1)
		}
	}
	return weeks
}

func TestHeatmap(t *testing.T) {
	t.Parallel()

	// Sunday
	weeks := weeksFrom(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), 6)
	out := render.Heatmap(weeks)
	lines := strings.Split(out, "\n")

	// month header, 7 weekday rows, legend
	require.Len(t, lines, 9)
	assert.Contains(t, lines[0], "Jan")
	assert.Contains(t, lines[0], "Feb")
	assert.True(t, strings.HasPrefix(lines[2], "Mon"))
	for _, row := range lines[1:8] {
		assert.Equal(t, len(weeks), strings.Count(row, "■"), row)
	}
	assert.Contains(t, lines[8], "Less")
	assert.Contains(t, lines[8], "More")
	assert.Equal(t, 5, strings.Count(lines[8], "■"))
}

func TestHeatmap_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, render.Heatmap(nil))
}

func TestSummaryAndSources(t *testing.T) {
	t.Parallel()

	out := render.Summary(models.Summary{
		Total: 42, MaxDaily: 9, ActiveDays: 6, MeanActive: 7,
		LongestStreak: 4, CurrentStreak: 2, FirstDate: "2024-01-01", LastDate: "2024-02-01",
	})
	assert.Contains(t, out, "42 contributions")
	assert.Contains(t, out, "longest streak: 4")
	assert.Contains(t, out, "2024-01-01 to 2024-02-01")

	out = render.Sources([]models.SourceResult{
		{Name: "GitHub", Username: "octo", Status: models.SourceOK, Days: 12},
		{Name: "GitLab", Username: "tanuki", Status: models.SourceError, Error: "auth"},
	})
	assert.Contains(t, out, "GitHub/octo: ok (12 days)")
	assert.Contains(t, out, "GitLab/tanuki: error (auth)")
}
