// Package render draws contribution heatmaps for the terminal.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jengzang/forgeheat/internal/models"
)

const (
	cellGlyph  = "■"
	cellWidth  = 2
	labelWidth = 4
)

var (
	levelStyles = [models.MaxLevel + 1]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("#30363d")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#0e4429")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#006d32")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#26a641")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#39d353")),
	}
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	titleStyle = lipgloss.NewStyle().Bold(true)

	// Only alternate rows are labelled, as on the forges themselves
	dayLabels = [7]string{"", "Mon", "", "Wed", "", "Fri", ""}
)

func cell(level int) string {
	if level < models.MinLevel || level > models.MaxLevel {
		level = models.MinLevel
	}
	return levelStyles[level].Render(cellGlyph)
}

// Heatmap renders weeks as seven weekday rows with a month header
func Heatmap(weeks []models.HeatmapWeek) string {
	if len(weeks) == 0 {
		return ""
	}

	lines := make([]string, 0, 9)
	lines = append(lines, labelStyle.Render(monthHeader(weeks)))

	for day := 0; day < 7; day++ {
		var b strings.Builder
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, dayLabels[day])))
		for _, w := range weeks {
			if day < len(w.Days) {
				b.WriteString(cell(w.Days[day].Level))
			} else {
				b.WriteString(" ")
			}
			b.WriteString(strings.Repeat(" ", cellWidth-1))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}

	lines = append(lines, legend())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// monthHeader places a month abbreviation above the first week of each month
// when there is room for it
func monthHeader(weeks []models.HeatmapWeek) string {
	header := []rune(strings.Repeat(" ", labelWidth+len(weeks)*cellWidth))
	lastMonth := time.Month(0)
	nextFree := 0

	for i, w := range weeks {
		if len(w.Days) == 0 {
			continue
		}
		first, err := time.Parse(models.DateLayout, w.Days[0].Date)
		if err != nil {
			continue
		}
		if first.Month() == lastMonth {
			continue
		}
		lastMonth = first.Month()

		pos := labelWidth + i*cellWidth
		name := first.Month().String()[:3]
		if pos < nextFree || pos+len(name) > len(header) {
			continue
		}
		copy(header[pos:], []rune(name))
		nextFree = pos + len(name) + 1
	}
	return strings.TrimRight(string(header), " ")
}

func legend() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Less "))
	for level := models.MinLevel; level <= models.MaxLevel; level++ {
		b.WriteString(cell(level))
		b.WriteString(" ")
	}
	b.WriteString(labelStyle.Render("More"))
	return b.String()
}

// Summary renders the headline numbers of a contribution summary
func Summary(s models.Summary) string {
	rows := []string{
		titleStyle.Render(fmt.Sprintf("%d contributions", s.Total)),
		fmt.Sprintf("active days: %d  busiest day: %d  mean per active day: %.1f",
			s.ActiveDays, s.MaxDaily, s.MeanActive),
		fmt.Sprintf("longest streak: %d  current streak: %d", s.LongestStreak, s.CurrentStreak),
	}
	if s.FirstDate != "" {
		rows = append(rows, labelStyle.Render(fmt.Sprintf("%s to %s", s.FirstDate, s.LastDate)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Sources renders one line per provider outcome
func Sources(sources []models.SourceResult) string {
	lines := make([]string, 0, len(sources))
	for _, s := range sources {
		line := fmt.Sprintf("%s/%s: %s", s.Name, s.Username, s.Status)
		switch s.Status {
		case models.SourceOK:
			line += fmt.Sprintf(" (%d days)", s.Days)
		default:
			if s.Error != "" {
				line += " (" + s.Error + ")"
			}
		}
		lines = append(lines, labelStyle.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
