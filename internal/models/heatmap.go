package models

// Heatmap intensity bounds
const (
	MinLevel = 0
	MaxLevel = 4
)

// HeatmapCell represents a single day in the calendar grid
type HeatmapCell struct {
	Date  string `json:"date"`  // YYYY-MM-DD
	Count int64  `json:"count"` // Merged contribution count
	Level int    `json:"level"` // 0-4
}

// HeatmapWeek is a Sunday-anchored run of 7 cells
type HeatmapWeek struct {
	Days []HeatmapCell `json:"days"`
}

// Summary represents aggregate statistics over a contribution history
type Summary struct {
	Total         int64   `json:"total"`
	MaxDaily      int64   `json:"max_daily"`
	ActiveDays    int     `json:"active_days"`
	MeanActive    float64 `json:"mean_active"` // Mean count per active day
	LongestStreak int     `json:"longest_streak"`
	CurrentStreak int     `json:"current_streak"`
	FirstDate     string  `json:"first_date,omitempty"`
	LastDate      string  `json:"last_date,omitempty"`
}

// HeatmapResponse represents the heatmap API response
type HeatmapResponse struct {
	Heatmap []HeatmapWeek  `json:"heatmap"`
	Summary Summary        `json:"summary"`
	Sources []SourceResult `json:"sources,omitempty"`
	Cached  bool           `json:"cached"`
}

// StatsResponse represents the sorted history API response
type StatsResponse struct {
	History []DailyCount   `json:"history"`
	Sources []SourceResult `json:"sources,omitempty"`
	Cached  bool           `json:"cached"`
}
