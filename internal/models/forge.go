package models

import "sort"

// DateLayout is the calendar-day format used for every date key
const DateLayout = "2006-01-02"

// ForgeRequest represents one forge account to pull contributions from
type ForgeRequest struct {
	Name     string `json:"name" binding:"required"` // Provider name, matched case-insensitively
	Username string `json:"username"`
	Token    string `json:"token"`
	URL      string `json:"url,omitempty"` // Base URL, required for self-hosted forges
}

// DailyCount represents a single day of contribution activity
type DailyCount struct {
	Date  string `json:"date"`  // YYYY-MM-DD
	Count int64  `json:"count"` // Non-negative
}

// Totals maps a date to its accumulated contribution count
type Totals map[string]int64

// Add merges counts into the totals additively
func (t Totals) Add(counts []DailyCount) {
	for _, c := range counts {
		t[c.Date] += c.Count
	}
}

// Max returns the largest single-day count, or 0 when empty
func (t Totals) Max() int64 {
	var max int64
	for _, v := range t {
		if v > max {
			max = v
		}
	}
	return max
}

// History returns the totals as a list sorted by date ascending
func (t Totals) History() []DailyCount {
	history := make([]DailyCount, 0, len(t))
	for date, count := range t {
		history = append(history, DailyCount{Date: date, Count: count})
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Date < history[j].Date
	})
	return history
}

// SourceStatus values
const (
	SourceOK              = "ok"
	SourceError           = "error"
	SourceUnknownProvider = "unknown_provider"
)

// SourceResult represents the outcome of one forge request in a batch
type SourceResult struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Status   string `json:"status"`          // ok, error, unknown_provider
	Days     int    `json:"days"`            // Number of dated observations returned
	Error    string `json:"error,omitempty"` // Error kind, never the raw upstream message
}

// AggregateResult is the outcome of one aggregation batch
type AggregateResult struct {
	Totals  Totals
	Sources []SourceResult
}

// AllFailed reports whether at least one provider was dispatched and none succeeded
func (r AggregateResult) AllFailed() bool {
	dispatched := 0
	for _, s := range r.Sources {
		switch s.Status {
		case SourceOK:
			return false
		case SourceError:
			dispatched++
		}
	}
	return dispatched > 0
}
