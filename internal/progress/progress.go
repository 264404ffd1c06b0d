// Package progress holds the arithmetic behind daily progress: the confidence
// update rule, completion rates, rollup statistics and the streak.
package progress

import (
	"sort"
	"time"

	"alcyxob/confidence-coach/internal/domain"
)

// QualifyingRate is the completion percentage a day needs to extend a streak.
const QualifyingRate = 50.0

const dayKeyLayout = "2006-01-02"

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// CompletionRate is completed/total in percent; zero when total is zero.
func CompletionRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// ConfidenceChange is symmetric around 50% completion: roughly -5..+5 per day.
func ConfidenceChange(completed, total int) int {
	if total <= 0 {
		return 0
	}
	ratio := float64(completed) / float64(total)
	return domain.RoundHalfUp((ratio - 0.5) * 10)
}

// ApplyChange adds change to current and clamps the result to [0, 100].
func ApplyChange(current, change int) int {
	return domain.ClampConfidence(current + change)
}

// Trend converts records ordered newest first into an oldest-first series.
func Trend(newestFirst []domain.Progress) []domain.TrendPoint {
	out := make([]domain.TrendPoint, len(newestFirst))
	for i, p := range newestFirst {
		out[len(newestFirst)-1-i] = domain.TrendPoint{Date: p.Date, Confidence: p.ConfidenceScore}
	}
	return out
}

// Summarize computes the rollup for records already restricted to a window.
// An empty slice yields the zero Stats.
func Summarize(records []domain.Progress, now time.Time, loc *time.Location) domain.Stats {
	if len(records) == 0 {
		return domain.Stats{}
	}

	var stats domain.Stats
	confidenceSum := 0
	for _, p := range records {
		stats.TotalTasks += p.TotalTasks
		stats.CompletedTasks += p.TasksCompleted
		confidenceSum += p.ConfidenceScore
	}
	// Ratio of sums, not an average of daily rates.
	stats.AverageCompletion = domain.RoundHalfUp(CompletionRate(stats.CompletedTasks, stats.TotalTasks))
	stats.AverageConfidence = domain.RoundHalfUp(float64(confidenceSum) / float64(len(records)))
	stats.Streak = Streak(records, now, loc)
	return stats
}

// Streak counts consecutive qualifying calendar days ending today. Records
// are bucketed by day, so ordering and duplicate days do not matter; a day
// qualifies when its combined completion rate is at least QualifyingRate.
func Streak(records []domain.Progress, now time.Time, loc *time.Location) int {
	type bucket struct{ completed, total int }
	days := make(map[string]*bucket, len(records))
	for _, p := range records {
		key := p.Date.In(loc).Format(dayKeyLayout)
		b, ok := days[key]
		if !ok {
			b = &bucket{}
			days[key] = b
		}
		b.completed += p.TasksCompleted
		b.total += p.TotalTasks
	}

	streak := 0
	day := StartOfDay(now, loc)
	for {
		b, ok := days[day.Format(dayKeyLayout)]
		if !ok || CompletionRate(b.completed, b.total) < QualifyingRate {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// CategoryBreakdown groups tasks by category, in first-seen order.
func CategoryBreakdown(tasks []domain.Task) []domain.CategoryStat {
	index := make(map[string]int)
	out := []domain.CategoryStat{}
	for _, t := range tasks {
		name := t.Category
		if name == "" {
			name = "general"
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, domain.CategoryStat{Name: name})
		}
		out[i].Total++
		if t.Completed {
			out[i].Completed++
		}
	}
	for i := range out {
		out[i].Rate = CompletionRate(out[i].Completed, out[i].Total)
	}
	return out
}

// SortNewestFirst orders records by date descending in place.
func SortNewestFirst(records []domain.Progress) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
}
