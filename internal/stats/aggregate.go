// Package stats computes the derived statistics snapshot for the review
// dashboard: grouped counts, processing rates, business-type distribution,
// monthly buckets, and period-over-period growth. Aggregation is a bounded
// single pass over records already fetched from the gateway.
package stats

import (
	"math"
	"sort"
	"time"

	"vyapara-admin/internal/models"
)

var windowDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
	"1y":  365,
}

// WindowDays maps a range key to its trailing-window length in days.
// Unknown keys fall back to 30.
func WindowDays(rangeKey string) int {
	if d, ok := windowDays[rangeKey]; ok {
		return d
	}
	return 30
}

// Params carries the externally configured inputs to an aggregation run.
type Params struct {
	SLADays int
	Now     time.Time
}

// Aggregate builds a snapshot for the trailing window named by rangeKey.
// The record set must extend far enough into the past to cover the growth
// comparison periods; records before the window only feed the trends.
func Aggregate(records []models.Application, rangeKey string, p Params) models.StatisticsSnapshot {
	days := WindowDays(rangeKey)
	windowStart := p.Now.AddDate(0, 0, -days)

	var windowed []models.Application
	for _, r := range records {
		if !r.CreatedAt.Before(windowStart) {
			windowed = append(windowed, r)
		}
	}

	counts := countByBucket(windowed)
	perf := performance(windowed, counts, p.SLADays)

	return models.StatisticsSnapshot{
		Applications:  counts,
		Performance:   perf,
		BusinessTypes: businessTypes(windowed),
		MonthlyData:   monthlyBuckets(windowed, p.Now),
		Trends: models.TrendMetrics{
			WeeklyGrowth:   growth(records, p.Now, 7),
			MonthlyGrowth:  growth(records, p.Now, 30),
			ConversionRate: perf.ApprovalRate,
		},
	}
}

// countByBucket tallies the status buckets. Pending absorbs submitted
// records, in-review absorbs every review synonym; other statuses only count
// toward the total, so the buckets need not sum to it.
func countByBucket(records []models.Application) models.ApplicationCounts {
	counts := models.ApplicationCounts{Total: len(records)}
	for _, r := range records {
		switch models.NormalizeStatus(r.Status) {
		case models.StatusPending, models.StatusSubmitted:
			counts.Pending++
		case models.StatusUnderReview:
			counts.InReview++
		case models.StatusApproved:
			counts.Approved++
		case models.StatusRejected:
			counts.Rejected++
		}
	}
	return counts
}

func performance(records []models.Application, counts models.ApplicationCounts, slaDays int) models.PerformanceMetrics {
	var totalDays, terminal, withinSLA int
	for _, r := range records {
		d, ok := processingDays(r)
		if !ok {
			continue
		}
		terminal++
		totalDays += d
		if d <= slaDays {
			withinSLA++
		}
	}

	perf := models.PerformanceMetrics{}
	if terminal > 0 {
		mean := float64(totalDays) / float64(terminal)
		perf.AvgProcessingTime = math.Round(mean*10) / 10
		perf.SLACompliance = percent(withinSLA, terminal)
	}
	if counts.Total > 0 {
		perf.ApprovalRate = percent(counts.Approved, counts.Total)
		perf.RejectionRate = percent(counts.Rejected, counts.Total)
	}
	return perf
}

// processingDays returns the whole days between submission (or creation,
// when never submitted) and the terminal timestamp. A record whose status
// was moved back out of a terminal state no longer counts, whatever decision
// timestamps linger on the row.
func processingDays(r models.Application) (int, bool) {
	if !models.NormalizeStatus(r.Status).IsTerminal() {
		return 0, false
	}
	terminal := r.ApprovedAt
	if terminal == nil {
		terminal = r.RejectedAt
	}
	if terminal == nil {
		return 0, false
	}
	basis := r.CreatedAt
	if r.SubmittedAt != nil {
		basis = *r.SubmittedAt
	}
	return int(math.Floor(terminal.Sub(basis).Hours() / 24)), true
}

func businessTypes(records []models.Application) []models.BusinessTypeCount {
	byType := make(map[string]int)
	for _, r := range records {
		t := r.BusinessType
		if t == "" {
			t = "Unknown"
		}
		byType[t]++
	}

	out := make([]models.BusinessTypeCount, 0, len(byType))
	for t, c := range byType {
		out = append(out, models.BusinessTypeCount{
			Type:       t,
			Count:      c,
			Percentage: percent(c, len(records)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// monthlyBuckets produces exactly six calendar-month buckets ending at the
// current month, however sparse the data.
func monthlyBuckets(records []models.Application, now time.Time) []models.MonthlyBucket {
	buckets := make([]models.MonthlyBucket, 0, 6)
	for i := 5; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		bucket := models.MonthlyBucket{Month: start.Month().String()[:3]}
		for _, r := range records {
			if r.CreatedAt.Before(start) || !r.CreatedAt.Before(end) {
				continue
			}
			bucket.Applications++
			switch models.NormalizeStatus(r.Status) {
			case models.StatusApproved:
				bucket.Approved++
			case models.StatusRejected:
				bucket.Rejected++
			}
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// growth compares the count of records created in the trailing periodDays
// against the equal-length period immediately before it. The result is
// clamped to [0, 100]: negative growth reports 0, and growth from an empty
// previous period reports 100.
func growth(records []models.Application, now time.Time, periodDays int) int {
	curStart := now.AddDate(0, 0, -periodDays)
	prevStart := now.AddDate(0, 0, -2*periodDays)

	var cur, prev int
	for _, r := range records {
		switch {
		case !r.CreatedAt.Before(curStart):
			cur++
		case !r.CreatedAt.Before(prevStart):
			prev++
		}
	}

	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}

	pct := int(math.Round(float64(cur-prev) / float64(prev) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// percent is count/total as a whole percentage, rounded half away from zero.
func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
