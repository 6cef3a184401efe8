// internal/models/statistics.go
package models

// StatisticsSnapshot is the derived report for one trailing date range. It is
// computed on demand and never persisted.
type StatisticsSnapshot struct {
	Applications  ApplicationCounts   `json:"applications"`
	Performance   PerformanceMetrics  `json:"performance"`
	BusinessTypes []BusinessTypeCount `json:"businessTypes"`
	MonthlyData   []MonthlyBucket     `json:"monthlyData"`
	Trends        TrendMetrics        `json:"trends"`
}

// ApplicationCounts holds per-bucket counts over the requested window.
// Pending covers pending and submitted records; InReview covers every
// in-review synonym. The buckets are not exhaustive, so their sum may be
// less than Total.
type ApplicationCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	InReview int `json:"inReview"`
}

// PerformanceMetrics holds processing-time and rate figures. Rates are whole
// percentages; AvgProcessingTime is whole days to one decimal place.
type PerformanceMetrics struct {
	AvgProcessingTime float64 `json:"avgProcessingTime"`
	SLACompliance     int     `json:"slaCompliance"`
	ApprovalRate      int     `json:"approvalRate"`
	RejectionRate     int     `json:"rejectionRate"`
}

// BusinessTypeCount is one row of the business-type distribution.
type BusinessTypeCount struct {
	Type       string `json:"type"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// MonthlyBucket is one calendar month of the six-month trend series.
type MonthlyBucket struct {
	Month        string `json:"month"`
	Applications int    `json:"applications"`
	Approved     int    `json:"approved"`
	Rejected     int    `json:"rejected"`
}

// TrendMetrics holds period-over-period growth figures, clamped to [0, 100].
// ConversionRate aliases the approval rate.
type TrendMetrics struct {
	WeeklyGrowth   int `json:"weeklyGrowth"`
	MonthlyGrowth  int `json:"monthlyGrowth"`
	ConversionRate int `json:"conversionRate"`
}
