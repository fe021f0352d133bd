package models

// CategoryStat holds per-category counters for the stats view.
// Percentages are rounded independently, so the three values are not
// guaranteed to sum to exactly 100.
type CategoryStat struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage int     `json:"percentage"`
	AvgRating  float64 `json:"avg_rating"`
}

// MonthlyBucket is one calendar month of the 6-month time series.
// Label carries the numeric month only ("3월"), matching the chart axis.
type MonthlyBucket struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Label     string  `json:"label"`
	Reviews   int     `json:"reviews"`
	AvgRating float64 `json:"avg_rating"`
}

// TopCategoryNone is reported when the user has no records at all.
const TopCategoryNone = "none"

type StatsSnapshot struct {
	TotalCount  int             `json:"total_count"`
	AvgRating   float64         `json:"avg_rating"`
	Categories  []CategoryStat  `json:"categories"`
	TopCategory string          `json:"top_category"`
	LastReview  string          `json:"last_review,omitempty"`
	Highest     *Record         `json:"highest_rated,omitempty"`
	Lowest      *Record         `json:"lowest_rated,omitempty"`
	Monthly     []MonthlyBucket `json:"monthly"`
}

// Insight is the qualitative read of the monthly series. GrowthRate is
// the month-over-month change in percent; nil when the previous month
// had no reviews to compare against.
type Insight struct {
	HasGrowth    bool     `json:"has_growth"`
	HasDecline   bool     `json:"has_decline"`
	IsConsistent bool     `json:"is_consistent"`
	GrowthRate   *float64 `json:"growth_rate,omitempty"`
	Messages     []string `json:"messages"`
}
