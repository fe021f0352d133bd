package stats

import (
	"fmt"
	"math"
	"time"

	"recordmoa/pkg/models"
)

// Aggregate computes the full stats snapshot from scratch over the
// user's record set. It tolerates missing optional fields (records
// without a creation timestamp simply fall out of the time-based
// numbers) and never divides by zero.
func Aggregate(recs []models.Record, now time.Time) models.StatsSnapshot {
	snap := models.StatsSnapshot{
		TotalCount:  len(recs),
		TopCategory: models.TopCategoryNone,
		Monthly:     MonthlyBuckets(recs, now),
	}

	counts := make(map[string]int, len(models.Categories))
	ratingSums := make(map[string]int, len(models.Categories))
	totalRating := 0
	var lastCreated time.Time

	for i := range recs {
		rec := &recs[i]
		counts[rec.Category]++
		ratingSums[rec.Category] += rec.Rating
		totalRating += rec.Rating

		if !rec.CreatedAt.IsZero() && rec.CreatedAt.After(lastCreated) {
			lastCreated = rec.CreatedAt
		}

		snap.Highest = pickExtreme(snap.Highest, rec, true)
		snap.Lowest = pickExtreme(snap.Lowest, rec, false)
	}

	if len(recs) > 0 {
		snap.AvgRating = round1(float64(totalRating) / float64(len(recs)))
	}

	snap.Categories = make([]models.CategoryStat, 0, len(models.Categories))
	topCount := 0
	for _, cat := range models.Categories {
		stat := models.CategoryStat{
			Category:   cat,
			Count:      counts[cat],
			Percentage: percentage(counts[cat], len(recs)),
		}
		if stat.Count > 0 {
			stat.AvgRating = round1(float64(ratingSums[cat]) / float64(stat.Count))
		}
		snap.Categories = append(snap.Categories, stat)

		// first max wins, in category order
		if stat.Count > topCount {
			topCount = stat.Count
			snap.TopCategory = cat
		}
	}

	if !lastCreated.IsZero() {
		snap.LastReview = recencyLabel(lastCreated, now)
	}

	return snap
}

// pickExtreme keeps the best (or worst) rated record seen so far.
// Ties go to the more recently created record, which makes the choice
// deterministic regardless of input order.
func pickExtreme(cur *models.Record, cand *models.Record, highest bool) *models.Record {
	if cur == nil {
		return cand
	}
	if highest {
		if cand.Rating > cur.Rating {
			return cand
		}
		if cand.Rating == cur.Rating && cand.CreatedAt.After(cur.CreatedAt) {
			return cand
		}
		return cur
	}
	if cand.Rating < cur.Rating {
		return cand
	}
	if cand.Rating == cur.Rating && cand.CreatedAt.After(cur.CreatedAt) {
		return cand
	}
	return cur
}

// MonthlyBuckets builds exactly 6 calendar-month buckets ending at the
// current month, pre-seeded so empty months still appear. Records
// outside the window (or without a creation timestamp) are ignored.
func MonthlyBuckets(recs []models.Record, now time.Time) []models.MonthlyBucket {
	type agg struct {
		count       int
		totalRating int
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -5, 0)
	byKey := make(map[string]*agg, 6)

	keys := make([]string, 0, 6)
	months := make([]time.Time, 0, 6)
	for i := 0; i < 6; i++ {
		m := start.AddDate(0, i, 0)
		k := monthKey(m.Year(), int(m.Month()))
		keys = append(keys, k)
		months = append(months, m)
		byKey[k] = &agg{}
	}

	for _, rec := range recs {
		if rec.CreatedAt.IsZero() {
			continue
		}
		k := monthKey(rec.CreatedAt.Year(), int(rec.CreatedAt.Month()))
		if a, ok := byKey[k]; ok {
			a.count++
			a.totalRating += rec.Rating
		}
	}

	out := make([]models.MonthlyBucket, 0, 6)
	for i, k := range keys {
		a := byKey[k]
		b := models.MonthlyBucket{
			Year:    months[i].Year(),
			Month:   int(months[i].Month()),
			Label:   fmt.Sprintf("%d월", int(months[i].Month())),
			Reviews: a.count,
		}
		if a.count > 0 {
			b.AvgRating = round1(float64(a.totalRating) / float64(a.count))
		}
		out = append(out, b)
	}
	return out
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// recencyLabel expresses the newest record's age in calendar days.
func recencyLabel(last, now time.Time) string {
	days := calendarDays(last, now)
	switch {
	case days <= 0:
		return "오늘"
	case days == 1:
		return "어제"
	default:
		return fmt.Sprintf("%d일 전", days)
	}
}

func calendarDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// round1 rounds half up to one decimal place.
func round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// percentage is rounded independently per category, so the parts may
// not sum to 100. Zero total short-circuits to 0.
func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
