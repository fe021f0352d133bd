package records

import (
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"recordmoa/pkg/models"
)

// The list view is computed fully client side of the store: the repo
// returns the whole user set and the functions here derive the page.
// They never mutate their input slice.

type DateRange string

const (
	DateRangeAll    DateRange = "all"
	DateRange1Month DateRange = "1m"
	DateRange3Month DateRange = "3m"
	DateRange6Month DateRange = "6m"
	DateRange1Year  DateRange = "1y"
)

// ParseDateRange maps a query param to a range. Empty means "all".
func ParseDateRange(s string) (DateRange, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return DateRangeAll, true
	case "1m", "1month":
		return DateRange1Month, true
	case "3m", "3months":
		return DateRange3Month, true
	case "6m", "6months":
		return DateRange6Month, true
	case "1y", "1year":
		return DateRange1Year, true
	}
	return DateRangeAll, false
}

// Cutoff returns the inclusive lower bound for created_at. Calendar
// arithmetic, not fixed-day: "1m" subtracts one calendar month.
// ok is false for the "all" range, which has no cutoff.
func (r DateRange) Cutoff(now time.Time) (cutoff time.Time, ok bool) {
	switch r {
	case DateRange1Month:
		return now.AddDate(0, -1, 0), true
	case DateRange3Month:
		return now.AddDate(0, -3, 0), true
	case DateRange6Month:
		return now.AddDate(0, -6, 0), true
	case DateRange1Year:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

// FilterByDate keeps records created at or after the range cutoff.
// Records without a creation timestamp are dropped under any non-"all"
// range, since they cannot be placed on the timeline.
func FilterByDate(recs []models.Record, rng DateRange, now time.Time) []models.Record {
	cutoff, ok := rng.Cutoff(now)
	if !ok {
		return recs
	}

	out := make([]models.Record, 0, len(recs))
	for _, rec := range recs {
		if rec.CreatedAt.IsZero() {
			continue
		}
		if !rec.CreatedAt.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterBySearch keeps records where the trimmed query is a
// case-insensitive substring of the title, review, or any field of the
// record's category group. An empty query keeps everything.
func FilterBySearch(recs []models.Record, query string) []models.Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return recs
	}

	out := make([]models.Record, 0, len(recs))
	for _, rec := range recs {
		if matchesQuery(rec, q) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesQuery(rec models.Record, q string) bool {
	fields := []string{rec.Title, rec.Review}

	switch rec.Category {
	case models.CategoryMovie:
		fields = append(fields, rec.Director, strings.Join(rec.Cast, ", "))
	case models.CategoryBook:
		fields = append(fields, rec.Author, rec.Publisher)
	case models.CategoryPlace:
		fields = append(fields, rec.Location)
	}

	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

type SortOption string

const (
	SortNewest     SortOption = "newest"
	SortOldest     SortOption = "oldest"
	SortRatingHigh SortOption = "rating_high"
	SortRatingLow  SortOption = "rating_low"
	SortTitleAsc   SortOption = "title_asc"
	SortTitleDesc  SortOption = "title_desc"
)

// ParseSortOption maps a query param to a sort option. Empty means the
// default, newest first.
func ParseSortOption(s string) (SortOption, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newest":
		return SortNewest, true
	case "oldest":
		return SortOldest, true
	case "rating_high", "rating-high":
		return SortRatingHigh, true
	case "rating_low", "rating-low":
		return SortRatingLow, true
	case "title_asc", "title-asc":
		return SortTitleAsc, true
	case "title_desc", "title-desc":
		return SortTitleDesc, true
	}
	return SortNewest, false
}

// SortRecords returns a sorted copy. The sort is stable: records with
// equal keys keep their input order. Missing creation timestamps sort
// as epoch 0. Title options use Korean-aware collation.
func SortRecords(recs []models.Record, opt SortOption) []models.Record {
	out := make([]models.Record, len(recs))
	copy(out, recs)

	switch opt {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return createdMillis(out[i]) < createdMillis(out[j])
		})
	case SortRatingHigh:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	case SortRatingLow:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating < out[j].Rating
		})
	case SortTitleAsc:
		col := collate.New(language.Korean)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Title, out[j].Title) < 0
		})
	case SortTitleDesc:
		col := collate.New(language.Korean)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Title, out[j].Title) > 0
		})
	default: // SortNewest
		sort.SliceStable(out, func(i, j int) bool {
			return createdMillis(out[i]) > createdMillis(out[j])
		})
	}
	return out
}

func createdMillis(rec models.Record) int64 {
	if rec.CreatedAt.IsZero() {
		return 0
	}
	return rec.CreatedAt.UnixMilli()
}

const DefaultPageSize = 10

// Paginate slices out one page (1-based) and reports the page count.
// Out-of-range pages yield an empty slice, never an error.
func Paginate(recs []models.Record, page, pageSize int) (pageRecs []models.Record, totalPages int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	totalPages = int(math.Ceil(float64(len(recs)) / float64(pageSize)))

	start := (page - 1) * pageSize
	if start >= len(recs) {
		return []models.Record{}, totalPages
	}
	end := start + pageSize
	if end > len(recs) {
		end = len(recs)
	}
	return recs[start:end], totalPages
}

// VisiblePages computes the page numbers the pager shows: first, last,
// and the current page with its neighbors, ascending. Gaps between the
// returned numbers are where the pager renders ellipses.
func VisiblePages(page, totalPages int) []int {
	if totalPages < 1 {
		return []int{}
	}

	seen := make(map[int]bool)
	var out []int
	for _, p := range []int{1, page - 1, page, page + 1, totalPages} {
		if p < 1 || p > totalPages || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
