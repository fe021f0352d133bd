package stats

import (
	"fmt"

	"recordmoa/pkg/models"
)

// BuildInsight derives the qualitative trend read from the monthly
// series. With fewer than 3 buckets there is nothing to compare, so it
// reports insufficient data and leaves every flag false.
func BuildInsight(buckets []models.MonthlyBucket) models.Insight {
	if len(buckets) < 3 {
		return models.Insight{
			Messages: []string{"통계를 내기에는 아직 기록이 부족해요. 꾸준히 기록을 남겨보세요!"},
		}
	}

	var in models.Insight

	firstMean := meanReviews(buckets[:3])
	secondMean := meanReviews(buckets[len(buckets)-3:])
	// growth only counts when the recent average beats the early one by
	// more than 10%
	in.HasGrowth = secondMean > firstMean*1.1

	last := buckets[len(buckets)-1]
	prev := buckets[len(buckets)-2]
	in.HasDecline = last.Reviews < prev.Reviews

	in.IsConsistent = true
	minReviews := buckets[0].Reviews
	for _, b := range buckets {
		if b.Reviews == 0 {
			in.IsConsistent = false
		}
		if b.Reviews < minReviews {
			minReviews = b.Reviews
		}
	}

	if prev.Reviews > 0 {
		rate := round1(float64(last.Reviews-prev.Reviews) / float64(prev.Reviews) * 100)
		in.GrowthRate = &rate
	}

	in.Messages = buildMessages(in, buckets, firstMean, secondMean, minReviews)
	return in
}

func buildMessages(in models.Insight, buckets []models.MonthlyBucket, firstMean, secondMean float64, minReviews int) []string {
	var msgs []string

	last := buckets[len(buckets)-1]
	prev := buckets[len(buckets)-2]

	if in.HasGrowth {
		msgs = append(msgs, fmt.Sprintf(
			"기록 작성이 꾸준히 늘고 있어요. 최근 3개월 평균 %.1f건으로 이전 3개월 평균 %.1f건보다 늘었습니다.",
			secondMean, firstMean))
	}
	if in.HasDecline {
		msgs = append(msgs, fmt.Sprintf(
			"%d월에는 %d건에서 %d건으로 소폭 감소했어요. 다음 달 흐름을 지켜볼 필요가 있습니다.",
			last.Month, prev.Reviews, last.Reviews))
	}
	if in.IsConsistent {
		msgs = append(msgs, fmt.Sprintf(
			"매월 최소 %d건 이상 빠짐없이 기록하고 있어요. 좋은 기록 습관을 유지하고 있습니다.",
			minReviews))
	}

	if in.GrowthRate != nil {
		rate := *in.GrowthRate
		switch {
		case rate > 0:
			msgs = append(msgs, fmt.Sprintf("지난달 대비 +%.1f%% 증가했습니다.", rate))
		case rate < 0:
			msgs = append(msgs, fmt.Sprintf("지난달 대비 %.1f%% 감소했습니다.", rate))
		default:
			msgs = append(msgs, "지난달과 같은 수의 기록을 남겼습니다.")
		}
	} else {
		msgs = append(msgs, "지난달 데이터가 없어 증감률을 계산할 수 없습니다.")
	}

	return msgs
}

func meanReviews(buckets []models.MonthlyBucket) float64 {
	if len(buckets) == 0 {
		return 0
	}
	sum := 0
	for _, b := range buckets {
		sum += b.Reviews
	}
	return float64(sum) / float64(len(buckets))
}
