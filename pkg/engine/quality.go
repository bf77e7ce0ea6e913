package engine

import (
	"math"

	"github.com/iWorld-y/topic_radar/pkg/dates"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// ComputeDataQuality 汇总报告的数据质量指标，
// 让使用者知道结论建立在多可靠的数据之上。
func ComputeDataQuality(report *dm.Report) *dm.DataQuality {
	q := &dm.DataQuality{}

	var recencySum float64
	var recencyCount int

	for _, sl := range report.SourceLists() {
		if len(sl.Items) > 0 {
			q.SourcesAvailable = append(q.SourcesAvailable, string(sl.Source))
		}

		for _, item := range sl.Items {
			q.TotalItems++

			if item.DateConfidence == dm.ConfidenceHigh {
				q.VerifiedDatesCount++
			}
			if age, ok := dates.DaysAgo(item.Date); ok {
				recencySum += float64(age)
				recencyCount++
			}

			// 互动数据只对带互动指标的来源族有意义
			switch sl.Source {
			case dm.SourceThreads, dm.SourcePosts, dm.SourceAggregator:
				if item.EngagementVerified {
					q.VerifiedEngagementCount++
				}
			}
		}
	}

	for _, source := range dm.PriorityOrder() {
		if _, ok := report.Errors[source]; ok {
			q.SourcesFailed = append(q.SourcesFailed, string(source))
		}
	}

	if q.TotalItems > 0 {
		q.VerifiedDatesPercent = round1(float64(q.VerifiedDatesCount) / float64(q.TotalItems) * 100)
		q.VerifiedEngagementPercent = round1(float64(q.VerifiedEngagementCount) / float64(q.TotalItems) * 100)
	}

	// 没有任何可用日期时按窗口上限计，提醒使用者新鲜度未知
	q.AvgRecencyDays = 30.0
	if recencyCount > 0 {
		q.AvgRecencyDays = round1(recencySum / float64(recencyCount))
	}

	q.HasSummary = report.Summary != nil && report.Summary.Text != ""
	q.HasInfobox = report.Infobox != nil
	q.FAQCount = len(report.FAQs)

	return q
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
