package engine

import (
	"testing"

	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

func TestComputeDataQuality(t *testing.T) {
	report := dm.NewReport("t", daysAgo(30), daysAgo(0), "full", "")
	report.SetList(dm.SourceThreads, []dm.Item{
		{ID: "R1", Date: daysAgo(2), DateConfidence: dm.ConfidenceHigh, EngagementVerified: true},
		{ID: "R2", DateConfidence: dm.ConfidenceLow},
	})
	report.SetList(dm.SourcePages, []dm.Item{
		// 网页条目的互动核实不计入统计
		{ID: "W1", Date: daysAgo(4), DateConfidence: dm.ConfidenceHigh, EngagementVerified: true},
	})
	report.Errors[dm.SourceNews] = "boom"
	report.Summary = &dm.Summary{Text: "s"}
	report.FAQs = []dm.FAQ{{Question: "q", Answer: "a"}}

	q := ComputeDataQuality(report)

	if q.TotalItems != 3 {
		t.Errorf("TotalItems = %d, want 3", q.TotalItems)
	}
	if q.VerifiedDatesCount != 2 {
		t.Errorf("VerifiedDatesCount = %d, want 2", q.VerifiedDatesCount)
	}
	if q.VerifiedEngagementCount != 1 {
		t.Errorf("互动核实只统计带互动指标的来源族, got %d", q.VerifiedEngagementCount)
	}
	if q.AvgRecencyDays != 3.0 {
		t.Errorf("AvgRecencyDays = %v, want 3.0", q.AvgRecencyDays)
	}
	if len(q.SourcesAvailable) != 2 {
		t.Errorf("SourcesAvailable = %v", q.SourcesAvailable)
	}
	if len(q.SourcesFailed) != 1 || q.SourcesFailed[0] != "news" {
		t.Errorf("SourcesFailed = %v", q.SourcesFailed)
	}
	if !q.HasSummary || q.FAQCount != 1 {
		t.Errorf("摘要与 FAQ 统计不符: %+v", q)
	}
}

func TestComputeDataQualityEmpty(t *testing.T) {
	q := ComputeDataQuality(dm.NewReport("t", "a", "b", "hn-only", ""))
	if q.TotalItems != 0 {
		t.Errorf("TotalItems = %d, want 0", q.TotalItems)
	}
	if q.AvgRecencyDays != 30.0 {
		t.Errorf("无日期时平均新鲜度应按窗口上限计, got %v", q.AvgRecencyDays)
	}
}
