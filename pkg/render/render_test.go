package render

import (
	"strings"
	"testing"

	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

func iptr(v int) *int { return &v }

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{999, "999"},
		{1000, "1.0K"},
		{10500, "10.5K"},
		{1_200_000, "1.2M"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.n); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func sampleReport() *dm.Report {
	report := dm.NewReport("golang generics", "2026-07-29", "2026-08-28", "full", "grok-4-fast")
	report.SetList(dm.SourceThreads, []dm.Item{
		{
			ID: "R1", Title: "Generics in production", URL: "https://reddit.com/r/golang/comments/a",
			Subreddit: "golang", Date: "2026-08-20", DateConfidence: dm.ConfidenceHigh,
			Engagement: &dm.Engagement{Score: iptr(123), NumComments: iptr(45)},
			Score:      88, WhyRelevant: "direct experience report",
			CommentInsights: []string{"[88 pts] works fine at scale"},
		},
	})
	report.SetList(dm.SourceAggregator, []dm.Item{
		{
			ID: "HN1", Title: "Go 1.26 released", URL: "https://example.com/go",
			SecondaryURL: "https://news.ycombinator.com/item?id=1",
			Author:       "pg", Date: "2026-08-25", DateConfidence: dm.ConfidenceHigh,
			Engagement: &dm.Engagement{Points: iptr(500), NumComments: iptr(301)},
			Score:      95,
		},
	})
	report.Errors[dm.SourceNews] = "brave api error (500, unknown)"
	report.DataQuality = &dm.DataQuality{
		TotalItems: 2, VerifiedDatesCount: 2, VerifiedDatesPercent: 100,
		AvgRecencyDays: 4.5, SourcesAvailable: []string{"threads", "aggregator"},
		SourcesFailed: []string{"news"},
	}
	return report
}

func TestCompact(t *testing.T) {
	out := Compact(sampleReport(), 15)

	for _, want := range []string{
		"## Research Results: golang generics",
		"**Date Range:** 2026-07-29 to 2026-08-28",
		"### Data Quality",
		"### Reddit Threads",
		"**R1** (score:88)",
		"r/golang",
		"[123pts, 45cmt]",
		"- [88 pts] works fine at scale",
		"### HackerNews",
		"Discussion: https://news.ycombinator.com/item?id=1",
		"### News",
		"**ERROR:** brave api error (500, unknown)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("紧凑输出缺少 %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "### Videos") {
		t.Error("空来源且无错误时不应输出小节")
	}
}

func TestCompactSparseBanner(t *testing.T) {
	report := dm.NewReport("quiet topic", "2026-07-29", "2026-08-28", "hn-only", "")
	out := Compact(report, 15)
	if !strings.Contains(out, "LIMITED RECENT DATA") {
		t.Error("近窗口条目不足时应输出稀疏提示")
	}
}

func TestCompactCacheBanner(t *testing.T) {
	report := sampleReport()
	report.FromCache = true
	report.CacheAgeHours = 3.2
	out := Compact(report, 15)
	if !strings.Contains(out, "CACHED RESULTS** (3.2h old)") {
		t.Errorf("缓存命中应有提示横幅\n%s", out)
	}
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleReport())
	for _, want := range []string{
		"# golang generics - Research Report",
		"### R1: Generics in production",
		"- **Score:** 88/100",
		"- **Subreddit:** r/golang",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Markdown 输出缺少 %q", want)
		}
	}
}

func TestContextSnippet(t *testing.T) {
	out := ContextSnippet(sampleReport())
	if !strings.Contains(out, "# Context: golang generics (2026-07-29 to 2026-08-28)") {
		t.Errorf("上下文片段缺少标题\n%s", out)
	}
	// 总分更高的聚合站条目应排在前面
	hnPos := strings.Index(out, "[HN] Go 1.26 released")
	redditPos := strings.Index(out, "[Reddit] Generics in production")
	if hnPos < 0 || redditPos < 0 || hnPos > redditPos {
		t.Errorf("条目应按总分降序混排\n%s", out)
	}
}

func TestContextSnippetTopTen(t *testing.T) {
	report := dm.NewReport("busy", "2026-07-29", "2026-08-28", "full", "")
	var items []dm.Item
	for i := 0; i < 5; i++ {
		items = append(items, dm.Item{ID: "R1", Title: "thread", URL: "https://a.com", Score: 50})
	}
	report.SetList(dm.SourceThreads, items)
	report.SetList(dm.SourcePosts, items)
	report.SetList(dm.SourceAggregator, items)

	out := ContextSnippet(report)
	if n := strings.Count(out, "\n- ["); n != 10 {
		t.Errorf("混排列表应截断到 10 条, got %d", n)
	}
}
