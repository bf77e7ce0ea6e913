package normalize

import (
	"reflect"
	"strings"
	"testing"
	"time"

	dm "github.com/iWorld-y/topic_radar/pkg/model"
	"github.com/iWorld-y/topic_radar/pkg/score"
)

func TestItemsAssignsIDs(t *testing.T) {
	items := []dm.Item{
		{Title: "first", URL: "https://a.com/1"},
		{Title: "no url"},
		{Title: "second", URL: "https://a.com/2"},
	}
	out := Items(items, dm.SourceThreads, Options{From: "2026-07-29", To: "2026-08-28"})
	if len(out) != 2 {
		t.Fatalf("无链接的条目应被丢弃, got %d", len(out))
	}
	if out[0].ID != "R1" || out[1].ID != "R2" {
		t.Errorf("ID 应按保留顺序连续编号, got %q %q", out[0].ID, out[1].ID)
	}
	if out[0].Source != dm.SourceThreads {
		t.Errorf("Source = %v, want threads", out[0].Source)
	}
}

func TestItemsTruncates(t *testing.T) {
	long := strings.Repeat("字", MaxTextLen+50)
	items := []dm.Item{{Title: long, Snippet: long, ExtraSnippets: []string{long}, URL: "https://a.com/1"}}
	out := Items(items, dm.SourcePages, Options{From: "2026-07-29", To: "2026-08-28"})
	if n := len([]rune(out[0].Title)); n != MaxTextLen {
		t.Errorf("标题应按字符截断到 %d, got %d", MaxTextLen, n)
	}
	if n := len([]rune(out[0].ExtraSnippets[0])); n != MaxTextLen {
		t.Errorf("摘录应按字符截断到 %d, got %d", MaxTextLen, n)
	}
}

func TestItemsConfidence(t *testing.T) {
	items := []dm.Item{
		{Title: "in range", URL: "https://a.com/1", Date: "2026-08-15"},
		{Title: "out of range", URL: "https://a.com/2", Date: "2026-06-01"},
		{Title: "no date", URL: "https://a.com/3"},
	}
	out := Items(items, dm.SourceNews, Options{From: "2026-07-29", To: "2026-08-28"})
	if out[0].DateConfidence != dm.ConfidenceHigh {
		t.Errorf("区间内日期应为 high, got %v", out[0].DateConfidence)
	}
	if out[1].DateConfidence != dm.ConfidenceLow {
		t.Errorf("区间外日期应为 low, got %v", out[1].DateConfidence)
	}
	if out[2].DateConfidence != dm.ConfidenceLow {
		t.Errorf("缺失日期应为 low, got %v", out[2].DateConfidence)
	}
}

// 信任来源：提供方给出的日期即便无法核实也按 high 处理
func TestItemsTrustDates(t *testing.T) {
	items := []dm.Item{
		{Title: "dated", URL: "https://a.com/1", Date: "2026-08-15"},
		{Title: "undated", URL: "https://a.com/2"},
	}
	out := Items(items, dm.SourcePosts, Options{From: "2026-07-29", To: "2026-08-28", TrustDates: true})
	if out[0].DateConfidence != dm.ConfidenceHigh {
		t.Errorf("信任来源的日期应提升为 high, got %v", out[0].DateConfidence)
	}
	if out[1].DateConfidence != dm.ConfidenceLow {
		t.Errorf("缺失日期不在提升范围内, got %v", out[1].DateConfidence)
	}
}

func TestFilterByDateRange(t *testing.T) {
	items := []dm.Item{
		{Title: "keep", Date: "2026-08-15"},
		{Title: "too old", Date: "2026-06-01"},
		{Title: "future", Date: "2026-09-15"},
		{Title: "no date"},
	}
	out := FilterByDateRange(items, "2026-07-29", "2026-08-28")
	if len(out) != 2 {
		t.Fatalf("应剩 2 条, got %d", len(out))
	}
	if out[0].Title != "keep" || out[1].Title != "no date" {
		t.Errorf("区间外日期应被剔除、缺日期应保留, got %v", out)
	}
}

// 规范化加打分跑两遍，结果必须完全一致：
// 截断通过共享底层数组写回原始摘录，第二遍不能再改变任何字段
func TestNormalizeThenScoreIdempotent(t *testing.T) {
	iptr := func(v int) *int { return &v }
	day := func(n int) string { return time.Now().UTC().AddDate(0, 0, -n).Format(time.DateOnly) }
	from, to := day(30), day(0)

	long := strings.Repeat("字", MaxTextLen+80)
	raw := []dm.Item{
		{Title: long, Snippet: long, URL: "https://a.com/1", Date: day(2), Relevance: 0.9,
			ExtraSnippets: []string{long, "short"},
			Engagement:    &dm.Engagement{Score: iptr(120), NumComments: iptr(40)}, EngagementVerified: true},
		{Title: "plain", URL: "https://a.com/2", Date: day(10), Relevance: 0.6,
			Engagement: &dm.Engagement{Score: iptr(3), NumComments: iptr(1)}},
		{Title: "undated", URL: "https://a.com/3", Relevance: 0.4},
	}

	run := func() []dm.Item {
		items := Items(raw, dm.SourceThreads, Options{From: from, To: to})
		items = FilterByDateRange(items, from, to)
		return score.Apply(items, dm.SourceThreads, 30)
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("同一原始输入两次处理结果不一致:\n第一遍 %+v\n第二遍 %+v", first, second)
	}
}
