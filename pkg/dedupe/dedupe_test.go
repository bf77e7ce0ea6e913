package dedupe

import (
	"testing"

	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

func TestNormalizeText(t *testing.T) {
	if got := normalizeText("Best   Laptop, 2024!!"); got != "best laptop 2024" {
		t.Errorf("normalizeText() = %q, want %q", got, "best laptop 2024")
	}
}

func TestJaccardIdentical(t *testing.T) {
	a := ngrams("best laptop 2024", 3)
	if got := jaccard(a, a); got != 1.0 {
		t.Errorf("相同文本的相似度应为 1, got %v", got)
	}
}

func TestItemsNearDuplicate(t *testing.T) {
	items := []dm.Item{
		{Title: "Best laptop 2024", Score: 60, URL: "https://a.com/1"},
		{Title: "best laptop 2024!!", Score: 80, URL: "https://b.com/2"},
		{Title: "Kubernetes networking deep dive", Score: 50, URL: "https://c.com/3"},
	}
	out := Items(items, DefaultThreshold)
	if len(out) != 2 {
		t.Fatalf("去重后应剩 2 条, got %d", len(out))
	}
	if out[0].Score != 80 {
		t.Errorf("应保留得分更高的一条, got score %d", out[0].Score)
	}
	if out[1].Title != "Kubernetes networking deep dive" {
		t.Errorf("不相似的条目应保留, got %q", out[1].Title)
	}
}

func TestItemsTieKeepsEarlier(t *testing.T) {
	items := []dm.Item{
		{Title: "Go generics explained", Score: 70, URL: "https://a.com/1"},
		{Title: "Go Generics Explained!", Score: 70, URL: "https://b.com/2"},
	}
	out := Items(items, DefaultThreshold)
	if len(out) != 1 || out[0].URL != "https://a.com/1" {
		t.Errorf("同分时应保留靠前的条目, got %v", out)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.Example.com/Path/", "example.com/path"},
		{"http://example.com/path?utm_source=x", "example.com/path"},
		{"https://example.com/path", "example.com/path"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.raw); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCrossSourcePriorityClaim(t *testing.T) {
	lists := []dm.SourceList{
		{Source: dm.SourceThreads, Items: []dm.Item{
			{ID: "R1", URL: "https://www.reddit.com/r/golang/comments/abc/"},
		}},
		{Source: dm.SourcePages, Items: []dm.Item{
			{ID: "W1", URL: "https://reddit.com/r/golang/comments/abc"},
			{ID: "W2", URL: "https://example.com/other"},
		}},
	}
	out := CrossSource(lists)
	if len(out[0].Items) != 1 {
		t.Fatalf("高优先级来源的条目应保留, got %d", len(out[0].Items))
	}
	if len(out[1].Items) != 1 || out[1].Items[0].ID != "W2" {
		t.Errorf("低优先级来源中撞 URL 的条目应被丢弃, got %v", out[1].Items)
	}
}

func TestCrossSourceSecondaryURLClaim(t *testing.T) {
	lists := []dm.SourceList{
		{Source: dm.SourceAggregator, Items: []dm.Item{
			{ID: "HN1", URL: "https://example.com/post", SecondaryURL: "https://news.ycombinator.com/item?id=1"},
		}},
		{Source: dm.SourcePages, Items: []dm.Item{
			{ID: "W1", URL: "https://example.com/post/"},
		}},
	}
	out := CrossSource(lists)
	if len(out[1].Items) != 0 {
		t.Errorf("主 URL 被聚合站认领的网页条目应被丢弃, got %v", out[1].Items)
	}
}

func TestCrossSourceDroppedItemClaimsNothing(t *testing.T) {
	lists := []dm.SourceList{
		{Source: dm.SourceThreads, Items: []dm.Item{
			{ID: "R1", URL: "https://example.com/a"},
		}},
		{Source: dm.SourceAggregator, Items: []dm.Item{
			// 主 URL 撞车被丢弃，其讨论页链接不应因此被占用
			{ID: "HN1", URL: "https://example.com/a", SecondaryURL: "https://news.ycombinator.com/item?id=9"},
		}},
		{Source: dm.SourcePages, Items: []dm.Item{
			{ID: "W1", URL: "https://news.ycombinator.com/item?id=9"},
		}},
	}
	out := CrossSource(lists)
	if len(out[1].Items) != 0 {
		t.Fatalf("聚合站条目应被丢弃, got %v", out[1].Items)
	}
	if len(out[2].Items) != 1 {
		t.Errorf("被丢弃条目的讨论页链接不应算已认领, got %v", out[2].Items)
	}
}

func TestCrossSourceSameSourceKept(t *testing.T) {
	lists := []dm.SourceList{
		{Source: dm.SourcePages, Items: []dm.Item{
			{ID: "W1", URL: "https://example.com/a"},
			{ID: "W2", URL: "https://example.com/a/"},
		}},
	}
	out := CrossSource(lists)
	if len(out[0].Items) != 2 {
		t.Errorf("同源重复交由近似去重处理，这里不应丢弃, got %d", len(out[0].Items))
	}
}
