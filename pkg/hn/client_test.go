package hn

import (
	"encoding/json"
	"testing"
)

func iptr(v int) *int { return &v }

func TestParseHits(t *testing.T) {
	hits := []hit{
		{ObjectID: "100", Title: "Go 1.26 released", URL: "https://go.dev/blog/go1.26",
			Author: "pg", CreatedAtI: 1700000000, Points: iptr(500), NumComments: iptr(200)},
		{ObjectID: "101", Title: "Ask HN: testing?", Author: "dev"},
	}
	items := parseHits(hits)
	if len(items) != 2 {
		t.Fatalf("parseHits() = %d items, want 2", len(items))
	}

	ext := items[0]
	if ext.URL != "https://go.dev/blog/go1.26" {
		t.Errorf("外链故事主链接应为原文, got %q", ext.URL)
	}
	if ext.SecondaryURL != "https://news.ycombinator.com/item?id=100" {
		t.Errorf("讨论页应为次链接, got %q", ext.SecondaryURL)
	}
	if ext.Date != "2023-11-14" {
		t.Errorf("Date = %q, want 2023-11-14", ext.Date)
	}
	if !ext.EngagementVerified || *ext.Engagement.Points != 500 {
		t.Errorf("互动数据应来自 API 并标记已核实, got %+v", ext.Engagement)
	}

	ask := items[1]
	if ask.URL != "https://news.ycombinator.com/item?id=101" {
		t.Errorf("纯讨论帖主链接应为讨论页, got %q", ask.URL)
	}
	if *ask.Engagement.Points != 0 || *ask.Engagement.NumComments != 0 {
		t.Errorf("缺失计数应落为 0, got %+v", ask.Engagement)
	}
	if ask.Relevance != 0.98 {
		t.Errorf("第二名的相关性 = %v, want 0.98", ask.Relevance)
	}
}

func TestParseHitsRelevanceFloor(t *testing.T) {
	hits := make([]hit, 40)
	for i := range hits {
		hits[i] = hit{ObjectID: "1", Title: "t"}
	}
	items := parseHits(hits)
	if got := items[39].Relevance; got != 0.5 {
		t.Errorf("相关性应有下限 0.5, got %v", got)
	}
}

func TestHitUnmarshal(t *testing.T) {
	data := []byte(`{"hits":[{"objectID":"1","title":"t","created_at_i":1700000000,"points":null,"num_comments":null}]}`)
	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if parsed.Hits[0].Points != nil {
		t.Error("null 计数应解析为 nil")
	}
}
