package xpost

import (
	"encoding/json"
	"testing"
)

func TestParsePosts(t *testing.T) {
	data := []byte(`[
		{"text": "go generics are finally usable", "url": "https://x.com/dev/status/1",
		 "author_handle": "@dev", "date": "2026-08-20",
		 "engagement": {"likes": 120, "reposts": 30, "replies": null, "quotes": null, "views": 5000},
		 "relevance": 0.9, "why_relevant": "first-hand report"},
		{"text": "estimated numbers", "url": "https://x.com/other/status/2",
		 "engagement": {"likes": null, "reposts": null}, "relevance": 1.5},
		{"text": "no url post"}
	]`)
	var posts []rawPost
	if err := json.Unmarshal(data, &posts); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}

	items := parsePosts(posts)
	if len(items) != 2 {
		t.Fatalf("无链接帖子应被跳过, got %d", len(items))
	}

	first := items[0]
	if !first.EngagementVerified {
		t.Error("带点赞数的帖子应视为已核实")
	}
	if *first.Engagement.Likes != 120 || first.Engagement.Replies != nil {
		t.Errorf("互动数据解析不符: %+v", first.Engagement)
	}
	if first.Date != "2026-08-20" {
		t.Errorf("Date = %q", first.Date)
	}

	second := items[1]
	if second.EngagementVerified {
		t.Error("点赞与转发都为 null 的帖子不应视为已核实")
	}
	if second.Relevance != 0.5 {
		t.Errorf("越界的相关性应回退到 0.5, got %v", second.Relevance)
	}
}
