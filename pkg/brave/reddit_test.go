package brave

import "testing"

func TestSimplifyTopic(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"best laptop for programming", "laptop programming"},
		{"the state of the art in go testing tools", "state of art"},
		{"golang", "golang"},
	}
	for _, tt := range tests {
		if got := simplifyTopic(tt.in); got != tt.want {
			t.Errorf("simplifyTopic(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseThreadResults(t *testing.T) {
	results := []webResult{
		{Title: "Generics are great : golang", URL: "https://www.reddit.com/r/golang/comments/abc/generics/",
			Description: "discussion about generics", PageAge: "2026-08-20T08:00:00"},
		{Title: "subreddit home", URL: "https://www.reddit.com/r/golang/"},
		{Title: "not reddit", URL: "https://example.com/post"},
	}
	items := parseThreadResults(results)
	if len(items) != 1 {
		t.Fatalf("仅帖子链接应保留, got %d", len(items))
	}
	item := items[0]
	if item.Title != "Generics are great" {
		t.Errorf("标题应去掉子版块后缀, got %q", item.Title)
	}
	if item.Subreddit != "golang" {
		t.Errorf("Subreddit = %q, want golang", item.Subreddit)
	}
	if item.Date != "2026-08-20" {
		t.Errorf("Date = %q, want 2026-08-20", item.Date)
	}
	if item.Engagement != nil {
		t.Error("检索阶段不应有互动数据，留给增强阶段")
	}
}

func TestParseThreadResultsUnknownSubreddit(t *testing.T) {
	items := parseThreadResults([]webResult{
		{Title: "t", URL: "https://old.reddit.com/comments/xyz"},
	})
	if len(items) != 0 {
		// 不带 /r/ 的路径不匹配帖子链接格式
		t.Errorf("非标准帖子链接应被跳过, got %v", items)
	}
}
