package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// 模拟 Reddit 帖子 JSON 接口的返回：帖子本体加三条评论
const threadJSON = `[
  {"data": {"children": [
    {"data": {"score": 321, "num_comments": 57, "upvote_ratio": 0.93,
      "created_utc": 1755820800, "author": "op_user"}}
  ]}},
  {"data": {"children": [
    {"data": {"score": 12, "author": "a", "body": "mid comment", "permalink": "/r/golang/comments/x/1/"}},
    {"data": {"score": 88, "author": "b", "body": "top comment"}},
    {"data": {"score": 3, "author": "c", "body": "low comment"}},
    {"data": {"score": 999, "author": "d", "body": ""}}
  ]}}
]`

func TestEnrichThread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".json") {
			t.Errorf("请求路径应以 .json 结尾, got %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("请求必须带自定义 UA, got %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(threadJSON))
	}))
	defer srv.Close()

	e := NewRedditEnricher()
	got := e.EnrichThread(context.Background(), dm.Item{URL: srv.URL + "/r/golang/comments/x/title/"})

	if got.Engagement == nil || got.Engagement.Score == nil || *got.Engagement.Score != 321 {
		t.Fatalf("帖子互动数据未补齐: %+v", got.Engagement)
	}
	if !got.EngagementVerified {
		t.Error("接口返回的互动数据应标记为已核实")
	}
	if len(got.TopComments) != 3 {
		t.Fatalf("应保留 3 条有效评论, got %d", len(got.TopComments))
	}
	if got.TopComments[0].Excerpt != "top comment" {
		t.Errorf("评论应按得分排序, 第一条 = %q", got.TopComments[0].Excerpt)
	}
	if len(got.CommentInsights) != len(got.TopComments) {
		t.Fatalf("每条热门评论都应有对应提要, got %d/%d",
			len(got.CommentInsights), len(got.TopComments))
	}
	if got.CommentInsights[0] != "[88 pts] top comment" {
		t.Errorf("提要格式不符, got %q", got.CommentInsights[0])
	}
}

// 增强失败时条目必须原样返回
func TestEnrichThreadFailureKeepsItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	orig := dm.Item{URL: srv.URL + "/r/golang/comments/x/title/", Title: "untouched"}
	got := NewRedditEnricher().EnrichThread(context.Background(), orig)
	if got.Engagement != nil || len(got.TopComments) != 0 || len(got.CommentInsights) != 0 {
		t.Errorf("失败时不应写入任何增强字段: %+v", got)
	}
	if got.Title != orig.Title || got.URL != orig.URL {
		t.Errorf("失败时条目应原样返回, got %+v", got)
	}
}

func TestCommentInsights(t *testing.T) {
	long := strings.Repeat("字", 150)
	insights := commentInsights([]dm.Comment{
		{Score: 42, Excerpt: "line one\nline  two"},
		{Score: 7, Excerpt: long},
		{Score: 1, Excerpt: "   "},
	})
	if len(insights) != 2 {
		t.Fatalf("空白摘录应被跳过, got %d 条", len(insights))
	}
	if insights[0] != "[42 pts] line one line two" {
		t.Errorf("多行摘录应折叠成一行, got %q", insights[0])
	}
	if !strings.HasPrefix(insights[1], "[7 pts] ") || !strings.HasSuffix(insights[1], "...") {
		t.Errorf("超长摘录应截断并加省略号, got %q", insights[1])
	}
	if n := len([]rune(strings.TrimPrefix(insights[1], "[7 pts] "))); n != 123 {
		t.Errorf("截断后摘录长度应为 120+3 字符, got %d", n)
	}
}
