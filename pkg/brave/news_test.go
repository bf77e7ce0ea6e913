package brave

import "testing"

func TestNewsSourceName(t *testing.T) {
	r := newsResult{URL: "https://www.techsite.com/article"}
	r.MetaURL.Hostname = "www.techsite.com"
	if got := r.sourceName(); got != "techsite.com" {
		t.Errorf("sourceName() = %q, want techsite.com", got)
	}

	r2 := newsResult{URL: "https://other.com/a"}
	r2.Profile.Name = "Other News"
	if got := r2.sourceName(); got != "Other News" {
		t.Errorf("meta_url 缺失时应回退到 profile 名, got %q", got)
	}
}

func TestParseNewsResults(t *testing.T) {
	results := []newsResult{
		{Title: "Go 1.26 released", URL: "https://news.example.com/go", Description: "release notes",
			PageAge: "2026-08-25T00:00:00"},
		{Title: "no url"},
	}
	items := parseNewsResults(results)
	if len(items) != 1 {
		t.Fatalf("无链接条目应被跳过, got %d", len(items))
	}
	if items[0].Date != "2026-08-25" {
		t.Errorf("Date = %q, want 2026-08-25", items[0].Date)
	}
	if items[0].SourceDomain != "news.example.com" {
		t.Errorf("SourceDomain = %q", items[0].SourceDomain)
	}
}
