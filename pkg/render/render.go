// Package render 把报告渲染成紧凑文本、完整 Markdown 与上下文片段三种形态。
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// DefaultLimit 紧凑输出每个来源默认展示的条数
const DefaultLimit = 15

// FormatCount 大数字的紧凑展示，如 10500 -> "10.5K"
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return fmt.Sprint(n)
}

// freshness 报告数据新鲜度评估
type freshness struct {
	totalRecent int
	totalItems  int
	isSparse    bool
}

func assessFreshness(report *dm.Report) freshness {
	f := freshness{}
	for _, sl := range report.SourceLists() {
		for _, item := range sl.Items {
			f.totalItems++
			if item.Date != "" && item.Date >= report.Range.From {
				f.totalRecent++
			}
		}
	}
	f.isSparse = f.totalRecent < 5
	return f
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// sectionTitles 各来源在输出中的小节标题
var sectionTitles = map[dm.SourceType]string{
	dm.SourceThreads:     "Reddit Threads",
	dm.SourcePosts:       "X Posts",
	dm.SourceAggregator:  "HackerNews",
	dm.SourceNews:        "News",
	dm.SourceDiscussions: "Discussions",
	dm.SourcePages:       "Web Results",
	dm.SourceVideos:      "Videos",
}

// Compact 渲染面向综合阅读的紧凑报告
func Compact(report *dm.Report, limit int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var b strings.Builder
	w := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	w("## Research Results: %s", report.Topic)
	w("")

	f := assessFreshness(report)
	if f.isSparse {
		w("**LIMITED RECENT DATA** - Few discussions in the requested window.")
		w("Only %d item(s) confirmed from %s to %s.", f.totalRecent, report.Range.From, report.Range.To)
		w("")
	}

	if report.FromCache {
		w("**CACHED RESULTS** (%.1fh old) - use --refresh for fresh data", report.CacheAgeHours)
		w("")
	}

	w("**Date Range:** %s to %s", report.Range.From, report.Range.To)
	w("**Mode:** %s", report.Mode)
	if report.ModelUsed != "" {
		w("**Model:** %s", report.ModelUsed)
	}
	w("")

	if dq := report.DataQuality; dq != nil {
		w("### Data Quality")
		w("- **Total Items:** %d", dq.TotalItems)
		w("- **Verified Dates:** %d (%.0f%%)", dq.VerifiedDatesCount, dq.VerifiedDatesPercent)
		w("- **Verified Engagement:** %d (%.0f%%)", dq.VerifiedEngagementCount, dq.VerifiedEngagementPercent)
		w("- **Avg Recency:** %.1f days", dq.AvgRecencyDays)
		if len(dq.SourcesAvailable) > 0 {
			w("- **Sources Used:** %s", strings.Join(dq.SourcesAvailable, ", "))
		}
		if len(dq.SourcesFailed) > 0 {
			w("- **Sources Failed:** %s", strings.Join(dq.SourcesFailed, ", "))
		}
		w("")
	}

	if report.Summary != nil && report.Summary.Text != "" {
		w("### AI Summary")
		w("")
		w("%s", report.Summary.Text)
		if len(report.Summary.Citations) > 0 {
			w("")
			w("**Citations:**")
			for i, cite := range report.Summary.Citations {
				if i >= 10 {
					break
				}
				w("  [%d] %s - %s", i+1, cite.Title, cite.URL)
			}
		}
		if len(report.Summary.Followups) > 0 {
			w("")
			w("**Related questions:**")
			for i, q := range report.Summary.Followups {
				if i >= 5 {
					break
				}
				w("  - %s", q)
			}
		}
		w("")
	}

	if ib := report.Infobox; ib != nil {
		w("### Knowledge Panel")
		w("")
		w("**%s**", ib.Title)
		if ib.Description != "" {
			w("%s", ib.Description)
		}
		if ib.URL != "" {
			w("Source: %s", ib.URL)
		}
		w("")
	}

	if len(report.FAQs) > 0 {
		w("### Frequently Asked Questions")
		w("")
		for i, faq := range report.FAQs {
			if i >= 5 {
				break
			}
			w("**Q: %s**", faq.Question)
			w("A: %s", faq.Answer)
			if faq.URL != "" {
				w("Source: %s", faq.URL)
			}
			w("")
		}
	}

	for _, sl := range report.SourceLists() {
		renderCompactSection(&b, report, sl, limit)
	}

	return b.String()
}

// renderCompactSection 渲染单个来源的小节：有错误展示错误，有条目展示条目
func renderCompactSection(b *strings.Builder, report *dm.Report, sl dm.SourceList, limit int) {
	w := func(format string, args ...any) {
		fmt.Fprintf(b, format+"\n", args...)
	}

	errMsg, hasErr := report.Errors[sl.Source]
	if !hasErr && len(sl.Items) == 0 {
		return
	}

	w("### %s", sectionTitles[sl.Source])
	w("")
	if hasErr {
		w("**ERROR:** %s", errMsg)
		w("")
		return
	}

	for i, item := range sl.Items {
		if i >= limit {
			break
		}
		w("%s", compactHeadline(sl.Source, item))
		w("  %s", clip(item.Title, 200))
		w("  %s", item.URL)
		if item.SecondaryURL != "" && item.SecondaryURL != item.URL {
			w("  Discussion: %s", item.SecondaryURL)
		}
		if item.WhyRelevant != "" {
			w("  *%s*", item.WhyRelevant)
		}
		if item.Snippet != "" && (sl.Source == dm.SourceNews || sl.Source == dm.SourcePages || sl.Source == dm.SourceDiscussions) {
			w("  %s", clip(item.Snippet, 150))
		}
		for j, insight := range item.CommentInsights {
			if j >= 3 {
				break
			}
			w("    - %s", insight)
		}
		w("")
	}
}

// compactHeadline 单条目的首行：ID、得分、来源特有信息、日期与互动摘要
func compactHeadline(source dm.SourceType, item dm.Item) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("**%s** (score:%d)", item.ID, item.Score))

	switch source {
	case dm.SourceThreads:
		parts = append(parts, "r/"+item.Subreddit)
	case dm.SourcePosts:
		parts = append(parts, "@"+strings.TrimPrefix(item.Author, "@"))
	case dm.SourceAggregator:
		parts = append(parts, "@"+item.Author)
	case dm.SourceNews:
		if item.SourceName != "" {
			parts = append(parts, item.SourceName)
		} else {
			parts = append(parts, item.SourceDomain)
		}
	case dm.SourceDiscussions:
		parts = append(parts, item.ForumName)
	case dm.SourcePages, dm.SourceVideos:
		parts = append(parts, item.SourceDomain)
	}

	if item.Date != "" {
		parts = append(parts, "("+item.Date+")")
	} else {
		parts = append(parts, "(date unknown)")
	}
	if item.DateConfidence != dm.ConfidenceHigh {
		parts = append(parts, "[date:"+string(item.DateConfidence)+"]")
	}
	if eng := engagementSummary(item.Engagement); eng != "" {
		parts = append(parts, eng)
	}
	if item.HasSchemaData {
		parts = append(parts, "[schema]")
	}
	if item.Duration != "" {
		parts = append(parts, "["+item.Duration+"]")
	}

	return strings.Join(parts, " ")
}

// engagementSummary 互动指标的紧凑文本
func engagementSummary(e *dm.Engagement) string {
	if e.Empty() {
		return ""
	}
	var parts []string
	if e.Score != nil {
		parts = append(parts, fmt.Sprintf("%dpts", *e.Score))
	}
	if e.Points != nil {
		parts = append(parts, fmt.Sprintf("%dpts", *e.Points))
	}
	if e.Likes != nil {
		parts = append(parts, fmt.Sprintf("%slikes", FormatCount(*e.Likes)))
	}
	if e.Reposts != nil {
		parts = append(parts, fmt.Sprintf("%drt", *e.Reposts))
	}
	if e.Views != nil {
		parts = append(parts, fmt.Sprintf("%sviews", FormatCount(*e.Views)))
	}
	if e.NumComments != nil {
		parts = append(parts, fmt.Sprintf("%dcmt", *e.NumComments))
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Markdown 渲染完整 Markdown 报告
func Markdown(report *dm.Report) string {
	var b strings.Builder
	w := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	w("# %s - Research Report", report.Topic)
	w("")
	w("**Generated:** %s", report.GeneratedAt)
	w("**Date Range:** %s to %s", report.Range.From, report.Range.To)
	w("**Mode:** %s", report.Mode)
	if report.ModelUsed != "" {
		w("**Model:** %s", report.ModelUsed)
	}
	w("")

	if report.Summary != nil && report.Summary.Text != "" {
		w("## AI Summary")
		w("")
		w("%s", report.Summary.Text)
		w("")
	}

	if ib := report.Infobox; ib != nil {
		w("## Knowledge Panel")
		w("")
		w("**%s**", ib.Title)
		if ib.Description != "" {
			w("%s", ib.Description)
		}
		w("")
	}

	for _, sl := range report.SourceLists() {
		if len(sl.Items) == 0 {
			continue
		}
		w("## %s", sectionTitles[sl.Source])
		w("")
		for _, item := range sl.Items {
			renderMarkdownItem(&b, sl.Source, item)
		}
	}

	if len(report.FAQs) > 0 {
		w("## Frequently Asked Questions")
		w("")
		for _, faq := range report.FAQs {
			w("**Q: %s**", faq.Question)
			w("A: %s", faq.Answer)
			w("")
		}
	}

	return b.String()
}

func renderMarkdownItem(b *strings.Builder, source dm.SourceType, item dm.Item) {
	w := func(format string, args ...any) {
		fmt.Fprintf(b, format+"\n", args...)
	}

	title := item.Title
	if source == dm.SourcePosts {
		title = "@" + strings.TrimPrefix(item.Author, "@")
	}
	w("### %s: %s", item.ID, title)
	w("")

	switch source {
	case dm.SourceThreads:
		w("- **Subreddit:** r/%s", item.Subreddit)
	case dm.SourceNews:
		src := item.SourceName
		if src == "" {
			src = item.SourceDomain
		}
		w("- **Source:** %s", src)
	case dm.SourceDiscussions:
		w("- **Forum:** %s", item.ForumName)
	case dm.SourcePages:
		w("- **Source:** %s", item.SourceDomain)
	}

	w("- **URL:** %s", item.URL)
	if item.SecondaryURL != "" && item.SecondaryURL != item.URL {
		w("- **Discussion:** %s", item.SecondaryURL)
	}
	date := item.Date
	if date == "" {
		date = "Unknown"
	}
	w("- **Date:** %s (confidence: %s)", date, item.DateConfidence)
	w("- **Score:** %d/100", item.Score)
	if item.WhyRelevant != "" {
		w("- **Relevance:** %s", item.WhyRelevant)
	}
	if eng := engagementSummary(item.Engagement); eng != "" {
		w("- **Engagement:** %s", eng)
	}
	if item.Duration != "" {
		w("- **Duration:** %s", item.Duration)
	}

	if source == dm.SourcePosts {
		w("")
		w("> %s", item.Title)
	} else if item.Snippet != "" {
		w("")
		w("> %s", item.Snippet)
	}

	if len(item.TopComments) > 0 {
		w("")
		w("**Top Comments:**")
		for _, c := range item.TopComments {
			w("- (%dpts) %s: %s", c.Score, c.Author, c.Excerpt)
		}
	}
	w("")
}

// contextPick 各来源进入上下文片段的条数上限
var contextPick = map[dm.SourceType]int{
	dm.SourceThreads:     5,
	dm.SourcePosts:       5,
	dm.SourceAggregator:  3,
	dm.SourceNews:        3,
	dm.SourcePages:       3,
	dm.SourceVideos:      2,
	dm.SourceDiscussions: 2,
}

// contextLabels 上下文片段里的来源短标签
var contextLabels = map[dm.SourceType]string{
	dm.SourceThreads:     "Reddit",
	dm.SourcePosts:       "X",
	dm.SourceAggregator:  "HN",
	dm.SourceNews:        "News",
	dm.SourcePages:       "Web",
	dm.SourceVideos:      "Video",
	dm.SourceDiscussions: "Forum",
}

// ContextSnippet 渲染可复用的上下文片段：
// 各来源头部条目按总分混排，取前十条。
func ContextSnippet(report *dm.Report) string {
	var b strings.Builder
	w := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	w("# Context: %s (%s to %s)", report.Topic, report.Range.From, report.Range.To)
	w("")
	generated := report.GeneratedAt
	if len(generated) >= 10 {
		generated = generated[:10]
	}
	w("*Generated: %s | Sources: %s*", generated, report.Mode)
	w("")
	w("## Key Sources")
	w("")

	type picked struct {
		score int
		label string
		text  string
	}
	var all []picked
	for _, sl := range report.SourceLists() {
		limit := contextPick[sl.Source]
		for i, item := range sl.Items {
			if i >= limit {
				break
			}
			all = append(all, picked{
				score: item.Score,
				label: contextLabels[sl.Source],
				text:  clip(item.Title, 50),
			})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	for i, p := range all {
		if i >= 10 {
			break
		}
		w("- [%s] %s", p.label, p.text)
	}
	w("")

	if report.Summary != nil && report.Summary.Text != "" {
		w("## Summary")
		w("")
		w("%s", clip(report.Summary.Text, 500))
		w("")
	}

	return b.String()
}

// OutputDir 返回产物输出目录，落在用户数据目录下
func OutputDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "topic_radar", "out"), nil
}

// WriteOutputs 把报告的三种形态写入输出目录
func WriteOutputs(dir string, report *dm.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir failed: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report failed: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.json"), data, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(Markdown(report)), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "topic_radar.context.md"), []byte(ContextSnippet(report)), 0o644)
}
