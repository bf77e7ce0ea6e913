package brave

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/iWorld-y/topic_radar/pkg/logger"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// summarizer 响应结构在不同账号档位下有差异，
// 正文可能是字符串、分段列表或包一层 results。
type summarySegment struct {
	Text string `json:"text"`
}

type summaryReference struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

type summaryEnrichments struct {
	References []summaryReference `json:"references"`
	Followups  []json.RawMessage  `json:"followups"`
}

// FetchSummary 用摘要 key 拉取 AI 摘要。
// 摘要是锦上添花的增值内容，任何失败都只记日志返回 nil。
func FetchSummary(ctx context.Context, client *Client, key string) *dm.Summary {
	if key == "" {
		return nil
	}

	resp, err := client.SummarizerSearch(ctx, key)
	if err != nil {
		logger.Log.Warnf("摘要获取失败: %v", err)
		return nil
	}

	text := extractSummaryText(resp)
	if text == "" {
		return nil
	}

	summary := &dm.Summary{Text: text}

	var enrich summaryEnrichments
	if raw, ok := resp["enrichments"]; ok {
		_ = json.Unmarshal(raw, &enrich)
	}
	refs := enrich.References
	if len(refs) == 0 {
		if raw, ok := resp["references"]; ok {
			_ = json.Unmarshal(raw, &refs)
		}
	}
	for _, r := range refs {
		if r.URL == "" {
			continue
		}
		summary.Citations = append(summary.Citations, dm.Citation{Title: r.Title, URL: r.URL})
	}

	followups := enrich.Followups
	if len(followups) == 0 {
		if raw, ok := resp["followups"]; ok {
			_ = json.Unmarshal(raw, &followups)
		}
	}
	for _, raw := range followups {
		if f := decodeFollowup(raw); f != "" {
			summary.Followups = append(summary.Followups, f)
		}
	}

	return summary
}

// extractSummaryText 从多种可能的响应形态里取出摘要正文
func extractSummaryText(resp map[string]json.RawMessage) string {
	if raw, ok := resp["summary"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
		var segs []summarySegment
		if json.Unmarshal(raw, &segs) == nil && len(segs) > 0 {
			var parts []string
			for _, seg := range segs {
				if seg.Text != "" {
					parts = append(parts, seg.Text)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, " ")
			}
		}
		var seg summarySegment
		if json.Unmarshal(raw, &seg) == nil && seg.Text != "" {
			return seg.Text
		}
	}

	if raw, ok := resp["results"]; ok {
		var segs []summarySegment
		if json.Unmarshal(raw, &segs) == nil && len(segs) > 0 && segs[0].Text != "" {
			return segs[0].Text
		}
	}

	for _, key := range []string{"text", "message"} {
		if raw, ok := resp[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
		}
	}
	return ""
}

// decodeFollowup 追问项可能是字符串或 {text: ...} 对象
func decodeFollowup(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var seg summarySegment
	if json.Unmarshal(raw, &seg) == nil {
		return seg.Text
	}
	return ""
}
