// Package normalize 把各提供方解析出的原始条目收敛到统一规范：
// 分配条目 ID、截断超长文本、评估日期置信度、丢掉无链接条目。
package normalize

import (
	"fmt"

	"github.com/iWorld-y/topic_radar/pkg/dates"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// MaxTextLen 标题与正文摘录的最大保留长度
const MaxTextLen = 200

// idPrefixes 各来源的条目 ID 前缀
var idPrefixes = map[dm.SourceType]string{
	dm.SourceThreads:     "R",
	dm.SourcePosts:       "X",
	dm.SourceAggregator:  "HN",
	dm.SourceNews:        "N",
	dm.SourceDiscussions: "D",
	dm.SourcePages:       "W",
	dm.SourceVideos:      "V",
}

// truncate 按字符截断，避免把多字节字符切坏
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Options 规范化选项
type Options struct {
	From string
	To   string
	// TrustDates 为真时提升该来源的日期置信度：
	// 提供方给出的日期若落在区间内按 high 处理。
	// 适用于大模型抽取日期、无法从 URL 二次核实的来源。
	TrustDates bool
}

// Items 就地规范化一个来源的条目列表并返回过滤后的结果。
// URL 为空的条目直接丢弃；其余条目分配顺序 ID、截断文本、写入日期置信度。
func Items(items []dm.Item, source dm.SourceType, opts Options) []dm.Item {
	prefix := idPrefixes[source]
	out := make([]dm.Item, 0, len(items))
	for _, item := range items {
		if item.URL == "" {
			continue
		}
		item.Source = source
		item.ID = fmt.Sprintf("%s%d", prefix, len(out)+1)
		item.Title = truncate(item.Title, MaxTextLen)
		item.Snippet = truncate(item.Snippet, MaxTextLen)
		for i, s := range item.ExtraSnippets {
			item.ExtraSnippets[i] = truncate(s, MaxTextLen)
		}

		item.DateConfidence = dates.Confidence(item.Date, opts.From, opts.To)
		if opts.TrustDates && item.Date != "" && item.DateConfidence == dm.ConfidenceLow {
			// 信任提供方自己的时间过滤；区间外的日期由硬过滤兜底剔除
			item.DateConfidence = dm.ConfidenceHigh
		}
		out = append(out, item)
	}
	return out
}

// FilterByDateRange 硬过滤：丢掉日期明确落在区间外的条目。
// 日期缺失的条目保留，由打分阶段的置信度惩罚压低其排名。
// 这是提供方自身时间过滤之外的兜底。
func FilterByDateRange(items []dm.Item, from, to string) []dm.Item {
	out := make([]dm.Item, 0, len(items))
	for _, item := range items {
		if item.Date != "" {
			if item.Date < from || item.Date > to {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}
