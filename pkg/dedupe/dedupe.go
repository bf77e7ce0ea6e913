// Package dedupe 提供同源近似去重与跨源 URL 去重。
package dedupe

import (
	"net/url"
	"strings"
	"unicode"

	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// DefaultThreshold 近似重复判定的 Jaccard 阈值
const DefaultThreshold = 0.7

// normalizeText 比较前的文本归一化：小写、去标点、折叠空白
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ngrams 取归一化文本的字符三元组集合
func ngrams(text string, n int) map[string]struct{} {
	text = normalizeText(text)
	set := map[string]struct{}{}
	runes := []rune(text)
	if len(runes) < n {
		set[text] = struct{}{}
		return set
	}
	for i := 0; i+n <= len(runes); i++ {
		set[string(runes[i:i+n])] = struct{}{}
	}
	return set
}

// jaccard 两个集合的 Jaccard 相似度
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Items 去除同一来源列表内的近似重复，保留得分更高的一条。
// 得分相同则保留靠前的一条；输出保持原有相对顺序。
// 列表规模只有几十条，两两比较的 O(n²) 可以接受。
func Items(items []dm.Item, threshold float64) []dm.Item {
	if len(items) <= 1 {
		return items
	}

	grams := make([]map[string]struct{}, len(items))
	for i, item := range items {
		grams[i] = ngrams(item.Title, 3)
	}

	remove := map[int]bool{}
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if jaccard(grams[i], grams[j]) < threshold {
				continue
			}
			if items[i].Score >= items[j].Score {
				remove[j] = true
			} else {
				remove[i] = true
			}
		}
	}

	out := make([]dm.Item, 0, len(items)-len(remove))
	for i, item := range items {
		if !remove[i] {
			out = append(out, item)
		}
	}
	return out
}

// NormalizeURL 规范化 URL 用于跨源比对：
// 去协议、去 www 前缀、去末尾斜杠、忽略查询串，主机与路径转小写。
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return strings.ToLower(raw)
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	path := strings.TrimSuffix(u.Path, "/")
	return strings.ToLower(host + path)
}

// CrossSource 跨源 URL 去重。按固定优先级处理各来源列表，
// 先出现的来源认领规范化后的 URL；聚合站条目额外认领其讨论页链接
// （一个逻辑条目对应两个 URL）。后续来源中主 URL 已被其他来源认领的
// 条目被丢弃，且被丢弃的条目不再认领任何 URL。
// 每个列表内部顺序保持不变。
func CrossSource(lists []dm.SourceList) []dm.SourceList {
	claimed := map[string]dm.SourceType{}

	out := make([]dm.SourceList, 0, len(lists))
	for _, sl := range lists {
		kept := make([]dm.Item, 0, len(sl.Items))
		for _, item := range sl.Items {
			key := NormalizeURL(item.URL)
			if owner, ok := claimed[key]; ok && owner != sl.Source {
				continue
			}
			if _, ok := claimed[key]; !ok {
				claimed[key] = sl.Source
			}
			if item.SecondaryURL != "" {
				sec := NormalizeURL(item.SecondaryURL)
				if _, ok := claimed[sec]; !ok {
					claimed[sec] = sl.Source
				}
			}
			kept = append(kept, item)
		}
		out = append(out, dm.SourceList{Source: sl.Source, Items: kept})
	}
	return out
}
