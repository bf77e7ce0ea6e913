// Package score 实现面向质量的条目打分：
// 相关性、新鲜度、互动量三个子分按来源族的权重加权，
// 再叠加来源惩罚与日期置信度修正，结果截断到 [0,100]。
package score

import (
	"math"
	"sort"
	"strings"

	"github.com/iWorld-y/topic_radar/pkg/dates"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// 带互动数据来源（帖子、推文、聚合站）的权重
const (
	WeightRelevance  = 0.40
	WeightRecency    = 0.25
	WeightEngagement = 0.35
)

// 无互动数据来源的权重与修正
const (
	NewsWeightRelevance = 0.45
	NewsWeightRecency   = 0.55

	PageWeightRelevance = 0.55
	PageWeightRecency   = 0.45
	// 网页结果缺少互动信号，整体压低一档
	PageSourcePenalty     = 15
	PageSchemaDataBonus   = 5
	PageMultiSnippetBonus = 3
	PageHighConfBonus     = 10
	PageLowConfPenalty    = 20

	VideoWeightRelevance = 0.50
	VideoWeightRecency   = 0.50

	ForumWeightRelevance  = 0.45
	ForumWeightRecency    = 0.25
	ForumWeightEngagement = 0.30
)

// 通用修正项
const (
	// 未核实互动量的默认子分，刻意低于核实数据的中位水平
	DefaultEngagement        = 20
	UnknownEngagementPenalty = 15
	VerifiedEngagementBonus  = 8
	LowConfPenalty           = 10
	MedConfPenalty           = 5
)

// log1pSafe 对 nil 与负值返回 0 的 log1p
func log1pSafe(x *int) float64 {
	if x == nil || *x < 0 {
		return 0
	}
	return math.Log1p(float64(*x))
}

// ThreadEngagementRaw 论坛帖子的原始互动分。
// 45% 赞数 + 30% 赞同率（0-1 放大到 0-10）+ 25% 评论数。
// 没有任何互动数据时返回 nil。
func ThreadEngagementRaw(e *dm.Engagement) *float64 {
	if e == nil || (e.Score == nil && e.NumComments == nil) {
		return nil
	}
	ratio := 0.5
	if e.UpvoteRatio != nil {
		ratio = *e.UpvoteRatio
	}
	v := 0.45*log1pSafe(e.Score) + 0.30*(ratio*10) + 0.25*log1pSafe(e.NumComments)
	return &v
}

// PostEngagementRaw 短文社交平台帖子的原始互动分。
// 转发是最强的认可信号，权重最高。
func PostEngagementRaw(e *dm.Engagement) *float64 {
	if e == nil || (e.Likes == nil && e.Reposts == nil) {
		return nil
	}
	v := 0.40*log1pSafe(e.Reposts) + 0.35*log1pSafe(e.Likes) +
		0.15*log1pSafe(e.Replies) + 0.10*log1pSafe(e.Quotes)
	return &v
}

// AggregatorEngagementRaw 聚合站条目的原始互动分。
// 60% 点数 + 40% 评论数。
func AggregatorEngagementRaw(e *dm.Engagement) *float64 {
	if e == nil || (e.Points == nil && e.NumComments == nil) {
		return nil
	}
	v := 0.60*log1pSafe(e.Points) + 0.40*log1pSafe(e.NumComments)
	return &v
}

// NormalizeTo100 对同批次原始值做 min-max 归一化到 0-100。
// 全 nil 返回全 nil；极差为零时整批（含 nil 项）全部映射到 50；
// 其余情况 nil 原样保留。
func NormalizeTo100(values []*float64) []*float64 {
	var valid []float64
	for _, v := range values {
		if v != nil {
			valid = append(valid, *v)
		}
	}
	out := make([]*float64, len(values))
	if len(valid) == 0 {
		return out
	}

	minV, maxV := valid[0], valid[0]
	for _, v := range valid[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	if maxV == minV {
		for i := range values {
			n := 50.0
			out[i] = &n
		}
		return out
	}

	for i, v := range values {
		if v == nil {
			continue
		}
		n := (*v - minV) / (maxV - minV) * 100
		out[i] = &n
	}
	return out
}

// confidenceAdjust 带互动数据来源族的日期置信度修正
func confidenceAdjust(conf dm.DateConfidence) float64 {
	switch conf {
	case dm.ConfidenceLow:
		return -LowConfPenalty
	case dm.ConfidenceMed:
		return -MedConfPenalty
	}
	return 0
}

func clamp(overall float64) int {
	s := int(overall)
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// scoreEngagementFamily 对带互动数据的来源统一打分：
// 先归一化整批原始互动值，再按 0.40/0.25/0.35 加权。
func scoreEngagementFamily(items []dm.Item, raw func(*dm.Engagement) *float64, maxDays int) []dm.Item {
	if len(items) == 0 {
		return items
	}
	rawVals := make([]*float64, len(items))
	for i := range items {
		rawVals[i] = raw(items[i].Engagement)
	}
	normalized := NormalizeTo100(rawVals)

	for i := range items {
		item := &items[i]
		rel := int(item.Relevance * 100)
		rec := dates.RecencyScore(item.Date, maxDays)

		eng := DefaultEngagement
		if normalized[i] != nil {
			eng = int(*normalized[i])
		}
		item.Subs = dm.SubScores{Relevance: rel, Recency: rec, Engagement: eng}

		overall := WeightRelevance*float64(rel) +
			WeightRecency*float64(rec) +
			WeightEngagement*float64(eng)

		if item.EngagementVerified {
			overall += VerifiedEngagementBonus
		} else if rawVals[i] == nil {
			overall -= UnknownEngagementPenalty
		}
		overall += confidenceAdjust(item.DateConfidence)

		item.Score = clamp(overall)
	}
	return items
}

// scoreNews 新闻条目：时效优先，无互动子分。
func scoreNews(items []dm.Item, maxDays int) []dm.Item {
	for i := range items {
		item := &items[i]
		rel := int(item.Relevance * 100)
		rec := dates.RecencyScore(item.Date, maxDays)
		item.Subs = dm.SubScores{Relevance: rel, Recency: rec}

		overall := NewsWeightRelevance*float64(rel) + NewsWeightRecency*float64(rec)
		overall += confidenceAdjust(item.DateConfidence)
		item.Score = clamp(overall)
	}
	return items
}

// scorePages 普通网页条目：相关性优先，整体压低一档，
// 结构化元数据与多段摘录给小幅加分，日期置信度奖惩最重。
func scorePages(items []dm.Item, maxDays int) []dm.Item {
	for i := range items {
		item := &items[i]
		rel := int(item.Relevance * 100)
		rec := dates.RecencyScore(item.Date, maxDays)
		item.Subs = dm.SubScores{Relevance: rel, Recency: rec}

		overall := PageWeightRelevance*float64(rel) + PageWeightRecency*float64(rec)
		overall -= PageSourcePenalty

		if item.HasSchemaData {
			overall += PageSchemaDataBonus
		}
		if len(item.ExtraSnippets) >= 2 {
			overall += PageMultiSnippetBonus
		}

		switch item.DateConfidence {
		case dm.ConfidenceHigh:
			overall += PageHighConfBonus
		case dm.ConfidenceLow:
			overall -= PageLowConfPenalty
		}
		item.Score = clamp(overall)
	}
	return items
}

// scoreVideos 视频条目：相关性与时效均衡。
func scoreVideos(items []dm.Item, maxDays int) []dm.Item {
	for i := range items {
		item := &items[i]
		rel := int(item.Relevance * 100)
		rec := dates.RecencyScore(item.Date, maxDays)
		item.Subs = dm.SubScores{Relevance: rel, Recency: rec}

		overall := VideoWeightRelevance*float64(rel) + VideoWeightRecency*float64(rec)
		overall += confidenceAdjust(item.DateConfidence)
		item.Score = clamp(overall)
	}
	return items
}

// scoreDiscussions 论坛讨论条目：没有原生互动计数，
// 用摘录段数推一个互动代理分（段数越多讨论越充分），上限 100。
func scoreDiscussions(items []dm.Item, maxDays int) []dm.Item {
	for i := range items {
		item := &items[i]
		rel := int(item.Relevance * 100)
		rec := dates.RecencyScore(item.Date, maxDays)

		proxy := 25 * (1 + len(item.ExtraSnippets))
		if proxy > 100 {
			proxy = 100
		}
		item.Subs = dm.SubScores{Relevance: rel, Recency: rec, Engagement: proxy}

		overall := ForumWeightRelevance*float64(rel) +
			ForumWeightRecency*float64(rec) +
			ForumWeightEngagement*float64(proxy)
		overall += confidenceAdjust(item.DateConfidence)
		item.Score = clamp(overall)
	}
	return items
}

// Apply 按来源族选择打分策略并就地写入子分与总分。
func Apply(items []dm.Item, source dm.SourceType, maxDays int) []dm.Item {
	switch source {
	case dm.SourceThreads:
		return scoreEngagementFamily(items, ThreadEngagementRaw, maxDays)
	case dm.SourcePosts:
		return scoreEngagementFamily(items, PostEngagementRaw, maxDays)
	case dm.SourceAggregator:
		return scoreEngagementFamily(items, AggregatorEngagementRaw, maxDays)
	case dm.SourceNews:
		return scoreNews(items, maxDays)
	case dm.SourceDiscussions:
		return scoreDiscussions(items, maxDays)
	case dm.SourcePages:
		return scorePages(items, maxDays)
	case dm.SourceVideos:
		return scoreVideos(items, maxDays)
	}
	return items
}

// Sort 排序：总分降序，日期降序（缺日期垫底），
// 来源优先级升序，最后按展示文本保证稳定。
func Sort(items []dm.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		da, db := a.Date, b.Date
		if da == "" {
			da = "0000-00-00"
		}
		if db == "" {
			db = "0000-00-00"
		}
		if da != db {
			return da > db
		}
		if pa, pb := a.Source.Priority(), b.Source.Priority(); pa != pb {
			return pa < pb
		}
		return strings.Compare(a.Title, b.Title) < 0
	})
}
