package model

import "time"

// DateRange 检索区间
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FAQ 网页搜索附带的问答条目
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	URL      string `json:"url,omitempty"`
}

// Infobox 知识面板摘要
type Infobox struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	LongDesc     string   `json:"long_description,omitempty"`
	URL          string   `json:"url,omitempty"`
	Type         string   `json:"type,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Profiles     []string `json:"profiles,omitempty"`
}

// Citation AI 摘要的引用来源
type Citation struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// Summary 搜索侧生成的 AI 摘要
type Summary struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
	Followups []string   `json:"followups,omitempty"`
}

// DataQuality 报告的数据质量指标，面向使用者的透明度信息
type DataQuality struct {
	TotalItems                int      `json:"total_items"`
	VerifiedDatesCount        int      `json:"verified_dates_count"`
	VerifiedDatesPercent      float64  `json:"verified_dates_percent"`
	VerifiedEngagementCount   int      `json:"verified_engagement_count"`
	VerifiedEngagementPercent float64  `json:"verified_engagement_percent"`
	AvgRecencyDays            float64  `json:"avg_recency_days"`
	SourcesAvailable          []string `json:"sources_available"`
	SourcesFailed             []string `json:"sources_failed"`
	HasSummary                bool     `json:"has_summary"`
	HasInfobox                bool     `json:"has_infobox"`
	FAQCount                  int      `json:"faq_count"`
}

// Report 完整研究报告，管线终点产物，此后不再修改
type Report struct {
	Topic       string    `json:"topic"`
	Range       DateRange `json:"range"`
	GeneratedAt string    `json:"generated_at"`
	Mode        string    `json:"mode"`
	ModelUsed   string    `json:"model_used,omitempty"`

	Threads     []Item `json:"threads"`
	Posts       []Item `json:"posts"`
	Aggregator  []Item `json:"aggregator"`
	News        []Item `json:"news"`
	Discussions []Item `json:"discussions"`
	Pages       []Item `json:"pages"`
	Videos      []Item `json:"videos"`

	Summary *Summary `json:"summary,omitempty"`
	Infobox *Infobox `json:"infobox,omitempty"`
	FAQs    []FAQ    `json:"faqs,omitempty"`

	// Errors 每个来源各自的错误信息，部分失败是常态而非异常
	Errors map[SourceType]string `json:"errors,omitempty"`

	FromCache     bool    `json:"from_cache,omitempty"`
	CacheAgeHours float64 `json:"cache_age_hours,omitempty"`

	ContextSnippet string `json:"context_snippet_md,omitempty"`

	DataQuality *DataQuality `json:"data_quality,omitempty"`
}

// NewReport 创建带元信息的空报告
func NewReport(topic, from, to, mode, modelUsed string) *Report {
	return &Report{
		Topic:       topic,
		Range:       DateRange{From: from, To: to},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Mode:        mode,
		ModelUsed:   modelUsed,
		Errors:      map[SourceType]string{},
	}
}

// SourceList 一个来源及其条目列表
type SourceList struct {
	Source SourceType
	Items  []Item
}

// SourceLists 按固定优先级返回全部七个来源列表
func (r *Report) SourceLists() []SourceList {
	return []SourceList{
		{SourceThreads, r.Threads},
		{SourcePosts, r.Posts},
		{SourceAggregator, r.Aggregator},
		{SourceNews, r.News},
		{SourceDiscussions, r.Discussions},
		{SourcePages, r.Pages},
		{SourceVideos, r.Videos},
	}
}

// SetList 按来源类型写入条目列表
func (r *Report) SetList(source SourceType, items []Item) {
	switch source {
	case SourceThreads:
		r.Threads = items
	case SourcePosts:
		r.Posts = items
	case SourceAggregator:
		r.Aggregator = items
	case SourceNews:
		r.News = items
	case SourceDiscussions:
		r.Discussions = items
	case SourcePages:
		r.Pages = items
	case SourceVideos:
		r.Videos = items
	}
}
