package model

// SourceType 数据源类型，七种来源各对应一份条目列表
type SourceType string

const (
	SourceThreads     SourceType = "threads"     // 社区主题帖（Reddit）
	SourcePosts       SourceType = "posts"       // 微博客帖子（X）
	SourceAggregator  SourceType = "aggregator"  // 技术新闻聚合站（HackerNews）
	SourceNews        SourceType = "news"        // 新闻报道
	SourceDiscussions SourceType = "discussions" // 论坛讨论
	SourcePages       SourceType = "pages"       // 普通网页
	SourceVideos      SourceType = "videos"      // 视频
)

// priorityOrder 跨源去重时的固定优先级，越靠前优先级越高
var priorityOrder = []SourceType{
	SourceThreads,
	SourcePosts,
	SourceAggregator,
	SourceNews,
	SourceDiscussions,
	SourcePages,
	SourceVideos,
}

// PriorityOrder 返回跨源去重使用的固定优先级序列
func PriorityOrder() []SourceType {
	out := make([]SourceType, len(priorityOrder))
	copy(out, priorityOrder)
	return out
}

// Priority 返回来源的优先级序号，未知来源排在最后
func (s SourceType) Priority() int {
	for i, t := range priorityOrder {
		if t == s {
			return i
		}
	}
	return len(priorityOrder)
}

// DateConfidence 日期可信度等级
type DateConfidence string

const (
	ConfidenceHigh DateConfidence = "high" // 日期经来源验证且落在检索区间内
	ConfidenceMed  DateConfidence = "med"  // 日期从摘要等旁证推断
	ConfidenceLow  DateConfidence = "low"  // 日期缺失或不可信
)

// Engagement 参与度指标，字段按来源类型选填
type Engagement struct {
	// 主题帖字段
	Score       *int     `json:"score,omitempty"`
	NumComments *int     `json:"num_comments,omitempty"`
	UpvoteRatio *float64 `json:"upvote_ratio,omitempty"`

	// 帖子字段
	Likes     *int `json:"likes,omitempty"`
	Reposts   *int `json:"reposts,omitempty"`
	Replies   *int `json:"replies,omitempty"`
	Quotes    *int `json:"quotes,omitempty"`
	Views     *int `json:"views,omitempty"`
	Bookmarks *int `json:"bookmarks,omitempty"`

	// 聚合站字段
	Points *int `json:"points,omitempty"`
}

// Empty 判断是否不含任何指标
func (e *Engagement) Empty() bool {
	if e == nil {
		return true
	}
	return e.Score == nil && e.NumComments == nil && e.UpvoteRatio == nil &&
		e.Likes == nil && e.Reposts == nil && e.Replies == nil &&
		e.Quotes == nil && e.Views == nil && e.Bookmarks == nil && e.Points == nil
}

// Comment 主题帖下的热门评论
type Comment struct {
	Score   int    `json:"score"`
	Date    string `json:"date,omitempty"`
	Author  string `json:"author"`
	Excerpt string `json:"excerpt"`
	URL     string `json:"url"`
}

// SubScores 三个 0-100 分量分数，保留用于解释最终得分
type SubScores struct {
	Relevance  int `json:"relevance"`
	Recency    int `json:"recency"`
	Engagement int `json:"engagement"`
}

// Item 规范化条目，七种来源共用同一信封结构，来源特有字段选填。
// 条目是不可变值记录：每轮归一化都产出新列表，评分阶段重算 Score。
type Item struct {
	ID     string     `json:"id"`
	Source SourceType `json:"-"`

	// Title 承载展示文本：帖子来源存正文，其余来源存标题
	Title        string `json:"title"`
	URL          string `json:"url"`
	SecondaryURL string `json:"secondary_url,omitempty"` // 聚合站条目的讨论页链接

	Author        string   `json:"author,omitempty"`
	Subreddit     string   `json:"subreddit,omitempty"`
	ForumName     string   `json:"forum_name,omitempty"`
	SourceName    string   `json:"source_name,omitempty"`
	SourceDomain  string   `json:"source_domain,omitempty"`
	Creator       string   `json:"creator,omitempty"`
	ThumbnailURL  string   `json:"thumbnail_url,omitempty"`
	Duration      string   `json:"duration,omitempty"`
	Snippet       string   `json:"snippet,omitempty"`
	ExtraSnippets []string `json:"extra_snippets,omitempty"`

	Date           string         `json:"date,omitempty"` // YYYY-MM-DD，空串表示未知
	DateConfidence DateConfidence `json:"date_confidence"`

	Engagement         *Engagement `json:"engagement,omitempty"`
	EngagementVerified bool        `json:"engagement_verified"`
	TopComments        []Comment   `json:"top_comments,omitempty"`
	CommentInsights    []string    `json:"comment_insights,omitempty"`
	HasSchemaData      bool        `json:"has_schema_data,omitempty"`

	Relevance   float64 `json:"relevance"`
	WhyRelevant string  `json:"why_relevant,omitempty"`

	Subs  SubScores `json:"subs"`
	Score int       `json:"score"`
}
