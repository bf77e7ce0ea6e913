// Package enrich 为条目补齐检索结果拿不到的数据：
// Reddit 帖子的真实互动数据与热门评论，普通网页的正文摘录。
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/iWorld-y/topic_radar/pkg/dates"
	"github.com/iWorld-y/topic_radar/pkg/logger"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// Reddit 对无 UA 的请求返回 429，必须带自定义 UA
const userAgent = "topic_radar/1.0 (research aggregator)"

// maxTopComments 每帖保留的热门评论数
const maxTopComments = 3

// RedditEnricher 通过 Reddit 公开 JSON 接口补齐帖子数据
type RedditEnricher struct {
	httpClient *http.Client
}

// NewRedditEnricher 创建 Reddit 数据增强器
func NewRedditEnricher() *RedditEnricher {
	return &RedditEnricher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// 帖子 JSON 接口返回两个 Listing：帖子本体与评论树
type listing struct {
	Data struct {
		Children []struct {
			Data threadData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type threadData struct {
	Score       *int     `json:"score"`
	NumComments *int     `json:"num_comments"`
	UpvoteRatio *float64 `json:"upvote_ratio"`
	CreatedUTC  float64  `json:"created_utc"`
	Author      string   `json:"author"`
	Body        string   `json:"body"`
	Permalink   string   `json:"permalink"`
}

// EnrichThread 用帖子的 JSON 接口补齐真实互动数据与热门评论。
// 任何失败都原样返回条目，增强是尽力而为。
func (e *RedditEnricher) EnrichThread(ctx context.Context, item dm.Item) dm.Item {
	jsonURL := strings.TrimSuffix(item.URL, "/") + ".json"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jsonURL, nil)
	if err != nil {
		return item
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		logger.Log.Debugf("Reddit 帖子增强失败 [%s]: %v", item.URL, err)
		return item
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Debugf("Reddit 帖子增强失败 [%s]: status %d", item.URL, resp.StatusCode)
		return item
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return item
	}

	var listings []listing
	if err := json.Unmarshal(body, &listings); err != nil || len(listings) == 0 {
		return item
	}

	// 第一个 Listing 是帖子本体
	post := firstChild(listings[0])
	if post == nil {
		return item
	}

	item.Engagement = &dm.Engagement{
		Score:       post.Score,
		NumComments: post.NumComments,
		UpvoteRatio: post.UpvoteRatio,
	}
	item.EngagementVerified = true
	if post.CreatedUTC > 0 {
		item.Date = dates.TimestampToDate(int64(post.CreatedUTC))
	}
	item.Author = post.Author

	// 第二个 Listing 是评论树，取得分最高的几条
	if len(listings) > 1 {
		item.TopComments = topComments(listings[1])
		item.CommentInsights = commentInsights(item.TopComments)
	}

	return item
}

func firstChild(l listing) *threadData {
	if len(l.Data.Children) == 0 {
		return nil
	}
	return &l.Data.Children[0].Data
}

// topComments 提取得分最高的几条一级评论
func topComments(l listing) []dm.Comment {
	var comments []dm.Comment
	for _, child := range l.Data.Children {
		c := child.Data
		if c.Body == "" || c.Author == "" {
			continue
		}
		score := 0
		if c.Score != nil {
			score = *c.Score
		}
		excerpt := c.Body
		if runes := []rune(excerpt); len(runes) > 200 {
			excerpt = string(runes[:200])
		}
		comment := dm.Comment{
			Score:   score,
			Author:  c.Author,
			Excerpt: excerpt,
		}
		if c.CreatedUTC > 0 {
			comment.Date = dates.TimestampToDate(int64(c.CreatedUTC))
		}
		if c.Permalink != "" {
			comment.URL = "https://www.reddit.com" + c.Permalink
		}
		comments = append(comments, comment)
	}

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].Score > comments[j].Score
	})
	if len(comments) > maxTopComments {
		comments = comments[:maxTopComments]
	}
	return comments
}

// commentInsights 把热门评论压成单行提要，供紧凑渲染直接引用
func commentInsights(comments []dm.Comment) []string {
	out := make([]string, 0, len(comments))
	for _, c := range comments {
		// 摘录可能跨多行，折叠成一行
		excerpt := strings.Join(strings.Fields(c.Excerpt), " ")
		if runes := []rune(excerpt); len(runes) > 120 {
			excerpt = string(runes[:120]) + "..."
		}
		if excerpt == "" {
			continue
		}
		out = append(out, fmt.Sprintf("[%d pts] %s", c.Score, excerpt))
	}
	return out
}
