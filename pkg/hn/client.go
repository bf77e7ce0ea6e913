// Package hn 通过 Algolia API 检索 HackerNews，免费且无须鉴权。
package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iWorld-y/topic_radar/pkg/dates"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

const searchURL = "https://hn.algolia.com/api/v1/search"

// depthHits 各深度请求的故事数上限
var depthHits = map[string]int{
	"quick":   15,
	"default": 30,
	"deep":    60,
}

// Client HackerNews Algolia 客户端
type Client struct {
	httpClient *http.Client
}

// NewClient 创建一个新的 HN 客户端
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type hit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	CreatedAtI  int64  `json:"created_at_i"`
	Points      *int   `json:"points"`
	NumComments *int   `json:"num_comments"`
}

type searchResponse struct {
	Hits []hit `json:"hits"`
}

// Search 按话题与日期区间检索 HN 故事。
// 日期区间转 Unix 时间戳做数值过滤，结束日加一天以覆盖整天。
func (c *Client) Search(ctx context.Context, topic, from, to, depth string) ([]dm.Item, error) {
	hitsPerPage, ok := depthHits[depth]
	if !ok {
		hitsPerPage = 30
	}

	var fromTS, toTS int64
	if f, ok := dates.Parse(from); ok {
		fromTS = f.Unix()
	}
	if t, ok := dates.Parse(to); ok {
		toTS = t.Unix() + 86400
	} else {
		toTS = time.Now().UTC().Unix()
	}

	params := url.Values{}
	params.Set("query", topic)
	params.Set("tags", "story") // 只要故事，不要评论
	params.Set("numericFilters", fmt.Sprintf("created_at_i>%d,created_at_i<%d", fromTS, toTS))
	params.Set("hitsPerPage", fmt.Sprint(hitsPerPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("algolia api error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return parseHits(parsed.Hits), nil
}

// parseHits 把 Algolia 命中转为条目。
// 外链故事用原文 URL 作主链接，讨论页作次链接；
// 纯讨论帖两者相同。互动数据来自 API，始终视为已核实。
func parseHits(hits []hit) []dm.Item {
	items := make([]dm.Item, 0, len(hits))
	for i, h := range hits {
		storyURL := "https://news.ycombinator.com/item?id=" + h.ObjectID
		u := h.URL
		if u == "" {
			u = storyURL
		}

		points, comments := 0, 0
		if h.Points != nil {
			points = *h.Points
		}
		if h.NumComments != nil {
			comments = *h.NumComments
		}

		// Algolia 自身按相关性排序，名次线性折算
		relevance := 1.0 - float64(i)*0.02
		if relevance < 0.5 {
			relevance = 0.5
		}

		items = append(items, dm.Item{
			Title:        h.Title,
			URL:          u,
			SecondaryURL: storyURL,
			Author:       h.Author,
			Date:         dates.TimestampToDate(h.CreatedAtI),
			Engagement: &dm.Engagement{
				Points:      &points,
				NumComments: &comments,
			},
			EngagementVerified: true,
			Relevance:          relevance,
			WhyRelevant:        fmt.Sprintf("HackerNews story with %d points and %d comments", points, comments),
		})
	}
	return items
}
