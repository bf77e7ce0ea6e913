package brave

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/iWorld-y/topic_radar/pkg/logger"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// newsDepthConfig 新闻检索各深度的 (单页条数, 翻页数)
var newsDepthConfig = map[string][2]int{
	"quick":   {20, 1},
	"default": {50, 1},
	"deep":    {50, 2},
}

// newsResult Brave 新闻检索单条结果
type newsResult struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Description   string   `json:"description"`
	PageAge       string   `json:"page_age"`
	ExtraSnippets []string `json:"extra_snippets"`
	MetaURL       struct {
		Hostname string `json:"hostname"`
	} `json:"meta_url"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type newsSection struct {
	Results []newsResult `json:"results"`
}

// sourceName 提取可读的媒体名：meta_url 主机名优先，其次 profile 名
func (r *newsResult) sourceName() string {
	if r.MetaURL.Hostname != "" {
		return strings.TrimPrefix(r.MetaURL.Hostname, "www.")
	}
	if r.Profile.Name != "" {
		return r.Profile.Name
	}
	return extractDomain(r.URL)
}

// SearchNews 检索话题相关的新闻报道
func SearchNews(ctx context.Context, client *Client, topic, from, to, depth string) ([]dm.Item, error) {
	cfg, ok := newsDepthConfig[depth]
	if !ok {
		cfg = newsDepthConfig["default"]
	}
	count, pages := cfg[0], cfg[1]
	freshness := Freshness(from, to)

	var results []newsResult
	for page := 0; page < pages; page++ {
		resp, err := client.NewsSearch(ctx, topic, freshness, count, page)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			logger.Log.Warnf("新闻检索第 %d 页失败: %v", page, err)
			break
		}

		var sec newsSection
		if raw, ok := resp["results"]; ok {
			_ = json.Unmarshal(raw, &sec.Results)
		}
		results = append(results, sec.Results...)

		if len(sec.Results) < count {
			break
		}
	}

	return parseNewsResults(results), nil
}

func parseNewsResults(results []newsResult) []dm.Item {
	items := make([]dm.Item, 0, len(results))
	total := len(results)
	for i, r := range results {
		if r.URL == "" {
			continue
		}

		title := strings.TrimSpace(r.Title)
		desc := strings.TrimSpace(r.Description)
		why := desc
		if why == "" {
			why = title
		}

		items = append(items, dm.Item{
			Title:         title,
			URL:           r.URL,
			SourceName:    r.sourceName(),
			SourceDomain:  extractDomain(r.URL),
			Snippet:       desc,
			ExtraSnippets: capSnippets(r.ExtraSnippets),
			Date:          parsePageAge(r.PageAge),
			Relevance:     positionRelevance(i, total, 0.2, 0.8),
			WhyRelevant:   clip(why, 150),
		})
	}
	return items
}
