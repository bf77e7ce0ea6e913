package brave

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/iWorld-y/topic_radar/pkg/logger"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// redditDepthPages Reddit 检索各深度的翻页数
var redditDepthPages = map[string]int{
	"quick":   1,
	"default": 2,
	"deep":    3,
}

var (
	threadURLRe = regexp.MustCompile(`reddit\.com/r/[^/]+/comments/`)
	subredditRe = regexp.MustCompile(`reddit\.com/r/([^/]+)`)
)

// stopWords 话题化简时丢掉的虚词
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "for": true, "to": true,
	"in": true, "on": true, "with": true, "and": true, "or": true,
	"is": true, "are": true, "best": true, "top": true, "how": true,
}

// simplifyTopic 把话题化简为 2-3 个核心词，扩大匹配面
func simplifyTopic(topic string) string {
	words := strings.Fields(topic)
	var core []string
	for _, w := range words {
		if !stopWords[strings.ToLower(w)] {
			core = append(core, w)
		}
	}
	if len(core) >= 2 {
		if len(core) > 3 {
			core = core[:3]
		}
		return strings.Join(core, " ")
	}
	return topic
}

// SearchThreads 通过 site:reddit.com 检索 Reddit 帖子。
// 结果太少时用化简后的话题再试一次；只保留帖子链接，
// 子版块首页与用户页都丢掉。互动数据留给后续增强阶段补齐。
func SearchThreads(ctx context.Context, client *Client, topic, from, to, depth string) ([]dm.Item, error) {
	pages, ok := redditDepthPages[depth]
	if !ok {
		pages = 2
	}
	freshness := Freshness(from, to)

	var results []webResult
	for page := 0; page < pages; page++ {
		resp, err := client.WebSearch(ctx, topic+" site:reddit.com", WebSearchOptions{
			Freshness:     freshness,
			Count:         20,
			Offset:        page,
			ExtraSnippets: true,
		})
		if err != nil {
			if page == 0 {
				return nil, err
			}
			logger.Log.Warnf("Reddit 检索第 %d 页失败: %v", page, err)
			break
		}

		var web webSection
		if raw, ok := resp["web"]; ok {
			_ = json.Unmarshal(raw, &web)
		}
		results = append(results, web.Results...)

		var q queryInfo
		if raw, ok := resp["query"]; ok {
			_ = json.Unmarshal(raw, &q)
		}
		if !q.MoreResultsAvailable {
			break
		}
	}

	// 结果太少时化简话题重试一轮
	if len(results) < 5 {
		if core := simplifyTopic(topic); core != topic {
			resp, err := client.WebSearch(ctx, core+" site:reddit.com", WebSearchOptions{
				Freshness:     freshness,
				Count:         20,
				ExtraSnippets: true,
			})
			if err == nil {
				var web webSection
				if raw, ok := resp["web"]; ok {
					_ = json.Unmarshal(raw, &web)
				}
				seen := map[string]bool{}
				for _, r := range results {
					seen[r.URL] = true
				}
				for _, r := range web.Results {
					if !seen[r.URL] {
						results = append(results, r)
					}
				}
			}
		}
	}

	return parseThreadResults(results), nil
}

// parseThreadResults 把 Reddit 检索结果转为条目
func parseThreadResults(results []webResult) []dm.Item {
	items := make([]dm.Item, 0, len(results))
	total := len(results)
	for i, r := range results {
		if r.URL == "" || !strings.Contains(r.URL, "reddit.com") {
			continue
		}
		if !threadURLRe.MatchString(r.URL) {
			continue
		}

		title := strings.TrimSpace(r.Title)
		// Reddit 标题常带 "Title : subreddit" 后缀
		if idx := strings.Index(title, " : "); idx >= 0 {
			title = strings.TrimSpace(title[:idx])
		}

		subreddit := "unknown"
		if m := subredditRe.FindStringSubmatch(r.URL); m != nil {
			subreddit = m[1]
		}

		desc := strings.TrimSpace(r.Description)
		why := desc
		if why == "" {
			why = title
		}

		items = append(items, dm.Item{
			Title:       title,
			URL:         r.URL,
			Subreddit:   subreddit,
			Date:        parsePageAge(r.PageAge),
			Relevance:   positionRelevance(i, total, 0.3, 0.7),
			WhyRelevant: clip(why, 150),
		})
	}
	return items
}
