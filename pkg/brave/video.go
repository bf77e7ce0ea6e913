package brave

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/iWorld-y/topic_radar/pkg/logger"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// videoDepthConfig 视频检索各深度的 (单页条数, 翻页数)
var videoDepthConfig = map[string][2]int{
	"quick":   {10, 1},
	"default": {20, 1},
	"deep":    {20, 2},
}

// videoResult Brave 视频检索单条结果
type videoResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PageAge     string `json:"page_age"`
	Thumbnail   struct {
		Src string `json:"src"`
	} `json:"thumbnail"`
	Profile struct {
		Name     string `json:"name"`
		LongName string `json:"long_name"`
	} `json:"profile"`
	Video struct {
		Duration string `json:"duration"`
	} `json:"video"`
}

// SearchVideos 检索话题相关的视频内容
func SearchVideos(ctx context.Context, client *Client, topic, from, to, depth string) ([]dm.Item, error) {
	cfg, ok := videoDepthConfig[depth]
	if !ok {
		cfg = videoDepthConfig["default"]
	}
	count, pages := cfg[0], cfg[1]
	freshness := Freshness(from, to)

	var results []videoResult
	for page := 0; page < pages; page++ {
		resp, err := client.VideoSearch(ctx, topic, freshness, count, page)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			logger.Log.Warnf("视频检索第 %d 页失败: %v", page, err)
			break
		}

		var pageResults []videoResult
		if raw, ok := resp["results"]; ok {
			_ = json.Unmarshal(raw, &pageResults)
		}
		results = append(results, pageResults...)

		if len(pageResults) < count {
			break
		}
	}

	return parseVideoResults(results), nil
}

func parseVideoResults(results []videoResult) []dm.Item {
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

		creator := r.Profile.Name
		if creator == "" {
			creator = r.Profile.LongName
		}

		items = append(items, dm.Item{
			Title:        title,
			URL:          r.URL,
			SourceDomain: extractDomain(r.URL),
			Creator:      creator,
			ThumbnailURL: r.Thumbnail.Src,
			Duration:     r.Video.Duration,
			Snippet:      desc,
			Date:         parsePageAge(r.PageAge),
			Relevance:    positionRelevance(i, total, 0.2, 0.8),
			WhyRelevant:  clip(why, 150),
		})
	}
	return items
}
