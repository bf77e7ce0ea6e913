// Package xpost 通过带实时检索能力的大模型接口发现 X 平台帖子。
// 模型返回结构化 JSON，正文与互动数据都由模型抽取。
package xpost

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/topic_radar/pkg/config"
	"github.com/iWorld-y/topic_radar/pkg/dates"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// depthCount 各深度要求模型返回的帖子数
var depthCount = map[string]int{
	"quick":   10,
	"default": 20,
	"deep":    30,
}

// Client X 帖子检索客户端
type Client struct {
	chatModel model.ChatModel
	modelName string
}

// NewClient 创建一个新的 X 帖子客户端
func NewClient(ctx context.Context, cfg config.LLMConfig) (*Client, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return &Client{chatModel: chatModel, modelName: cfg.Model}, nil
}

// ModelName 返回实际使用的模型名，报告元信息用
func (c *Client) ModelName() string {
	return c.modelName
}

// rawPost 模型返回的单条帖子
type rawPost struct {
	Text         string `json:"text"`
	URL          string `json:"url"`
	AuthorHandle string `json:"author_handle"`
	Date         string `json:"date"`
	Engagement   *struct {
		Likes   *int `json:"likes"`
		Reposts *int `json:"reposts"`
		Replies *int `json:"replies"`
		Quotes  *int `json:"quotes"`
		Views   *int `json:"views"`
	} `json:"engagement"`
	Relevance   float64 `json:"relevance"`
	WhyRelevant string  `json:"why_relevant"`
}

const promptTemplate = `搜索 X (Twitter) 上 %s 至 %s 期间关于「%s」的热门帖子，最多返回 %d 条。
请务必严格按照以下 JSON 格式返回一个数组，不要包含任何 markdown 标记：
[
  {
    "text": "帖子原文（200字以内）",
    "url": "https://x.com/user/status/...",
    "author_handle": "@handle",
    "date": "YYYY-MM-DD",
    "engagement": {"likes": 0, "reposts": 0, "replies": 0, "quotes": 0, "views": 0},
    "relevance": 0.9,
    "why_relevant": "与话题的关联（150字以内）"
  }
]
要求：只返回真实存在且日期落在区间内的帖子；互动数字未知时对应字段填 null；relevance 为 0-1 的小数。`

// Search 检索话题相关的 X 帖子。
// 限流错误按指数退避重试，模型输出先剥掉代码块围栏再解析。
func (c *Client) Search(ctx context.Context, topic, from, to, depth string) ([]dm.Item, error) {
	count, ok := depthCount[depth]
	if !ok {
		count = 20
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: "你是一个 JSON 生成器。请只输出 JSON 字符串。"},
		{Role: schema.User, Content: fmt.Sprintf(promptTemplate, from, to, topic, count)},
	}

	maxRetries := 3
	baseDelay := 2 * time.Second
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		resp, err := c.chatModel.Generate(ctx, messages)
		if err != nil {
			if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "too many requests") {
				lastErr = err
				if i < maxRetries {
					select {
					case <-time.After(baseDelay * time.Duration(1<<i)):
					case <-ctx.Done():
						return nil, ctx.Err()
					}
					continue
				}
			}
			return nil, err
		}

		cleanContent := strings.TrimSpace(resp.Content)
		cleanContent = strings.TrimPrefix(cleanContent, "```json")
		cleanContent = strings.TrimPrefix(cleanContent, "```")
		cleanContent = strings.TrimSuffix(cleanContent, "```")

		var posts []rawPost
		if err := json.Unmarshal([]byte(cleanContent), &posts); err != nil {
			lastErr = fmt.Errorf("解析模型输出失败: %w", err)
			if i < maxRetries {
				continue
			}
			return nil, lastErr
		}

		return parsePosts(posts), nil
	}

	return nil, lastErr
}

// parsePosts 把模型输出转为条目。
// 点赞或转发任一非空即视为互动数据已核实。
func parsePosts(posts []rawPost) []dm.Item {
	items := make([]dm.Item, 0, len(posts))
	for _, p := range posts {
		if p.URL == "" {
			continue
		}

		var engagement *dm.Engagement
		verified := false
		if p.Engagement != nil {
			engagement = &dm.Engagement{
				Likes:   p.Engagement.Likes,
				Reposts: p.Engagement.Reposts,
				Replies: p.Engagement.Replies,
				Quotes:  p.Engagement.Quotes,
				Views:   p.Engagement.Views,
			}
			verified = p.Engagement.Likes != nil || p.Engagement.Reposts != nil
		}

		relevance := p.Relevance
		if relevance <= 0 || relevance > 1 {
			relevance = 0.5
		}

		items = append(items, dm.Item{
			Title:              strings.TrimSpace(p.Text),
			URL:                p.URL,
			Author:             p.AuthorHandle,
			Date:               dates.ToDate(p.Date),
			Engagement:         engagement,
			EngagementVerified: verified,
			Relevance:          relevance,
			WhyRelevant:        strings.TrimSpace(p.WhyRelevant),
		})
	}
	return items
}
