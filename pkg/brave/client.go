// Package brave 封装 Brave Search API 的四个端点：
// 网页、新闻、视频检索与 AI 摘要，统一处理鉴权、限速与错误映射。
package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/topic_radar/pkg/logger"
)

const (
	webSearchURL   = "https://api.search.brave.com/res/v1/web/search"
	newsSearchURL  = "https://api.search.brave.com/res/v1/news/search"
	videoSearchURL = "https://api.search.brave.com/res/v1/videos/search"
	summarizerURL  = "https://api.search.brave.com/res/v1/summarizer/search"
)

// 429 重试配置
const (
	maxRateLimitRetries  = 4
	rateLimitBackoffBase = time.Second
)

// Error Brave API 错误，带状态码与错误码
type Error struct {
	Message    string
	StatusCode int
	ErrorCode  string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("brave api error %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

// Client Brave Search API 客户端
type Client struct {
	apiKey     string
	searchLang string
	country    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient 创建一个新的 Brave 客户端。
// qps 控制对 Brave 的请求速率，免费档是 1 QPS。
func NewClient(apiKey, searchLang, country string, qps int) *Client {
	if qps <= 0 {
		qps = 1
	}
	return &Client{
		apiKey:     apiKey,
		searchLang: searchLang,
		country:    country,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(qps), 1),
	}
}

// request 执行带限速与 429 重试的 GET 请求并解析 JSON 响应
func (c *Client) request(ctx context.Context, endpoint string, params url.Values) (map[string]json.RawMessage, error) {
	fullURL := endpoint + "?" + params.Encode()

	for attempt := 0; attempt <= maxRateLimitRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request failed: %w", err)
		}
		req.Header.Set("X-Subscription-Token", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read body failed: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var parsed map[string]json.RawMessage
			if err := json.Unmarshal(body, &parsed); err != nil {
				return nil, fmt.Errorf("unmarshal response failed: %w", err)
			}
			return parsed, nil
		case http.StatusTooManyRequests:
			if attempt < maxRateLimitRetries {
				wait := rateLimitBackoffBase * (1 << attempt)
				logger.Log.Warnf("Brave 限流 (429)，%v 后重试 (第 %d/%d 次)", wait, attempt+1, maxRateLimitRetries)
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				continue
			}
			return nil, &Error{Message: "rate limit exceeded after retries", StatusCode: 429, ErrorCode: "RATE_LIMIT_EXCEEDED"}
		case http.StatusUnauthorized:
			return nil, &Error{Message: "invalid BRAVE_API_KEY", StatusCode: 401, ErrorCode: "SUBSCRIPTION_TOKEN_INVALID"}
		case http.StatusForbidden:
			return nil, &Error{Message: "brave plan does not include this feature", StatusCode: 403, ErrorCode: "PLAN_INSUFFICIENT"}
		case http.StatusUnprocessableEntity:
			return nil, &Error{Message: "invalid request parameters: " + string(body), StatusCode: 422, ErrorCode: "INVALID_PARAMS"}
		default:
			return nil, &Error{Message: string(body), StatusCode: resp.StatusCode}
		}
	}

	return nil, &Error{Message: "request failed after retries"}
}

// baseParams 各端点共享的查询参数
func (c *Client) baseParams(q string, count, maxCount, offset int) url.Values {
	if len(q) > 400 {
		q = q[:400]
	}
	if count > maxCount {
		count = maxCount
	}
	if offset > 9 {
		offset = 9
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("count", fmt.Sprint(count))
	params.Set("offset", fmt.Sprint(offset))
	params.Set("safesearch", "off")
	params.Set("spellcheck", "true")
	if c.searchLang != "" {
		params.Set("search_lang", c.searchLang)
	}
	if c.country != "" {
		params.Set("country", c.country)
	}
	return params
}

// WebSearchOptions 网页检索可选参数
type WebSearchOptions struct {
	Freshness     string // 时间过滤，形如 "YYYY-MM-DDtoYYYY-MM-DD"
	Count         int
	Offset        int
	ExtraSnippets bool
	Summary       bool   // 要求响应中附带摘要 key
	ResultFilter  string // 逗号分隔的结果类型
	Goggles       string // 结果重排 DSL
}

// WebSearch 执行 Brave 网页检索
func (c *Client) WebSearch(ctx context.Context, q string, opts WebSearchOptions) (map[string]json.RawMessage, error) {
	if opts.Count <= 0 {
		opts.Count = 20
	}
	params := c.baseParams(q, opts.Count, 20, opts.Offset)
	params.Set("extra_snippets", fmt.Sprint(opts.ExtraSnippets))
	params.Set("text_decorations", "false")
	if opts.Freshness != "" {
		params.Set("freshness", opts.Freshness)
	}
	if opts.Summary {
		params.Set("summary", "1")
	}
	if opts.ResultFilter != "" {
		params.Set("result_filter", opts.ResultFilter)
	}
	if opts.Goggles != "" {
		params.Set("goggles", opts.Goggles)
	}
	return c.request(ctx, webSearchURL, params)
}

// NewsSearch 执行 Brave 新闻检索，新闻端点单页上限 50
func (c *Client) NewsSearch(ctx context.Context, q, freshness string, count, offset int) (map[string]json.RawMessage, error) {
	if count <= 0 {
		count = 20
	}
	params := c.baseParams(q, count, 50, offset)
	params.Set("extra_snippets", "true")
	if freshness != "" {
		params.Set("freshness", freshness)
	}
	return c.request(ctx, newsSearchURL, params)
}

// VideoSearch 执行 Brave 视频检索
func (c *Client) VideoSearch(ctx context.Context, q, freshness string, count, offset int) (map[string]json.RawMessage, error) {
	if count <= 0 {
		count = 20
	}
	params := c.baseParams(q, count, 20, offset)
	if freshness != "" {
		params.Set("freshness", freshness)
	}
	return c.request(ctx, videoSearchURL, params)
}

// SummarizerSearch 用网页检索返回的 key 获取 AI 摘要。
// 两步摘要流程的第二步，不单独计费。
func (c *Client) SummarizerSearch(ctx context.Context, key string) (map[string]json.RawMessage, error) {
	params := url.Values{}
	params.Set("key", key)
	params.Set("inline_references", "true")
	params.Set("entity_info", "1")
	return c.request(ctx, summarizerURL, params)
}

// Freshness 把日期区间拼成 Brave 的 freshness 参数
func Freshness(from, to string) string {
	return from + "to" + to
}
