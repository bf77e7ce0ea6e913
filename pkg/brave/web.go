package brave

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/iWorld-y/topic_radar/pkg/dates"
	"github.com/iWorld-y/topic_radar/pkg/logger"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// defaultGoggles 网页检索的默认重排规则：压掉图片站，抬高技术社区
const defaultGoggles = "$discard,site=pinterest.com\n$boost=2,site=github.com\n$boost=2,site=dev.to\n$boost=2,site=stackoverflow.com"

// webDepthPages 网页检索各深度的翻页数
var webDepthPages = map[string]int{
	"quick":   1,
	"default": 2,
	"deep":    3,
}

// webResult Brave 网页检索单条结果
type webResult struct {
	Title         string          `json:"title"`
	URL           string          `json:"url"`
	Description   string          `json:"description"`
	PageAge       string          `json:"page_age"`
	ExtraSnippets []string        `json:"extra_snippets"`
	Schemas       json.RawMessage `json:"schemas"`
}

type webSection struct {
	Results []webResult `json:"results"`
}

type queryInfo struct {
	MoreResultsAvailable bool `json:"more_results_available"`
}

type faqResult struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	URL      string `json:"url"`
}

type faqSection struct {
	Results []faqResult `json:"results"`
}

type infoboxResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	LongDesc    string `json:"long_desc"`
	URL         string `json:"url"`
	Subtype     string `json:"subtype"`
	Type        string `json:"type"`
}

type infoboxSection struct {
	Results []infoboxResult `json:"results"`
	infoboxResult
}

type summarizerSection struct {
	Key string `json:"key"`
}

// WebOutcome 一次网页检索的全部产出：
// 普通网页、论坛讨论、FAQ、知识面板与摘要 key 来自同一次调用。
type WebOutcome struct {
	Pages         []dm.Item
	Discussions   []dm.Item
	FAQs          []dm.FAQ
	Infobox       *dm.Infobox
	SummarizerKey string
}

// extractDomain 取 URL 的主机名并去掉 www 前缀
func extractDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// parsePageAge 把 Brave 的 page_age（ISO 8601 时间串）解析为 YYYY-MM-DD
func parsePageAge(pageAge string) string {
	if pageAge == "" {
		return ""
	}
	if d := dates.ToDate(pageAge); d != "" {
		return d
	}
	// 兜底：直接截取日期前缀
	if len(pageAge) >= 10 && pageAge[4] == '-' && pageAge[7] == '-' {
		return pageAge[:10]
	}
	return ""
}

// positionRelevance 按检索排名位置推相关性，排名越靠前越相关
func positionRelevance(i, total int, floor, span float64) float64 {
	if total <= 0 {
		total = 1
	}
	r := 1.0 - float64(i)/float64(total)*span
	if r < floor {
		return floor
	}
	return r
}

// socialDomains 由专门来源覆盖的站点，网页结果里跳过
var socialDomains = []string{"reddit.com", "twitter.com", "x.com", "news.ycombinator.com"}

func isSocialDomain(domain string) bool {
	for _, d := range socialDomains {
		if strings.Contains(domain, d) {
			return true
		}
	}
	return false
}

// SearchWeb 执行网页检索并解析全部结果类型。
// 首页附带 discussions/faq/infobox 与摘要 key，后续翻页只取普通网页结果。
// 首页失败视为整体失败；翻页失败只截断。
func SearchWeb(ctx context.Context, client *Client, topic, from, to, depth string) (*WebOutcome, error) {
	pages, ok := webDepthPages[depth]
	if !ok {
		pages = 2
	}
	freshness := Freshness(from, to)

	outcome := &WebOutcome{}
	var rawPages []webResult
	var rawDiscussions []webResult

	for page := 0; page < pages; page++ {
		opts := WebSearchOptions{
			Freshness:     freshness,
			Count:         20,
			Offset:        page,
			ExtraSnippets: true,
			Goggles:       defaultGoggles,
		}
		if page == 0 {
			opts.Summary = true
			opts.ResultFilter = "web,discussions,faq,infobox"
		}

		resp, err := client.WebSearch(ctx, topic, opts)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			logger.Log.Warnf("网页检索第 %d 页失败: %v", page, err)
			break
		}

		var web webSection
		if raw, ok := resp["web"]; ok {
			_ = json.Unmarshal(raw, &web)
		}
		rawPages = append(rawPages, web.Results...)

		if page == 0 {
			var disc webSection
			if raw, ok := resp["discussions"]; ok {
				_ = json.Unmarshal(raw, &disc)
			}
			rawDiscussions = disc.Results

			if raw, ok := resp["faq"]; ok {
				var faq faqSection
				if json.Unmarshal(raw, &faq) == nil {
					for _, r := range faq.Results {
						q := strings.TrimSpace(r.Question)
						a := strings.TrimSpace(r.Answer)
						if q == "" || a == "" {
							continue
						}
						if len(a) > 500 {
							a = a[:500]
						}
						outcome.FAQs = append(outcome.FAQs, dm.FAQ{Question: q, Answer: a, URL: r.URL})
					}
				}
			}
			if raw, ok := resp["infobox"]; ok {
				outcome.Infobox = parseInfobox(raw)
			}
			if raw, ok := resp["summarizer"]; ok {
				var summ summarizerSection
				if json.Unmarshal(raw, &summ) == nil {
					outcome.SummarizerKey = summ.Key
				}
			}
		}

		var q queryInfo
		if raw, ok := resp["query"]; ok {
			_ = json.Unmarshal(raw, &q)
		}
		if !q.MoreResultsAvailable {
			break
		}
	}

	outcome.Pages = parseWebResults(rawPages)
	outcome.Discussions = parseDiscussions(rawDiscussions)
	return outcome, nil
}

// parseWebResults 把网页结果转为条目，跳过专门来源覆盖的社交站点
func parseWebResults(results []webResult) []dm.Item {
	items := make([]dm.Item, 0, len(results))
	total := len(results)
	for i, r := range results {
		if r.URL == "" {
			continue
		}
		domain := extractDomain(r.URL)
		if isSocialDomain(domain) {
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
			SourceDomain:  domain,
			Snippet:       desc,
			ExtraSnippets: capSnippets(r.ExtraSnippets),
			Date:          parsePageAge(r.PageAge),
			HasSchemaData: len(r.Schemas) > 0 && string(r.Schemas) != "null",
			Relevance:     positionRelevance(i, total, 0.2, 0.8),
			WhyRelevant:   clip(why, 150),
		})
	}
	return items
}

// forumNames 常见论坛域名到展示名的映射
var forumNames = map[string]string{
	"stackoverflow.com":    "Stack Overflow",
	"stackexchange.com":    "Stack Exchange",
	"news.ycombinator.com": "HackerNews",
	"discourse.org":        "Discourse",
}

// parseDiscussions 解析论坛讨论结果，Reddit 由专门来源覆盖
func parseDiscussions(results []webResult) []dm.Item {
	items := make([]dm.Item, 0, len(results))
	total := len(results)
	for i, r := range results {
		if r.URL == "" {
			continue
		}
		domain := extractDomain(r.URL)
		if strings.Contains(domain, "reddit.com") {
			continue
		}

		forum := forumNames[domain]
		if forum == "" {
			forum = domain
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
			ForumName:     forum,
			Snippet:       desc,
			ExtraSnippets: capSnippets(r.ExtraSnippets),
			Date:          parsePageAge(r.PageAge),
			Relevance:     positionRelevance(i, total, 0.2, 0.8),
			WhyRelevant:   clip(why, 150),
		})
	}
	return items
}

// parseInfobox 解析知识面板，可能直接是对象也可能套在 results 里
func parseInfobox(raw json.RawMessage) *dm.Infobox {
	var sec infoboxSection
	if err := json.Unmarshal(raw, &sec); err != nil {
		return nil
	}
	box := sec.infoboxResult
	if len(sec.Results) > 0 {
		box = sec.Results[0]
	}
	if box.Title == "" {
		return nil
	}
	typ := box.Subtype
	if typ == "" {
		typ = box.Type
	}
	return &dm.Infobox{
		Title:       box.Title,
		Description: box.Description,
		LongDesc:    box.LongDesc,
		URL:         box.URL,
		Type:        typ,
	}
}

// capSnippets 每条最多保留 5 段摘录
func capSnippets(snippets []string) []string {
	if len(snippets) > 5 {
		snippets = snippets[:5]
	}
	return snippets
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
