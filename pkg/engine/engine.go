// Package engine 是核心编排层：并发拉取七个来源，
// 逐条增强，再走归一化、打分、排序、去重，最后组装报告。
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/iWorld-y/topic_radar/pkg/brave"
	"github.com/iWorld-y/topic_radar/pkg/config"
	"github.com/iWorld-y/topic_radar/pkg/dedupe"
	"github.com/iWorld-y/topic_radar/pkg/logger"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
	"github.com/iWorld-y/topic_radar/pkg/normalize"
	"github.com/iWorld-y/topic_radar/pkg/score"
)

// ProgressFunc 进度回调，status 为人类可读状态，progress 为 0-100
type ProgressFunc func(status string, progress int)

// WebProvider 网页检索（附带讨论、FAQ、知识面板与摘要 key）
type WebProvider interface {
	SearchWeb(ctx context.Context, topic, from, to, depth string) (*brave.WebOutcome, error)
}

// ThreadProvider 社区主题帖检索
type ThreadProvider interface {
	SearchThreads(ctx context.Context, topic, from, to, depth string) ([]dm.Item, error)
}

// NewsProvider 新闻检索
type NewsProvider interface {
	SearchNews(ctx context.Context, topic, from, to, depth string) ([]dm.Item, error)
}

// VideoProvider 视频检索
type VideoProvider interface {
	SearchVideos(ctx context.Context, topic, from, to, depth string) ([]dm.Item, error)
}

// PostProvider 微博客帖子检索
type PostProvider interface {
	Search(ctx context.Context, topic, from, to, depth string) ([]dm.Item, error)
	ModelName() string
}

// AggregatorProvider 技术新闻聚合站检索
type AggregatorProvider interface {
	Search(ctx context.Context, topic, from, to, depth string) ([]dm.Item, error)
}

// SummaryProvider 用摘要 key 换取 AI 摘要
type SummaryProvider interface {
	FetchSummary(ctx context.Context, key string) *dm.Summary
}

// ThreadEnricher 主题帖条目级增强
type ThreadEnricher interface {
	EnrichThread(ctx context.Context, item dm.Item) dm.Item
}

// braveProvider 把 Brave 客户端适配到引擎的 provider 接口
type braveProvider struct {
	client *brave.Client
}

func (b *braveProvider) SearchWeb(ctx context.Context, topic, from, to, depth string) (*brave.WebOutcome, error) {
	return brave.SearchWeb(ctx, b.client, topic, from, to, depth)
}

func (b *braveProvider) SearchThreads(ctx context.Context, topic, from, to, depth string) ([]dm.Item, error) {
	return brave.SearchThreads(ctx, b.client, topic, from, to, depth)
}

func (b *braveProvider) SearchNews(ctx context.Context, topic, from, to, depth string) ([]dm.Item, error) {
	return brave.SearchNews(ctx, b.client, topic, from, to, depth)
}

func (b *braveProvider) SearchVideos(ctx context.Context, topic, from, to, depth string) ([]dm.Item, error) {
	return brave.SearchVideos(ctx, b.client, topic, from, to, depth)
}

func (b *braveProvider) FetchSummary(ctx context.Context, key string) *dm.Summary {
	return brave.FetchSummary(ctx, b.client, key)
}

// Engine 核心处理引擎
type Engine struct {
	cfg *config.Config

	web        WebProvider
	threads    ThreadProvider
	news       NewsProvider
	videos     VideoProvider
	posts      PostProvider
	aggregator AggregatorProvider
	summarizer SummaryProvider

	threadEnricher ThreadEnricher
	pageEnricher   func(dm.Item) dm.Item
}

// Option 引擎装配选项，测试时用桩替换 provider
type Option func(*Engine)

// WithBrave 装配 Brave 系 provider（网页、帖子、新闻、视频、摘要共用一个客户端）
func WithBrave(client *brave.Client) Option {
	return func(e *Engine) {
		p := &braveProvider{client: client}
		e.web = p
		e.threads = p
		e.news = p
		e.videos = p
		e.summarizer = p
	}
}

// WithPosts 装配微博客帖子 provider
func WithPosts(p PostProvider) Option {
	return func(e *Engine) { e.posts = p }
}

// WithAggregator 装配聚合站 provider
func WithAggregator(p AggregatorProvider) Option {
	return func(e *Engine) { e.aggregator = p }
}

// WithThreadEnricher 装配主题帖增强器
func WithThreadEnricher(enricher ThreadEnricher) Option {
	return func(e *Engine) { e.threadEnricher = enricher }
}

// WithPageEnricher 装配网页正文增强函数
func WithPageEnricher(f func(dm.Item) dm.Item) Option {
	return func(e *Engine) { e.pageEnricher = f }
}

// WithProviders 测试用：直接注入全部 provider
func WithProviders(web WebProvider, threads ThreadProvider, news NewsProvider, videos VideoProvider, summarizer SummaryProvider) Option {
	return func(e *Engine) {
		e.web = web
		e.threads = threads
		e.news = news
		e.videos = videos
		e.summarizer = summarizer
	}
}

// NewEngine 创建引擎实例
func NewEngine(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOptions 单次研究任务参数
type RunOptions struct {
	Topic string
	From  string
	To    string
	// Depth 检索深度: quick / default / deep
	Depth string
	// Sources 已解析的来源模式: full / brave / x / hn / reddit / news / web
	Sources  string
	Progress ProgressFunc
}

// sourceResult 单个来源的抓取结果
type sourceResult struct {
	items []dm.Item
	web   *brave.WebOutcome
	err   error
}

// Run 执行一次研究任务。部分来源失败不是致命错误：
// 失败来源记入报告的 Errors，其余来源照常产出。
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*dm.Report, error) {
	progress := opts.Progress
	if progress == nil {
		progress = func(string, int) {}
	}

	logger.Log.Infof("开始研究话题 [%s]，区间 %s ~ %s，模式 %s/%s",
		opts.Topic, opts.From, opts.To, opts.Sources, opts.Depth)
	progress("searching", 5)

	modelUsed := ""
	if e.posts != nil {
		modelUsed = e.posts.ModelName()
	}
	report := dm.NewReport(opts.Topic, opts.From, opts.To, modeLabel(opts.Sources), modelUsed)

	results := e.fanOut(ctx, opts, progress)

	// 提取网页检索的附带产出
	var webOutcome *brave.WebOutcome
	if r, ok := results["web"]; ok && r.web != nil {
		webOutcome = r.web
	}

	// 汇总各来源条目与错误
	rawLists := map[dm.SourceType][]dm.Item{}
	collect := func(key string, source dm.SourceType, items []dm.Item) {
		r, ok := results[key]
		if !ok {
			return
		}
		if r.err != nil {
			report.Errors[source] = r.err.Error()
			logger.Log.Errorf("来源 [%s] 抓取失败: %v", source, r.err)
			return
		}
		rawLists[source] = items
	}
	if webOutcome != nil {
		collect("web", dm.SourcePages, webOutcome.Pages)
		collect("web", dm.SourceDiscussions, webOutcome.Discussions)
	} else {
		collect("web", dm.SourcePages, nil)
		collect("web", dm.SourceDiscussions, nil)
	}
	if r, ok := results["threads"]; ok {
		collect("threads", dm.SourceThreads, r.items)
	}
	if r, ok := results["news"]; ok {
		collect("news", dm.SourceNews, r.items)
	}
	if r, ok := results["videos"]; ok {
		collect("videos", dm.SourceVideos, r.items)
	}
	if r, ok := results["posts"]; ok {
		collect("posts", dm.SourcePosts, r.items)
	}
	if r, ok := results["aggregator"]; ok {
		collect("aggregator", dm.SourceAggregator, r.items)
	}

	progress("enriching", 60)

	// 条目级增强：主题帖补真实互动数据，deep 模式下网页补正文摘录
	if threads, ok := rawLists[dm.SourceThreads]; ok && e.threadEnricher != nil {
		rawLists[dm.SourceThreads] = e.enrichThreads(ctx, threads)
	}
	if pages, ok := rawLists[dm.SourcePages]; ok && e.pageEnricher != nil && opts.Depth == "deep" {
		rawLists[dm.SourcePages] = e.enrichPages(pages)
	}

	// AI 摘要不单独计费，有 key 就顺手拉一份
	if webOutcome != nil {
		report.FAQs = webOutcome.FAQs
		report.Infobox = webOutcome.Infobox
		if webOutcome.SummarizerKey != "" && e.summarizer != nil {
			report.Summary = e.summarizer.FetchSummary(ctx, webOutcome.SummarizerKey)
		}
	}

	progress("processing", 85)
	e.process(report, rawLists, opts)

	report.DataQuality = ComputeDataQuality(report)
	progress("done", 100)
	logger.Log.Infof("话题 [%s] 研究完成，共 %d 条结果，%d 个来源失败",
		opts.Topic, report.DataQuality.TotalItems, len(report.Errors))

	return report, nil
}

// fanOut 按来源模式并发拉取，最多同时 cfg.Concurrency.Fanout 个请求
func (e *Engine) fanOut(ctx context.Context, opts RunOptions, progress ProgressFunc) map[string]*sourceResult {
	runWeb := e.web != nil && inMode(opts.Sources, "full", "brave", "web")
	runThreads := e.threads != nil && inMode(opts.Sources, "full", "brave", "reddit")
	runNews := e.news != nil && inMode(opts.Sources, "full", "brave", "news")
	runVideos := e.videos != nil && inMode(opts.Sources, "full", "brave")
	runPosts := e.posts != nil && inMode(opts.Sources, "full", "x")
	runAggregator := e.aggregator != nil // 聚合站免费，永远参与

	type task struct {
		key string
		run func(ctx context.Context) *sourceResult
	}
	var tasks []task
	if runWeb {
		tasks = append(tasks, task{"web", func(ctx context.Context) *sourceResult {
			outcome, err := e.web.SearchWeb(ctx, opts.Topic, opts.From, opts.To, opts.Depth)
			return &sourceResult{web: outcome, err: err}
		}})
	}
	if runThreads {
		tasks = append(tasks, task{"threads", func(ctx context.Context) *sourceResult {
			items, err := e.threads.SearchThreads(ctx, opts.Topic, opts.From, opts.To, opts.Depth)
			return &sourceResult{items: items, err: err}
		}})
	}
	if runNews {
		tasks = append(tasks, task{"news", func(ctx context.Context) *sourceResult {
			items, err := e.news.SearchNews(ctx, opts.Topic, opts.From, opts.To, opts.Depth)
			return &sourceResult{items: items, err: err}
		}})
	}
	if runVideos {
		tasks = append(tasks, task{"videos", func(ctx context.Context) *sourceResult {
			items, err := e.videos.SearchVideos(ctx, opts.Topic, opts.From, opts.To, opts.Depth)
			return &sourceResult{items: items, err: err}
		}})
	}
	if runPosts {
		tasks = append(tasks, task{"posts", func(ctx context.Context) *sourceResult {
			items, err := e.posts.Search(ctx, opts.Topic, opts.From, opts.To, opts.Depth)
			return &sourceResult{items: items, err: err}
		}})
	}
	if runAggregator {
		tasks = append(tasks, task{"aggregator", func(ctx context.Context) *sourceResult {
			items, err := e.aggregator.Search(ctx, opts.Topic, opts.From, opts.To, opts.Depth)
			return &sourceResult{items: items, err: err}
		}})
	}

	results := make(map[string]*sourceResult, len(tasks))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.cfg.Concurrency.Fanout)

	total := len(tasks)
	completed := 0
	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			r := t.run(ctx)

			mu.Lock()
			results[t.key] = r
			completed++
			// 抓取阶段占进度条 5% -> 60%
			progress(fmt.Sprintf("searched %s", t.key), 5+int(float64(completed)/float64(total)*55))
			mu.Unlock()
		}(t)
	}
	wg.Wait()

	return results
}

// enrichThreads 并发补齐主题帖的真实互动数据，按下标写回避免竞争
func (e *Engine) enrichThreads(ctx context.Context, items []dm.Item) []dm.Item {
	out := make([]dm.Item, len(items))
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.cfg.Concurrency.Enrich)

	for i, item := range items {
		wg.Add(1)
		go func(i int, item dm.Item) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i] = e.threadEnricher.EnrichThread(ctx, item)
		}(i, item)
	}
	wg.Wait()
	return out
}

// maxPageEnrich deep 模式下最多补正文的网页条数
const maxPageEnrich = 10

// enrichPages 对头部网页条目并发抓正文摘录
func (e *Engine) enrichPages(items []dm.Item) []dm.Item {
	n := len(items)
	if n > maxPageEnrich {
		n = maxPageEnrich
	}

	out := make([]dm.Item, len(items))
	copy(out, items)

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.cfg.Concurrency.Enrich)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i] = e.pageEnricher(out[i])
		}(i)
	}
	wg.Wait()
	return out
}

// process 对每个来源列表跑归一化、硬过滤、打分、排序、同源去重，
// 最后做一次跨源 URL 去重并写入报告。
func (e *Engine) process(report *dm.Report, rawLists map[dm.SourceType][]dm.Item, opts RunOptions) {
	trust := map[string]bool{}
	for _, s := range e.cfg.Search.TrustDates {
		trust[s] = true
	}

	lists := make([]dm.SourceList, 0, len(dm.PriorityOrder()))
	for _, source := range dm.PriorityOrder() {
		items := rawLists[source]
		items = normalize.Items(items, source, normalize.Options{
			From:       opts.From,
			To:         opts.To,
			TrustDates: trust[string(source)],
		})
		items = normalize.FilterByDateRange(items, opts.From, opts.To)
		items = score.Apply(items, source, e.cfg.Search.MaxDays)
		score.Sort(items)
		items = dedupe.Items(items, dedupe.DefaultThreshold)
		lists = append(lists, dm.SourceList{Source: source, Items: items})
	}

	for _, sl := range dedupe.CrossSource(lists) {
		report.SetList(sl.Source, sl.Items)
	}
}

// modeLabel 把来源模式转成报告里的人类可读标签
func modeLabel(sources string) string {
	switch sources {
	case "full", "brave":
		return sources
	case "", "auto":
		return "full"
	default:
		return sources + "-only"
	}
}

func inMode(mode string, allowed ...string) bool {
	for _, a := range allowed {
		if mode == a {
			return true
		}
	}
	return false
}
