// topic_radar 聚合七个来源，调研最近一段时间内某话题的讨论动态。
//
// 用法:
//
//	topic_radar <topic> [选项]
//
// 选项:
//
//	-emit=MODE     输出形态: compact|json|md|context|path (默认 compact)
//	-sources=MODE  来源选择: auto|all|reddit|x|news|web (默认 auto)
//	-quick         快速模式，抓取量更小
//	-deep          深度模式，抓取量更大并补全网页正文
//	-refresh       忽略缓存，强制重新抓取
//	-conf          配置文件路径
//	-debug         输出调试日志
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iWorld-y/topic_radar/pkg/brave"
	"github.com/iWorld-y/topic_radar/pkg/cache"
	"github.com/iWorld-y/topic_radar/pkg/config"
	"github.com/iWorld-y/topic_radar/pkg/dates"
	"github.com/iWorld-y/topic_radar/pkg/engine"
	"github.com/iWorld-y/topic_radar/pkg/enrich"
	"github.com/iWorld-y/topic_radar/pkg/hn"
	"github.com/iWorld-y/topic_radar/pkg/logger"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
	"github.com/iWorld-y/topic_radar/pkg/render"
	"github.com/iWorld-y/topic_radar/pkg/storage"
	"github.com/iWorld-y/topic_radar/pkg/xpost"
)

func main() {
	var (
		flagEmit    = flag.String("emit", "compact", "输出形态: compact|json|md|context|path")
		flagSources = flag.String("sources", "auto", "来源选择: auto|all|reddit|x|news|web")
		flagQuick   = flag.Bool("quick", false, "快速模式")
		flagDeep    = flag.Bool("deep", false, "深度模式")
		flagRefresh = flag.Bool("refresh", false, "忽略缓存，强制重新抓取")
		flagConf    = flag.String("conf", "", "配置文件路径")
		flagDebug   = flag.Bool("debug", false, "输出调试日志")
	)
	flag.Parse()

	if *flagQuick && *flagDeep {
		fmt.Fprintln(os.Stderr, "错误: -quick 与 -deep 不能同时使用")
		os.Exit(1)
	}
	depth := "default"
	if *flagQuick {
		depth = "quick"
	} else if *flagDeep {
		depth = "deep"
	}

	topic := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if topic == "" {
		fmt.Fprintln(os.Stderr, "错误: 请提供要调研的话题")
		fmt.Fprintln(os.Stderr, "用法: topic_radar <topic> [选项]")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*flagConf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Log.Level
	if *flagDebug {
		level = "debug"
	}
	if err := logger.InitLogger(level, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	sources, warning := cfg.ResolveSources(*flagSources)
	if warning != "" {
		fmt.Fprintf(os.Stderr, "提示: %s\n", warning)
	}

	from, to := dates.Range(cfg.Search.MaxDays)

	c := cache.New(cfg.Cache.Dir, cfg.Cache.TTLHours)
	cacheKey := cache.Key(topic, from, to, sources)
	if !*flagRefresh {
		if cached, age := c.Load(cacheKey); cached != nil {
			cached.FromCache = true
			cached.CacheAgeHours = age
			logger.Log.Infof("命中缓存 (%.1f 小时前)，话题 [%s]", age, topic)
			emit(cached, *flagEmit)
			return
		}
	}

	ctx := context.Background()
	report, err := runResearch(ctx, cfg, topic, from, to, depth, sources)
	if err != nil {
		fmt.Fprintf(os.Stderr, "研究失败: %v\n", err)
		os.Exit(1)
	}

	report.ContextSnippet = render.ContextSnippet(report)

	if dir, derr := render.OutputDir(); derr == nil {
		if werr := render.WriteOutputs(dir, report); werr != nil {
			logger.Log.Warnf("写入产物失败: %v", werr)
		}
	}

	if err := c.Save(cacheKey, report); err != nil {
		logger.Log.Warnf("写入缓存失败: %v", err)
	}

	// 配置了数据库就顺带留档，供 radar_server 回看
	if cfg.DB.Host != "" {
		if store, serr := storage.NewStorage(cfg.DB); serr != nil {
			logger.Log.Warnf("连接数据库失败: %v", serr)
		} else {
			if id, serr := store.SaveReport(report); serr != nil {
				logger.Log.Warnf("保存报告失败: %v", serr)
			} else {
				logger.Log.Infof("报告已入库，运行 ID %d", id)
			}
			store.Close()
		}
	}

	emit(report, *flagEmit)
}

// runResearch 按可用密钥装配引擎并执行一次研究
func runResearch(ctx context.Context, cfg *config.Config, topic, from, to, depth, sources string) (*dm.Report, error) {
	opts := []engine.Option{
		engine.WithAggregator(hn.NewClient()),
	}

	if cfg.Brave.APIKey != "" {
		client := brave.NewClient(cfg.Brave.APIKey, cfg.Brave.SearchLang, cfg.Brave.Country, cfg.Concurrency.QPS)
		opts = append(opts,
			engine.WithBrave(client),
			engine.WithThreadEnricher(enrich.NewRedditEnricher()),
			engine.WithPageEnricher(enrich.EnrichPage),
		)
	}

	if cfg.LLM.APIKey != "" {
		posts, err := xpost.NewClient(ctx, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("初始化 X 搜索客户端失败: %w", err)
		}
		opts = append(opts, engine.WithPosts(posts))
	}

	eng := engine.NewEngine(cfg, opts...)
	return eng.Run(ctx, engine.RunOptions{
		Topic:   topic,
		From:    from,
		To:      to,
		Depth:   depth,
		Sources: sources,
		Progress: func(status string, progress int) {
			logger.Log.Infof("[%3d%%] %s", progress, status)
		},
	})
}

// emit 按指定形态把报告写到标准输出
func emit(report *dm.Report, mode string) {
	switch mode {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "序列化报告失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	case "md":
		fmt.Print(render.Markdown(report))
	case "context":
		fmt.Print(report.ContextSnippet)
	case "path":
		if dir, err := render.OutputDir(); err == nil {
			fmt.Println(filepath.Join(dir, "topic_radar.context.md"))
		}
	default:
		fmt.Print(render.Compact(report, render.DefaultLimit))
	}
}
