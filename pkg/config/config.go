// Package config 加载项目配置：YAML 文件为基础，.env 与环境变量覆盖密钥。
package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	Brave       BraveConfig       `yaml:"brave"`
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Cache       CacheConfig       `yaml:"cache"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	DB          DBConfig          `yaml:"db"`
	Server      ServerConfig      `yaml:"server"`
}

// BraveConfig Brave Search API 配置
type BraveConfig struct {
	APIKey     string `yaml:"api_key"`
	SearchLang string `yaml:"search_lang"`
	Country    string `yaml:"country"`
}

// LLMConfig 大模型搜索（X 帖子来源）配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// SearchConfig 检索相关配置
type SearchConfig struct {
	// Sources 请求的来源模式: auto / all / reddit / x / news / web
	Sources string `yaml:"sources"`
	// Depth 检索深度: quick / default / deep
	Depth string `yaml:"depth"`
	// TrustDates 信任提供方日期过滤的来源列表（低置信日期提升为高）
	TrustDates []string `yaml:"trust_dates"`
	// MaxDays 回溯窗口天数
	MaxDays int `yaml:"max_days"`
}

// CacheConfig 结果缓存配置
type CacheConfig struct {
	TTLHours float64 `yaml:"ttl_hours"`
	Dir      string  `yaml:"dir"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	// Fanout 顶层来源抓取并发上限
	Fanout int `yaml:"fanout"`
	// Enrich 条目级增强（帖子详情、正文抽取）并发上限
	Enrich int `yaml:"enrich"`
	// QPS Brave API 每秒请求上限
	QPS int `yaml:"qps"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// ServerConfig 报告查询服务配置
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoadConfig 从指定路径加载配置。
// .env 文件与环境变量中的密钥覆盖 YAML 中的同名项，便于密钥不落盘。
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	// .env 存在则加载，不存在不报错
	_ = godotenv.Load()

	if v := os.Getenv("BRAVE_API_KEY"); v != "" {
		cfg.Brave.APIKey = v
	}
	if v := os.Getenv("XAI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("XAI_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("XAI_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.x.ai/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "grok-4-fast"
	}
	if c.Search.Sources == "" {
		c.Search.Sources = "auto"
	}
	if c.Search.Depth == "" {
		c.Search.Depth = "default"
	}
	if c.Search.TrustDates == nil {
		// X 帖子日期来自模型抽取，无法从 URL 二次核实
		c.Search.TrustDates = []string{"posts"}
	}
	if c.Search.MaxDays <= 0 {
		c.Search.MaxDays = 30
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24
	}
	if c.Concurrency.Fanout <= 0 {
		c.Concurrency.Fanout = 6
	}
	if c.Concurrency.Enrich <= 0 {
		c.Concurrency.Enrich = 5
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
}

// Availability 按已配置的密钥判定可用来源集合。
// HN 聚合站免费无须鉴权，永远可用。
type Availability string

const (
	AvailFull  Availability = "full"  // Brave 全家桶 + X + HN
	AvailBrave Availability = "brave" // Brave 全家桶 + HN，无 X
	AvailX     Availability = "x"     // 仅 X + HN
	AvailHN    Availability = "hn"    // 仅 HN
)

// AvailableSources 根据密钥推断可用来源
func (c *Config) AvailableSources() Availability {
	hasBrave := c.Brave.APIKey != ""
	hasX := c.LLM.APIKey != ""
	switch {
	case hasBrave && hasX:
		return AvailFull
	case hasBrave:
		return AvailBrave
	case hasX:
		return AvailX
	}
	return AvailHN
}

// ResolveSources 把请求的来源模式落实到可用集合上。
// 请求无法满足时降级并返回提示信息；auto 直接取可用集合。
func (c *Config) ResolveSources(requested string) (string, string) {
	avail := c.AvailableSources()

	switch requested {
	case "", "auto":
		return string(avail), ""
	case "all":
		switch avail {
		case AvailFull:
			return "full", ""
		case AvailBrave:
			return "brave", "XAI_API_KEY 未配置，跳过 X 来源"
		case AvailX:
			return "x", "BRAVE_API_KEY 未配置，仅检索 X 与 HN"
		}
		return "hn", "未配置任何 API 密钥，仅检索 HN"
	case "reddit":
		if avail == AvailFull || avail == AvailBrave {
			return "reddit", ""
		}
		return "hn", "Reddit 检索需要 BRAVE_API_KEY"
	case "x":
		if avail == AvailFull || avail == AvailX {
			return "x", ""
		}
		return "hn", "X 检索需要 XAI_API_KEY"
	case "news":
		if avail == AvailFull || avail == AvailBrave {
			return "news", ""
		}
		return "hn", "新闻检索需要 BRAVE_API_KEY"
	case "web":
		if avail == AvailFull || avail == AvailBrave {
			return "web", ""
		}
		return "hn", "网页检索需要 BRAVE_API_KEY"
	}
	return "hn", "未知的来源模式: " + requested
}
