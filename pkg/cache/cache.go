// Package cache 提供报告的扁平文件缓存：
// 同一话题、区间、来源组合在 TTL 内直接复用上次结果。
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iWorld-y/topic_radar/pkg/logger"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// Cache 扁平文件缓存，一个键一个 JSON 文件
type Cache struct {
	dir      string
	ttlHours float64
}

// New 创建缓存。dir 为空时落在用户缓存目录下。
func New(dir string, ttlHours float64) *Cache {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		dir = filepath.Join(base, "topic_radar")
	}
	return &Cache{dir: dir, ttlHours: ttlHours}
}

// envelope 缓存文件结构：保存时间 + 报告本体
type envelope struct {
	SavedAt string     `json:"saved_at"`
	Report  *dm.Report `json:"report"`
}

// Key 由话题、区间与来源组合推导确定性缓存键
func Key(topic, from, to, sources string) string {
	sum := sha256.Sum256([]byte(topic + "|" + from + "|" + to + "|" + sources))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Load 读取缓存。未命中、过期或文件损坏都返回 nil；
// 损坏的缓存只当作未命中，绝不让一次损坏拖垮整轮检索。
func (c *Cache) Load(key string) (*dm.Report, float64) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, 0
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Report == nil {
		logger.Log.Debugf("缓存损坏，按未命中处理: %s", key)
		return nil, 0
	}

	savedAt, err := time.Parse(time.RFC3339, env.SavedAt)
	if err != nil {
		return nil, 0
	}

	ageHours := time.Since(savedAt).Hours()
	if c.ttlHours > 0 && ageHours > c.ttlHours {
		return nil, 0
	}

	return env.Report, ageHours
}

// Save 写入缓存，失败只记日志不影响主流程
func (c *Cache) Save(key string, report *dm.Report) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir failed: %w", err)
	}

	env := envelope{
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Report:  report,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache failed: %w", err)
	}

	return os.WriteFile(c.path(key), data, 0o644)
}
