package dates

import (
	"strconv"
	"strings"
	"time"

	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// DefaultMaxDays 默认检索窗口天数
const DefaultMaxDays = 30

// Range 返回最近 days 天的检索区间（UTC，YYYY-MM-DD）
func Range(days int) (from, to string) {
	today := time.Now().UTC()
	return today.AddDate(0, 0, -days).Format(time.DateOnly), today.Format(time.DateOnly)
}

// isoLayouts 各来源返回日期的常见格式
var isoLayouts = []string{
	time.DateOnly,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
}

// Parse 尽力解析日期字符串，支持 Unix 时间戳与常见 ISO 格式
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// 部分来源给的是 Unix 时间戳
	if ts, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(ts), 0).UTC(), true
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// ToDate 将解析结果截断为 YYYY-MM-DD；解析失败返回空串
func ToDate(s string) string {
	t, ok := Parse(s)
	if !ok {
		return ""
	}
	return t.Format(time.DateOnly)
}

// TimestampToDate Unix 时间戳转 YYYY-MM-DD
func TimestampToDate(ts int64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(time.DateOnly)
}

// Confidence 判定日期可信度：
// 缺失或无法解析为 low；落在 [from, to] 内为 high；
// 早于区间或晚于区间（未来日期，可疑）一律 low。
func Confidence(date, from, to string) dm.DateConfidence {
	if date == "" {
		return dm.ConfidenceLow
	}

	d, err1 := time.Parse(time.DateOnly, date)
	start, err2 := time.Parse(time.DateOnly, from)
	end, err3 := time.Parse(time.DateOnly, to)
	if err1 != nil || err2 != nil || err3 != nil {
		return dm.ConfidenceLow
	}

	if !d.Before(start) && !d.After(end) {
		return dm.ConfidenceHigh
	}
	return dm.ConfidenceLow
}

// DaysAgo 计算日期距今的整天数；日期缺失或非法时 ok 为 false
func DaysAgo(date string) (int, bool) {
	if date == "" {
		return 0, false
	}
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return 0, false
	}
	today, _ := time.Parse(time.DateOnly, time.Now().UTC().Format(time.DateOnly))
	return int(today.Sub(d).Hours() / 24), true
}

// RecencyScore 计算 0-100 的新鲜度得分，前重衰减。
// 未知日期得 0；未来日期视同今天得 100；超出窗口得 0。
func RecencyScore(date string, maxDays int) int {
	age, ok := DaysAgo(date)
	if !ok {
		return 0
	}
	return ScoreForAge(age, maxDays)
}

// ScoreForAge 分层衰减曲线。曲线刻意前重：当天/昨天的内容
// 必须压过一周前的内容，哪怕后者原始参与度更高。
//   - 0-1 天：100-98（最高档）
//   - 2-3 天：96-92
//   - 4-7 天：90-76
//   - 8-14 天：74-50
//   - 15-29 天：49 线性衰减到 10 附近
func ScoreForAge(age, maxDays int) int {
	if age < 0 {
		return 100 // 未来日期按今天处理
	}
	if age >= maxDays {
		return 0
	}

	switch {
	case age <= 1:
		return 100 - age*2
	case age <= 3:
		return 96 - (age-2)*2
	case age <= 7:
		return int(90 - 3.5*float64(age-4))
	case age <= 14:
		return int(74 - 3.4*float64(age-8))
	default:
		remaining := float64(maxDays - 15)
		return int(49 - float64(age-15)*(39/remaining))
	}
}
