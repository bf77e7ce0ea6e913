package enrich

import (
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/topic_radar/pkg/logger"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
)

// 摘要短于该长度才值得抓正文补齐
const minSnippetLen = 100

// 正文摘录的保留长度
const excerptLen = 300

// EnrichPage 对摘要过短的网页抓取正文并抽取摘录。
// 只在 deep 模式下对头部条目调用，失败原样返回。
func EnrichPage(item dm.Item) dm.Item {
	if len(item.Snippet) >= minSnippetLen {
		return item
	}

	article, err := readability.FromURL(item.URL, 30*time.Second)
	if err != nil {
		logger.Log.Debugf("网页正文抽取失败 [%s]: %v", item.URL, err)
		return item
	}

	text := strings.TrimSpace(article.TextContent)
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return item
	}

	if runes := []rune(text); len(runes) > excerptLen {
		text = string(runes[:excerptLen])
	}
	item.Snippet = text
	return item
}
