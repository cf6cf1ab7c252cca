package imagegen

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

var (
	markdownImageRe = regexp.MustCompile(`!\[.*?\]\((.*?)\)`)
	bareURLRe       = regexp.MustCompile(`(https?://[^\s)]+)`)
)

// parseImagesResponse разбирает ответ вида {"data":[{"url":...}]}
func parseImagesResponse(body []byte) domain.GenerationResult {
	if !gjson.ValidBytes(body) {
		return domain.Failure("API响应解析失败: " + truncateRunes(string(body), 500) + "...")
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() || len(data.Array()) == 0 {
		if apiErr := gjson.GetBytes(body, "error"); apiErr.Exists() {
			if apiErr.IsObject() {
				if msg := apiErr.Get("message"); msg.Exists() {
					return domain.Failure(msg.String())
				}
				return domain.Failure(apiErr.Raw)
			}
			return domain.Failure(apiErr.String())
		}
		return domain.Failure("API响应中未找到图片数据: " + truncateRunes(string(body), 500) + "...")
	}

	first := data.Array()[0]
	if url := first.Get("url").String(); url != "" {
		return domain.Success(url)
	}
	if b64 := first.Get("b64_json").String(); b64 != "" {
		return domain.Success("data:image/png;base64," + b64)
	}

	return domain.Failure("API响应解析失败: " + truncateRunes(string(body), 500) + "...")
}

// parseChatResponse достаёт ссылку из choices[0].message.content.
// Текст без ссылки возвращается как причина отказа.
func parseChatResponse(body []byte) domain.GenerationResult {
	content := gjson.GetBytes(body, "choices.0.message.content")
	if content.Type != gjson.String {
		return domain.Failure("解析Chat响应失败: " + truncateRunes(string(body), 200))
	}

	text := content.String()
	url := ""
	if m := markdownImageRe.FindStringSubmatch(text); m != nil {
		url = strings.TrimSpace(m[1])
	} else if strings.Contains(text, "http") {
		url = bareURLRe.FindString(text)
	}
	if url == "" && strings.HasPrefix(strings.TrimSpace(text), "http") {
		url = strings.TrimSpace(text)
	}

	if !IsImageURL(url) {
		return domain.Failure(text)
	}
	return domain.Success(url)
}

// IsImageURL http(s) ссылка или data:image URI
func IsImageURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "data:image/")
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
