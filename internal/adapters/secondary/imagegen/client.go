package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

// KeySource выдаёт ключ API на каждый запрос
type KeySource interface {
	Acquire() (string, bool)
}

// Client вызывает выбранный бэкенд генерации
type Client struct {
	apiURL     string
	backend    backend
	configErr  string
	keys       KeySource
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient выбирает бэкенд по конфигу. Ошибки конфигурации не фатальны:
// каждая генерация вернёт их как причину отказа.
func NewClient(cfg Config, keys KeySource, log *slog.Logger) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	c := &Client{
		keys: keys,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		log: log,
	}
	c.apiURL, c.backend, c.configErr = selectBackend(cfg)

	if c.configErr != "" {
		log.Warn("image backend misconfigured", "api_type", cfg.APIType, "reason", c.configErr)
	} else {
		log.Info("image backend selected", "backend", c.backend.name(), "url", c.apiURL)
	}

	return c, nil
}

func selectBackend(cfg Config) (string, backend, string) {
	var apiURL, model string
	switch cfg.APIType {
	case APITypeVolcengine:
		apiURL = firstNonEmpty(cfg.VolcengineAPIURL, cfg.APIURL)
		model = firstNonEmpty(cfg.VolcengineModel, cfg.Model)
	case APITypeOpenAI:
		apiURL = cfg.OpenAIAPIURL
		model = cfg.OpenAIModel
	default:
		return "", nil, fmt.Sprintf("未知的 API 类型: %s", cfg.APIType)
	}

	if apiURL == "" {
		return "", nil, fmt.Sprintf("API URL 未配置 (%s)", cfg.APIType)
	}
	if model == "" {
		return "", nil, fmt.Sprintf("模型名称未配置 (%s)", cfg.APIType)
	}

	if cfg.APIType == APITypeVolcengine {
		return apiURL, &volcengine{
			model:      model,
			size:       firstNonEmpty(cfg.ImageSize, "2K"),
			sequential: firstNonEmpty(cfg.SequentialImageGeneration, "disabled"),
			watermark:  cfg.Watermark,
		}, ""
	}
	if strings.Contains(apiURL, "chat/completions") {
		return apiURL, &openAIChat{model: model}, ""
	}
	return apiURL, &openAIImages{model: model, size: firstNonEmpty(cfg.ImageSize, "1024x1024")}, ""
}

func (c *Client) Name() string {
	if c.backend == nil {
		return "unconfigured"
	}
	return c.backend.name()
}

func (c *Client) SupportsMultiImage() bool {
	return c.backend != nil && c.backend.multiImage()
}

// Generate один запрос к бэкенду. Любая ошибка превращается в Failure с текстом для пользователя.
func (c *Client) Generate(ctx context.Context, images [][]byte, prompt string) domain.GenerationResult {
	if c.configErr != "" {
		return domain.Failure(c.configErr)
	}

	key, ok := c.keys.Acquire()
	if !ok {
		return domain.Failure("无可用的 API Key")
	}

	if len(images) > 1 && !c.backend.multiImage() {
		c.log.Info("backend takes a single image, using the first", "backend", c.backend.name(), "images", len(images))
	}

	body, err := json.Marshal(c.backend.payload(images, prompt))
	if err != nil {
		c.log.Error("failed to encode request", "error", err)
		return domain.Failure("图片编码失败")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return domain.Failure(fmt.Sprintf("发生未知错误: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	c.log.Info("sending generation request",
		"backend", c.backend.name(),
		"images", len(images),
		"prompt_len", len([]rune(prompt)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.log.Error("generation request timed out", "backend", c.backend.name())
			return domain.Failure("请求超时")
		}
		c.log.Error("generation request failed", "backend", c.backend.name(), "error", err)
		return domain.Failure(fmt.Sprintf("发生未知错误: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return domain.Failure("请求超时")
		}
		return domain.Failure(fmt.Sprintf("发生未知错误: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error("generation api returned error",
			"status", resp.StatusCode,
			"body", truncateRunes(string(respBody), 500))
		return domain.Failure(fmt.Sprintf("API请求失败 (HTTP %d): %s", resp.StatusCode, truncateRunes(string(respBody), 200)))
	}

	result := c.backend.parse(respBody)
	if !result.OK() {
		c.log.Warn("generation api returned no image", "reason", truncateRunes(result.Reason, 200))
	}
	return result
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
