package imagefetch

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/admin/tg-bots/figurine-bot/internal/ports/cache"
)

const cacheKeyPrefix = "figurine:image:"

// Client загружает картинки из файлов, по http(s) и из base64/data URI
type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      cache.Cache
	log        *slog.Logger
}

// NewClient создаёт загрузчик. cache может быть nil.
func NewClient(cfg Config, c cache.Cache, log *slog.Logger) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
		log.Info("image fetcher uses proxy", "proxy", proxy.Host)
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		cache: c,
		log:   log,
	}, nil
}

func (c *Client) Fetch(ctx context.Context, src string) ([]byte, error) {
	switch {
	case isLocalFile(src):
		return os.ReadFile(src)
	case strings.HasPrefix(src, "http"):
		return c.download(ctx, src)
	case strings.HasPrefix(src, "base64://"):
		return base64.StdEncoding.DecodeString(src[len("base64://"):])
	case strings.HasPrefix(src, "data:"):
		return DecodeDataURI(src)
	default:
		return nil, fmt.Errorf("unsupported image source")
	}
}

func (c *Client) download(ctx context.Context, src string) ([]byte, error) {
	key := cacheKey(src)
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key); err == nil {
			if data, err := base64.StdEncoding.DecodeString(cached); err == nil {
				c.log.Debug("image served from cache", "url", shortURL(src))
				return data, nil
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.Warn("image cache read failed", "error", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.log.Info("downloading image", "url", shortURL(src))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error печатает полный адрес вместе с токеном
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("failed to download image from %s: %w", shortURL(src), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed: HTTP %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if c.cfg.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, c.cfg.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if c.cfg.MaxBytes > 0 && int64(len(data)) > c.cfg.MaxBytes {
		return nil, fmt.Errorf("image is larger than %d bytes", c.cfg.MaxBytes)
	}

	if c.cache != nil && c.cfg.CacheTTL > 0 {
		if err := c.cache.Set(ctx, key, base64.StdEncoding.EncodeToString(data), c.cfg.CacheTTL); err != nil {
			c.log.Warn("image cache write failed", "error", err)
		}
	}

	return data, nil
}

// DecodeDataURI байты из data:<mime>;base64,<payload>
func DecodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("data uri is not base64")
	}
	return base64.StdEncoding.DecodeString(payload)
}

func isLocalFile(src string) bool {
	if strings.Contains(src, "://") {
		return false
	}
	info, err := os.Stat(src)
	return err == nil && info.Mode().IsRegular()
}

func cacheKey(src string) string {
	sum := sha256.Sum256([]byte(src))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// shortURL схема и хост без пути: в пути файлов Telegram лежит токен бота
func shortURL(src string) string {
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return "invalid url"
	}
	return u.Scheme + "://" + u.Host + "/..."
}
