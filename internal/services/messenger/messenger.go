package messenger

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/imagefetch"
	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/service"
)

const defaultFilename = "figurine.png"

// Messenger выбирает транспорт по площадке и готовит результат генерации к отправке
type Messenger struct {
	senders  map[domain.Platform]service.ISender
	localDir string
	fetcher  service.IImageFetcher
	log      *slog.Logger
}

// New localDir - каталог, где лежат картинки, которые бэкенд отдаёт ссылками на localhost.
// Если он пустой, такие картинки скачиваются через fetcher.
func New(localDir string, fetcher service.IImageFetcher, log *slog.Logger) *Messenger {
	return &Messenger{
		senders:  make(map[domain.Platform]service.ISender),
		localDir: localDir,
		fetcher:  fetcher,
		log:      log,
	}
}

func (m *Messenger) Register(platform domain.Platform, sender service.ISender) {
	m.senders[platform] = sender
}

func (m *Messenger) SendText(ctx context.Context, chat domain.ChatRef, text string) error {
	sender, err := m.sender(chat.Platform)
	if err != nil {
		return err
	}
	return sender.SendText(ctx, chat, text)
}

func (m *Messenger) SendImage(ctx context.Context, chat domain.ChatRef, imageURL, caption string) error {
	sender, err := m.sender(chat.Platform)
	if err != nil {
		return err
	}

	img, err := m.Outbound(ctx, imageURL)
	if err != nil {
		return fmt.Errorf("failed to prepare image: %w", err)
	}
	return sender.SendImage(ctx, chat, img, caption)
}

// Outbound превращает ссылку из ответа бэкенда в картинку для отправки:
// data: декодируется, localhost читается с диска, остальное уходит ссылкой.
func (m *Messenger) Outbound(ctx context.Context, imageURL string) (domain.OutboundImage, error) {
	if strings.HasPrefix(imageURL, "data:") {
		data, err := imagefetch.DecodeDataURI(imageURL)
		if err != nil {
			return domain.OutboundImage{}, fmt.Errorf("failed to decode data uri: %w", err)
		}
		return domain.OutboundImage{Data: data, Filename: dataURIFilename(imageURL)}, nil
	}

	if !isLocalURL(imageURL) {
		return domain.OutboundImage{URL: imageURL}, nil
	}

	name := localName(imageURL)
	if m.localDir != "" {
		data, err := os.ReadFile(filepath.Join(m.localDir, name))
		if err != nil {
			return domain.OutboundImage{}, fmt.Errorf("failed to read local image: %w", err)
		}
		return domain.OutboundImage{Data: data, Filename: name}, nil
	}

	if m.fetcher == nil {
		return domain.OutboundImage{}, fmt.Errorf("local image %s: no image dir configured", name)
	}
	data, err := m.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return domain.OutboundImage{}, fmt.Errorf("failed to download local image: %w", err)
	}
	return domain.OutboundImage{Data: data, Filename: name}, nil
}

func (m *Messenger) sender(platform domain.Platform) (service.ISender, error) {
	sender, ok := m.senders[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownPlatform, platform)
	}
	return sender, nil
}

func isLocalURL(imageURL string) bool {
	return strings.Contains(imageURL, "127.0.0.1") || strings.Contains(imageURL, "localhost")
}

// localName последний сегмент пути без query
func localName(imageURL string) string {
	if u, err := url.Parse(imageURL); err == nil && u.Path != "" {
		if base := path.Base(u.Path); base != "/" && base != "." {
			return base
		}
	}
	parts := strings.Split(imageURL, "/")
	return parts[len(parts)-1]
}

func dataURIFilename(uri string) string {
	meta, _, _ := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	mediaType, _, _ := strings.Cut(meta, ";")
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return defaultFilename
	}
	return "figurine" + exts[0]
}
