package imageresolver

import (
	"context"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/service"
)

// Resolver собирает входные картинки сообщения в порядке приоритета:
// картинки из цитаты; если их нет - картинки самого сообщения; если и их нет -
// аватары упомянутых пользователей; в последнюю очередь аватар отправителя.
const maxParallelFetches = 4

type Resolver struct {
	fetcher service.IImageFetcher
	avatars map[domain.Platform]service.IAvatarSource
	log     *slog.Logger
}

func New(fetcher service.IImageFetcher, log *slog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		avatars: make(map[domain.Platform]service.IAvatarSource),
		log:     log,
	}
}

// SetAvatarSource регистрирует источник аватаров площадки
func (r *Resolver) SetAvatarSource(platform domain.Platform, src service.IAvatarSource) {
	r.avatars[platform] = src
}

func (r *Resolver) Resolve(ctx context.Context, msg *domain.Message) [][]byte {
	var images [][]byte

	for _, seg := range msg.Segments {
		if seg.Type != domain.SegmentQuote {
			continue
		}
		for _, quoted := range seg.Quoted {
			if quoted.Type == domain.SegmentImage {
				if img := r.loadSegment(ctx, quoted); img != nil {
					images = append(images, img)
				}
			}
		}
	}
	if len(images) > 0 {
		return images
	}

	var mentioned []string
	for _, seg := range msg.Segments {
		switch seg.Type {
		case domain.SegmentImage:
			if img := r.loadSegment(ctx, seg); img != nil {
				images = append(images, img)
			}
		case domain.SegmentMention:
			mentioned = append(mentioned, seg.UserID)
		}
	}

	if len(images) > 0 {
		return images
	}

	if len(mentioned) > 0 {
		return r.mentionAvatars(ctx, msg.Platform, mentioned)
	}

	if img := r.avatar(ctx, msg.Platform, msg.SenderID); img != nil {
		images = append(images, img)
	}
	return images
}

// loadSegment пробует URL, затем файл
func (r *Resolver) loadSegment(ctx context.Context, seg domain.Segment) []byte {
	if seg.ImageURL != "" {
		if img := r.load(ctx, seg.ImageURL); img != nil {
			return img
		}
	}
	if seg.ImageFile != "" {
		return r.load(ctx, seg.ImageFile)
	}
	return nil
}

func (r *Resolver) load(ctx context.Context, src string) []byte {
	raw, err := r.fetcher.Fetch(ctx, src)
	if err != nil {
		r.log.Warn("failed to load image", "src", RedactSource(src), "error", err)
		return nil
	}
	if len(raw) == 0 {
		return nil
	}

	out, converted, err := FirstFrame(raw)
	if err != nil {
		r.log.Warn("failed to inspect image frames, using raw bytes", "error", err)
		return raw
	}
	if converted {
		r.log.Info("animated image detected, using first frame")
	}
	return out
}

// mentionAvatars грузит аватары параллельно, порядок упоминаний сохраняется
func (r *Resolver) mentionAvatars(ctx context.Context, platform domain.Platform, userIDs []string) [][]byte {
	loaded := make([][]byte, len(userIDs))

	g := &errgroup.Group{}
	g.SetLimit(maxParallelFetches)
	for i, userID := range userIDs {
		i, userID := i, userID
		g.Go(func() error {
			loaded[i] = r.avatar(ctx, platform, userID)
			return nil
		})
	}
	_ = g.Wait()

	images := make([][]byte, 0, len(loaded))
	for _, img := range loaded {
		if img != nil {
			images = append(images, img)
		}
	}
	return images
}

func (r *Resolver) avatar(ctx context.Context, platform domain.Platform, userID string) []byte {
	src, ok := r.avatars[platform]
	if !ok {
		r.log.Debug("no avatar source for platform", "platform", platform)
		return nil
	}
	avatarURL, err := src.AvatarURL(ctx, userID)
	if err != nil {
		r.log.Warn("failed to get avatar url", "platform", platform, "user_id", userID, "error", err)
		return nil
	}
	return r.load(ctx, avatarURL)
}

// RedactSource оставляет от ссылки схему и хост: в пути файлов Telegram лежит токен бота
func RedactSource(src string) string {
	switch {
	case strings.HasPrefix(src, "base64://"), strings.HasPrefix(src, "data:"):
		return "inline image"
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		u, err := url.Parse(src)
		if err != nil {
			return "invalid url"
		}
		return u.Scheme + "://" + u.Host + "/..."
	}
	return filepath.Base(src)
}
