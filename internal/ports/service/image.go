package service

import (
	"context"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

// IImageFetcher загружает байты картинки по ссылке, пути к файлу или base64
type IImageFetcher interface {
	Fetch(ctx context.Context, src string) ([]byte, error)
}

// IAvatarSource ссылка на аватар пользователя площадки
type IAvatarSource interface {
	AvatarURL(ctx context.Context, userID string) (string, error)
}

// IImageResolver собирает входные картинки сообщения
type IImageResolver interface {
	Resolve(ctx context.Context, msg *domain.Message) [][]byte
}

// IImageGenerator бэкенд генерации картинок
type IImageGenerator interface {
	// Name имя бэкенда для журнала
	Name() string
	SupportsMultiImage() bool
	Generate(ctx context.Context, images [][]byte, prompt string) domain.GenerationResult
}
