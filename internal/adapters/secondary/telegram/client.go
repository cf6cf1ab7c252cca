package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

const apiTimeout = 60 * time.Second

// Client клиент для работы с Telegram Bot API
type Client struct {
	httpClient *http.Client
	apiBase    string
	token      string
	log        *slog.Logger
}

// NewClient создаёт клиент. apiBase пустой - официальный api.telegram.org.
func NewClient(token, apiBase string, log *slog.Logger) *Client {
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: apiTimeout,
		},
		apiBase: strings.TrimRight(apiBase, "/"),
		token:   token,
		log:     log,
	}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
}

// FileURL ссылка для скачивания файла по file_path из getFile
func (c *Client) FileURL(filePath string) string {
	return fmt.Sprintf("%s/file/bot%s/%s", c.apiBase, c.token, filePath)
}

// ReplyParameters ответ на конкретное сообщение
type ReplyParameters struct {
	MessageID                int64 `json:"message_id"`
	AllowSendingWithoutReply bool  `json:"allow_sending_without_reply"`
}

// SendMessageRequest запрос на отправку сообщения
type SendMessageRequest struct {
	ChatID          int64            `json:"chat_id"`
	MessageThreadID *int64           `json:"message_thread_id,omitempty"`
	Text            string           `json:"text"`
	ParseMode       string           `json:"parse_mode,omitempty"`
	ReplyParameters *ReplyParameters `json:"reply_parameters,omitempty"`
}

// SentMessage результат отправки
type SentMessage struct {
	MessageID int64 `json:"message_id"`
	Date      int64 `json:"date"`
}

// SendMessage отправляет текстовое сообщение и возвращает его id
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (int64, error) {
	var sent SentMessage
	if err := c.call(ctx, "sendMessage", req, &sent); err != nil {
		c.log.Error("failed to send message", "error", err, "chat_id", req.ChatID)
		return 0, err
	}
	c.log.Debug("message sent", "chat_id", req.ChatID, "message_id", sent.MessageID)
	return sent.MessageID, nil
}

// GetMe информация о самом боте
func (c *Client) GetMe(ctx context.Context) (*domain.TelegramUser, error) {
	var me domain.TelegramUser
	if err := c.call(ctx, "getMe", struct{}{}, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// BotCommand представляет команду бота
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// SetMyCommands регистрирует команды бота в меню
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	req := struct {
		Commands []BotCommand `json:"commands"`
	}{Commands: commands}

	if err := c.call(ctx, "setMyCommands", req, nil); err != nil {
		return err
	}
	c.log.Info("bot commands registered", "commands_count", len(commands))
	return nil
}

// SetWebhook включает доставку обновлений на url, secret приходит в X-Telegram-Bot-Api-Secret-Token
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	req := struct {
		URL            string   `json:"url"`
		SecretToken    string   `json:"secret_token,omitempty"`
		AllowedUpdates []string `json:"allowed_updates"`
	}{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: []string{"message"},
	}
	if err := c.call(ctx, "setWebhook", req, nil); err != nil {
		return err
	}
	c.log.Info("webhook set", "url", url)
	return nil
}

// DeleteWebhook нужно вызвать перед запуском polling
func (c *Client) DeleteWebhook(ctx context.Context) error {
	req := struct {
		DropPendingUpdates bool `json:"drop_pending_updates"`
	}{DropPendingUpdates: false}
	if err := c.call(ctx, "deleteWebhook", req, nil); err != nil {
		return err
	}
	c.log.Info("webhook deleted")
	return nil
}

// GetFile путь к файлу для скачивания
func (c *Client) GetFile(ctx context.Context, fileID string) (*domain.TelegramFile, error) {
	var file domain.TelegramFile
	req := struct {
		FileID string `json:"file_id"`
	}{FileID: fileID}
	if err := c.call(ctx, "getFile", req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetUserProfilePhotos фото профиля пользователя
func (c *Client) GetUserProfilePhotos(ctx context.Context, userID int64, limit int) (*domain.UserProfilePhotos, error) {
	var photos domain.UserProfilePhotos
	req := struct {
		UserID int64 `json:"user_id"`
		Limit  int   `json:"limit"`
	}{UserID: userID, Limit: limit}
	if err := c.call(ctx, "getUserProfilePhotos", req, &photos); err != nil {
		return nil, err
	}
	return &photos, nil
}
