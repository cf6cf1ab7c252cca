package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

// UpdateHandler обработчик одного обновления. Не должен блокировать надолго.
type UpdateHandler func(ctx context.Context, update *domain.Update)

// Poller реализует long polling для получения обновлений от Telegram
type Poller struct {
	client       *Client
	timeout      int
	handler      UpdateHandler
	lastUpdateID int64
	retryDelay   time.Duration
	log          *slog.Logger
}

func NewPoller(client *Client, pollingTimeout int, handler UpdateHandler, log *slog.Logger) *Poller {
	if pollingTimeout <= 0 {
		pollingTimeout = 30
	}

	// отдельный клиент: HTTP-таймаут должен быть больше таймаута long polling
	pollClient := *client
	pollClient.httpClient = &http.Client{
		Timeout: time.Duration(pollingTimeout+10) * time.Second,
	}

	return &Poller{
		client:     &pollClient,
		timeout:    pollingTimeout,
		handler:    handler,
		retryDelay: 5 * time.Second,
		log:        log,
	}
}

// Start крутит getUpdates до отмены контекста
func (p *Poller) Start(ctx context.Context) error {
	p.log.Info("starting telegram polling", "timeout", p.timeout)

	for {
		if ctx.Err() != nil {
			p.log.Info("polling stopped")
			return nil
		}

		updates, err := p.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.log.Info("polling stopped")
				return nil
			}
			p.log.Error("failed to get updates", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(p.retryDelay):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= p.lastUpdateID {
				p.lastUpdateID = update.UpdateID + 1
			}
			p.handler(ctx, update)
		}
	}
}

func (p *Poller) getUpdates(ctx context.Context) ([]*domain.Update, error) {
	req := struct {
		Offset         int64    `json:"offset"`
		Timeout        int      `json:"timeout"`
		AllowedUpdates []string `json:"allowed_updates"`
	}{
		Offset:         p.lastUpdateID,
		Timeout:        p.timeout,
		AllowedUpdates: []string{"message"},
	}

	var updates []*domain.Update
	err := p.client.call(ctx, "getUpdates", req, &updates)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
		// другой экземпляр бота или активный webhook, пробуем снова на следующей итерации
		p.log.Warn("telegram API conflict - another bot instance or webhook is active",
			"description", apiErr.Description)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return updates, nil
}
