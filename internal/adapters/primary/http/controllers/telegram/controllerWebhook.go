package telegram

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Dispatcher ставит обновление в обработку, не дожидаясь результата.
// false - все обработчики заняты.
type Dispatcher interface {
	TryDispatch(ctx context.Context, update *domain.Update) bool
}

type Controller struct {
	TgService Dispatcher
	Secret    string
	Log       *slog.Logger
}

func New(tgService Dispatcher, secret string, log *slog.Logger) *Controller {
	return &Controller{
		TgService: tgService,
		Secret:    secret,
		Log:       log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhook/", c.handleWebhook)
}

func (c *Controller) handleWebhook(ctx *gin.Context) {
	if c.Secret != "" {
		got := ctx.GetHeader(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(c.Secret)) != 1 {
			c.Log.Warn("webhook rejected: bad secret token", "client_ip", ctx.ClientIP())
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "secret token required"})
			return
		}
	}

	var update domain.Update
	if err := ctx.ShouldBindJSON(&update); err != nil {
		c.Log.Error("failed to bind webhook request", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.Log.Debug("received webhook update", "update_id", update.UpdateID)

	// обработка асинхронная, ответ не ждёт генерации
	if !c.TgService.TryDispatch(context.WithoutCancel(ctx.Request.Context()), &update) {
		// Telegram повторит доставку позже
		c.Log.Warn("webhook update rejected: all workers busy", "update_id", update.UpdateID)
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "busy"})
		return
	}

	// Telegram ожидает 200 OK в ответ
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
