package admin

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/admin/tg-bots/figurine-bot/internal/adapters/primary/http/middlewares"
	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/repository"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/storage"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
	presignExpires   = 15 * time.Minute
)

// QuotaService остатки и начисления генераций
type QuotaService interface {
	QuotaOf(scope domain.QuotaScope, id string) (int, error)
	Grant(scope domain.QuotaScope, id string, amount int) (int, error)
}

type Controller struct {
	Quota      QuotaService
	Journal    repository.IGenerationRepo
	Archive    storage.IS3Client
	AdminToken string
	Log        *slog.Logger
}

// New journal и archive могут быть nil, тогда /admin/generations отвечает 404
func New(
	quota QuotaService,
	journal repository.IGenerationRepo,
	archive storage.IS3Client,
	adminToken string,
	log *slog.Logger,
) *Controller {
	return &Controller{
		Quota:      quota,
		Journal:    journal,
		Archive:    archive,
		AdminToken: adminToken,
		Log:        log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	admin := router.Group("/admin", middlewares.AdminToken(c.AdminToken, c.Log))
	{
		admin.GET("/quota/:scope/:id", c.getQuota)
		admin.POST("/quota/grant", c.grant)
		admin.GET("/generations", c.listGenerations)
	}
}

// QuotaResponse остаток пользователя или группы
type QuotaResponse struct {
	Scope     domain.QuotaScope `json:"scope"`
	ID        string            `json:"id"`
	Remaining int               `json:"remaining"`
}

// GrantRequest запрос на начисление генераций
type GrantRequest struct {
	Scope  domain.QuotaScope `json:"scope" binding:"required"`
	ID     string            `json:"id" binding:"required"`
	Amount int               `json:"amount" binding:"required"`
}

// GenerationView запись журнала со ссылкой на архив
type GenerationView struct {
	*domain.Generation
	ArchiveURL string `json:"archive_url,omitempty"`
}

func (c *Controller) getQuota(ctx *gin.Context) {
	scope := domain.QuotaScope(ctx.Param("scope"))
	id := ctx.Param("id")

	remaining, err := c.Quota.QuotaOf(scope, id)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, QuotaResponse{Scope: scope, ID: id, Remaining: remaining})
}

func (c *Controller) grant(ctx *gin.Context) {
	var req GrantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.Log.Warn("failed to bind grant request", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	remaining, err := c.Quota.Grant(req.Scope, req.ID, req.Amount)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, QuotaResponse{Scope: req.Scope, ID: req.ID, Remaining: remaining})
}

// listGenerations последние генерации, ?limit= от 1 до 200
func (c *Controller) listGenerations(ctx *gin.Context) {
	if c.Journal == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "generation journal is disabled"})
		return
	}

	limit := defaultListLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	generations, err := c.Journal.ListRecent(ctx.Request.Context(), limit)
	if err != nil {
		c.Log.Error("failed to list generations", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list generations"})
		return
	}

	views := make([]GenerationView, 0, len(generations))
	for _, g := range generations {
		view := GenerationView{Generation: g}
		if c.Archive != nil && g.ArchiveKey != nil {
			url, err := c.Archive.GetPresignedURL(ctx.Request.Context(), *g.ArchiveKey, presignExpires)
			if err != nil {
				c.Log.Warn("failed to presign archive url", "error", err, "generation_id", g.ID)
			} else {
				view.ArchiveURL = url
			}
		}
		views = append(views, view)
	}

	ctx.JSON(http.StatusOK, gin.H{"generations": views})
}

func (c *Controller) writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidScope), errors.Is(err, domain.ErrInvalidAmount):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.Log.Error("admin quota operation failed", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
