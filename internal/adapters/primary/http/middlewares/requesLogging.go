package middlewares

import (
	"log/slog"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger пишет итог каждого запроса, пути из skip (пробы healthcheck) не логируются
func RequestLogger(log *slog.Logger, skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(skip, c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		req := c.Request

		c.Next()

		status := c.Writer.Status()

		// уровень по статусу ответа
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("response_size", c.Writer.Size()),
			slog.String("remote_addr", req.RemoteAddr),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}
		log.LogAttrs(req.Context(), level, "request completed", attrs...)
	}
}
