package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

func (a *App) runServices(ctx context.Context, deps *Dependencies) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("starting http server",
			"host", a.Cfg.Server.Host,
			"port", a.Cfg.Server.Port)

		err := deps.HTTPServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	// Telegram: либо webhook через HTTP сервер, либо polling
	if deps.TelegramPoller != nil {
		g.Go(func() error {
			return deps.TelegramPoller.Start(gCtx)
		})
	} else if deps.TelegramService != nil {
		a.Log.Info("telegram updates mode: webhook", "webhook_url", a.Cfg.Telegram.WebhookURL)
	}

	if deps.OneBotService != nil {
		g.Go(func() error {
			return deps.OneBotService.Run(gCtx)
		})
	}

	if deps.JobScheduler != nil && deps.JobScheduler.Len() > 0 {
		g.Go(func() error {
			a.Log.Info("starting job scheduler", "jobs", deps.JobScheduler.Len())
			return deps.JobScheduler.Run(gCtx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.Log.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := deps.HTTPServer.Shutdown(shutdownCtx); err != nil {
			a.Log.Error("failed to shutdown http server", "error", err)
		}

		// дожидаемся генераций, которые уже идут
		if deps.TelegramService != nil {
			if err := deps.TelegramService.Wait(); err != nil {
				a.Log.Error("telegram workers finished with error", "error", err)
			}
		}

		if deps.KafkaProducer != nil {
			if err := deps.KafkaProducer.Close(); err != nil {
				a.Log.Error("failed to close kafka producer", "error", err)
			}
		}

		if deps.Redis != nil {
			if err := deps.Redis.Close(); err != nil {
				a.Log.Error("failed to close cache", "error", err)
			}
		}

		if deps.DB != nil {
			if err := deps.DB.Close(); err != nil {
				a.Log.Error("failed to close database", "error", err)
			}
		}

		a.Log.Info("application shutdown completed")
		return nil
	})

	if err := g.Wait(); err != nil {
		a.Log.Error("application error", "error", err)
		return err
	}

	return nil
}
