package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/figurine-bot/internal/pkg/logger"
)

type App struct {
	Name string
	Cfg  *Config
	Log  *slog.Logger
}

func New(name string, cfg *Config) *App {
	return &App{
		Name: name,
		Cfg:  cfg,
		Log:  logger.New(name, cfg.Log),
	}
}

func (a *App) Run(ctx context.Context) error {
	a.Log.Info("running figurine bot",
		"telegram", a.Cfg.Telegram.Enabled(),
		"onebot", a.Cfg.OneBot.Enabled(),
		"backend", a.Cfg.Generator.APIType,
	)

	deps, err := a.initDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to init dependencies: %w", err)
	}

	return a.runServices(ctx, deps)
}
