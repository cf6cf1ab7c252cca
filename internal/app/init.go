package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	server "github.com/admin/tg-bots/figurine-bot/internal/adapters/primary/http"
	adminController "github.com/admin/tg-bots/figurine-bot/internal/adapters/primary/http/controllers/admin"
	healthcheckController "github.com/admin/tg-bots/figurine-bot/internal/adapters/primary/http/controllers/healthcheck"
	telegramController "github.com/admin/tg-bots/figurine-bot/internal/adapters/primary/http/controllers/telegram"
	alerterAdapter "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/alerter"
	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/imagefetch"
	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/imagegen"
	kafkaAdapter "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/kafka"
	onebotAdapter "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/onebot"
	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/jsonfile"
	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/s3"
	tgAdapter "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/cache"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/repository"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/service"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/storage"
	checkinRepo "github.com/admin/tg-bots/figurine-bot/internal/repository/checkin"
	counterRepo "github.com/admin/tg-bots/figurine-bot/internal/repository/counter"
	generationRepo "github.com/admin/tg-bots/figurine-bot/internal/repository/generation"
	settingsRepo "github.com/admin/tg-bots/figurine-bot/internal/repository/settings"
	alerterService "github.com/admin/tg-bots/figurine-bot/internal/services/alerter"
	"github.com/admin/tg-bots/figurine-bot/internal/services/checkin"
	"github.com/admin/tg-bots/figurine-bot/internal/services/imageresolver"
	jobScheduler "github.com/admin/tg-bots/figurine-bot/internal/services/jobs"
	"github.com/admin/tg-bots/figurine-bot/internal/services/keypool"
	"github.com/admin/tg-bots/figurine-bot/internal/services/messenger"
	onebotService "github.com/admin/tg-bots/figurine-bot/internal/services/onebot"
	"github.com/admin/tg-bots/figurine-bot/internal/services/prompts"
	telegramService "github.com/admin/tg-bots/figurine-bot/internal/services/telegram"
	"github.com/admin/tg-bots/figurine-bot/internal/usecases/figurine"
	"github.com/jmoiron/sqlx"
)

type Dependencies struct {
	DB              *sqlx.DB
	Redis           *redisAdapter.Client
	HTTPServer      *http.Server
	TelegramService *telegramService.Service
	TelegramPoller  *tgAdapter.Poller
	OneBotService   *onebotService.Service
	KafkaProducer   *kafkaAdapter.Producer
	JobScheduler    *jobScheduler.Scheduler
}

// stores JSON-файлы в каталоге данных
type stores struct {
	Users    *jsonfile.Store[map[string]int]
	Groups   *jsonfile.Store[map[string]int]
	Checkin  *jsonfile.Store[map[string]string]
	Settings *jsonfile.Store[domain.Settings]
}

// repositories содержит инициализированные репозитории
type repositories struct {
	Users      repository.ICounterRepo
	Groups     repository.ICounterRepo
	Checkin    repository.ICheckinRepo
	Settings   repository.ISettingsRepo
	Generation repository.IGenerationRepo
}

// externalServices необязательные внешние сервисы, nil - выключено
type externalServices struct {
	Alerter service.IAlerterService
	Cache   cache.Cache
	Archive storage.IS3Client
	Events  *kafkaAdapter.Producer
	DB      *sqlx.DB
	Redis   *redisAdapter.Client
}

// initDependencies инициализирует все зависимости приложения
func (a *App) initDependencies(ctx context.Context) (*Dependencies, error) {
	st, err := a.initStores()
	if err != nil {
		return nil, fmt.Errorf("failed to init stores: %w", err)
	}

	repos, err := a.initRepositories(st)
	if err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	ext := a.initExternalServices(ctx)
	if ext.DB != nil {
		repos.Generation = generationRepo.New(pg.NewDB(ext.DB), a.Log)
	}

	keys := keypool.New(repos.Settings.Get().APIKeys)
	catalog := prompts.New(repos.Settings, a.Log)
	checkinSvc := checkin.New(a.Cfg.checkinConfig(), repos.Users, repos.Checkin, a.Log)

	fetcher, err := imagefetch.NewClient(a.fetchConfig(), ext.Cache, a.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init image fetcher: %w", err)
	}

	generator := a.initGenerator(keys)

	dedup := inmemory.NewDedupCache(a.Cfg.DedupSize)
	resolver := imageresolver.New(fetcher, a.Log)
	msgr := messenger.New(a.Cfg.LocalImageDir, fetcher, a.Log)

	tgSvc, poller, err := a.initTelegram(ctx, dedup)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram: %w", err)
	}
	if tgSvc != nil {
		resolver.SetAvatarSource(domain.PlatformTelegram, tgSvc)
		msgr.Register(domain.PlatformTelegram, tgSvc)
	}

	obSvc := a.initOneBot(dedup)
	if obSvc != nil {
		resolver.SetAvatarSource(domain.PlatformOneBot, imageresolver.TemplateAvatars{Template: a.Cfg.AvatarTemplate})
		msgr.Register(domain.PlatformOneBot, obSvc)
	}

	figurineUseCase := figurine.New(
		a.Cfg.usecaseConfig(),
		msgr,
		resolver,
		generator,
		repos.Users,
		repos.Groups,
		checkinSvc,
		catalog,
		keys,
		repos.Settings,
		a.Log,
	)
	a.wireOptional(figurineUseCase, repos, ext, fetcher)

	if tgSvc != nil {
		tgSvc.SetBotService(figurineUseCase)
	}
	if obSvc != nil {
		obSvc.SetBotService(figurineUseCase)
	}

	httpServer := a.initHTTP(ext, tgSvc, figurineUseCase, repos.Generation)
	scheduler, err := a.initJobScheduler(ext, st, checkinSvc, repos.Generation)
	if err != nil {
		return nil, fmt.Errorf("failed to init job scheduler: %w", err)
	}

	return &Dependencies{
		DB:              ext.DB,
		Redis:           ext.Redis,
		HTTPServer:      httpServer,
		TelegramService: tgSvc,
		TelegramPoller:  poller,
		OneBotService:   obSvc,
		KafkaProducer:   ext.Events,
		JobScheduler:    scheduler,
	}, nil
}

// initStores создаёт каталог данных и загружает JSON-файлы счётчиков
func (a *App) initStores() (*stores, error) {
	if err := os.MkdirAll(a.Cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	st := &stores{
		Users:   jsonfile.NewMap[int](filepath.Join(a.Cfg.DataDir, "user_counts.json"), a.Log),
		Groups:  jsonfile.NewMap[int](filepath.Join(a.Cfg.DataDir, "group_counts.json"), a.Log),
		Checkin: jsonfile.NewMap[string](filepath.Join(a.Cfg.DataDir, "user_checkin.json"), a.Log),
		Settings: jsonfile.New(filepath.Join(a.Cfg.DataDir, "settings.json"), func() domain.Settings {
			return domain.Settings{}
		}, a.Log),
	}

	if _, err := st.Users.Load(); err != nil {
		return nil, fmt.Errorf("failed to load user counts: %w", err)
	}
	if _, err := st.Groups.Load(); err != nil {
		return nil, fmt.Errorf("failed to load group counts: %w", err)
	}
	if _, err := st.Checkin.Load(); err != nil {
		return nil, fmt.Errorf("failed to load checkin ledger: %w", err)
	}

	return st, nil
}

// initRepositories инициализирует репозитории поверх JSON-файлов
func (a *App) initRepositories(st *stores) (*repositories, error) {
	defaultPrompts, err := settingsRepo.LoadDefaultPrompts(a.Cfg.PromptsFile)
	if err != nil {
		return nil, err
	}

	settings, err := settingsRepo.New(st.Settings, domain.Settings{
		APIKeys:    a.Cfg.APIKeys,
		PromptList: defaultPrompts,
	}, a.Log)
	if err != nil {
		return nil, err
	}

	return &repositories{
		Users:    counterRepo.New(st.Users, a.Log),
		Groups:   counterRepo.New(st.Groups, a.Log),
		Checkin:  checkinRepo.New(st.Checkin, a.Log),
		Settings: settings,
	}, nil
}

// initExternalServices поднимает необязательные подсистемы. Ошибка подключения
// не останавливает бота, подсистема просто остаётся выключенной.
func (a *App) initExternalServices(ctx context.Context) *externalServices {
	ext := &externalServices{}

	if client := alerterAdapter.NewClient(a.Cfg.Alerter, a.Log); client != nil {
		ext.Alerter = alerterService.New(client)
	}

	if a.Cfg.Redis.Enabled() {
		redisClient, err := redisAdapter.NewClient(a.Cfg.Redis, a.Log)
		if err != nil {
			a.Log.Warn("failed to init redis cache, continuing without cache", "error", err)
		} else {
			ext.Redis = redisClient
			ext.Cache = redisClient
			a.Log.Info("redis cache connected successfully")
		}
	}

	if a.Cfg.Postgres.Enabled() {
		db, err := a.initPostgres(ctx)
		if err != nil {
			a.Log.Warn("failed to init postgres, generation journal disabled", "error", err)
		} else {
			ext.DB = db
		}
	}

	if a.Cfg.S3.Enabled() {
		minioClient, err := a.Cfg.S3.NewClient()
		if err != nil {
			a.Log.Warn("failed to init s3, archive disabled", "error", err)
		} else {
			ext.Archive = s3Adapter.NewClient(minioClient, a.Cfg.S3.Bucket, a.Log)
			a.Log.Info("s3 archive enabled", "bucket", a.Cfg.S3.Bucket)
		}
	}

	if a.Cfg.Kafka.Enabled() {
		producer, err := kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
		if err != nil {
			a.Log.Warn("failed to create kafka producer", "error", err)
		} else {
			ext.Events = producer
		}
	}

	return ext
}

// initPostgres подключается к PostgreSQL и запускает миграции
func (a *App) initPostgres(ctx context.Context) (*sqlx.DB, error) {
	db, err := a.Cfg.Postgres.NewConnection(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	a.Log.Info("postgres connected successfully")

	if err := pg.RunMigrations(ctx, db, a.Log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func (a *App) fetchConfig() imagefetch.Config {
	cfg := *a.Cfg.Fetch
	cfg.ProxyURL = a.Cfg.proxyURL()
	return cfg
}

// initGenerator без бэкенда бот работает, но на запросы отвечает, что генератор не готов
func (a *App) initGenerator(keys *keypool.Pool) service.IImageGenerator {
	cfg := *a.Cfg.Generator
	cfg.ProxyURL = a.Cfg.proxyURL()

	client, err := imagegen.NewClient(cfg, keys, a.Log)
	if err != nil {
		a.Log.Error("failed to init image generator", "error", err, "api_type", cfg.APIType)
		return nil
	}

	a.Log.Info("image generator ready", "backend", client.Name(), "multi_image", client.SupportsMultiImage())
	return client
}

// initTelegram настраивает бота и режим получения обновлений (webhook или polling)
func (a *App) initTelegram(ctx context.Context, dedup cache.IDedupCache) (*telegramService.Service, *tgAdapter.Poller, error) {
	if !a.Cfg.Telegram.Enabled() {
		return nil, nil, nil
	}

	client := tgAdapter.NewClient(a.Cfg.Telegram.BotToken, a.Cfg.Telegram.APIBaseURL, a.Log)
	tgSvc := telegramService.New(client, dedup, a.Cfg.Telegram.Workers, a.Log)

	if err := tgSvc.Setup(ctx, a.Cfg.Telegram); err != nil {
		return nil, nil, err
	}

	a.Log.Info("telegram configuration",
		"use_webhook", a.Cfg.Telegram.UseWebhook,
		"webhook_url", a.Cfg.Telegram.WebhookURL,
	)

	if a.Cfg.Telegram.UseWebhook {
		return tgSvc, nil, nil
	}

	a.Log.Warn("polling mode enabled")
	poller := tgAdapter.NewPoller(client, a.Cfg.Telegram.PollingTimeout, tgSvc.Dispatch, a.Log)
	return tgSvc, poller, nil
}

func (a *App) initOneBot(dedup cache.IDedupCache) *onebotService.Service {
	if !a.Cfg.OneBot.Enabled() {
		return nil
	}

	client := onebotAdapter.NewClient(a.Cfg.OneBot, a.Log)
	return onebotService.New(client, dedup, a.Cfg.OneBot.WakePrefixes, a.Log)
}

// wireOptional подключает журнал, архив, события и алерты, если они настроены
func (a *App) wireOptional(uc *figurine.Service, repos *repositories, ext *externalServices, fetcher service.IImageFetcher) {
	if repos.Generation != nil {
		uc.SetGenerationRepo(repos.Generation)
	}
	if ext.Archive != nil {
		uc.SetArchive(ext.Archive, fetcher)
	}
	if ext.Events != nil {
		uc.SetEventProducer(ext.Events)
	}
	if ext.Alerter != nil {
		uc.SetAlerterService(ext.Alerter)
	}
}

// initHTTP инициализирует HTTP сервер и контроллеры
func (a *App) initHTTP(
	ext *externalServices,
	tgSvc *telegramService.Service,
	quota adminController.QuotaService,
	journal repository.IGenerationRepo,
) *http.Server {
	pingers := make(map[string]healthcheckController.Pinger)
	if ext.DB != nil {
		pingers["postgres"] = pg.NewDB(ext.DB)
	}
	if ext.Redis != nil {
		pingers["redis"] = ext.Redis
	}

	controllers := []server.Controller{
		healthcheckController.New(pingers, a.Log),
		adminController.New(quota, journal, ext.Archive, a.Cfg.Server.AdminToken, a.Log),
	}

	if tgSvc != nil && a.Cfg.Telegram.UseWebhook {
		controllers = append(controllers, telegramController.New(tgSvc, a.Cfg.Telegram.WebhookSecret, a.Log))
	}

	return server.NewHTTPServer(a.Cfg.Server, a.Log, controllers...)
}

// initJobScheduler регистрирует периодические задачи обслуживания
func (a *App) initJobScheduler(
	ext *externalServices,
	st *stores,
	checkinSvc *checkin.Service,
	journal repository.IGenerationRepo,
) (*jobScheduler.Scheduler, error) {
	loc := a.Cfg.Jobs.Location()
	scheduler := jobScheduler.NewScheduler(a.Log, ext.Alerter)

	if ext.Archive != nil {
		schedule, err := jobScheduler.ParseSchedule(a.Cfg.Jobs.BackupCron, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid backup schedule: %w", err)
		}
		scheduler.Register(jobScheduler.NewStoreBackup(ext.Archive, schedule, a.Log,
			st.Users, st.Groups, st.Checkin, st.Settings))
		a.Log.Info("store backup job registered", "schedule", schedule.String())
	}

	if a.Cfg.EnableCheckin {
		schedule, err := jobScheduler.ParseSchedule(a.Cfg.Jobs.CheckinPruneCron, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid checkin prune schedule: %w", err)
		}
		scheduler.Register(jobScheduler.NewCheckinPruner(checkinSvc, schedule, a.Log))
		a.Log.Info("checkin pruner job registered", "schedule", schedule.String())
	}

	if journal != nil {
		schedule, err := jobScheduler.ParseSchedule(a.Cfg.Jobs.GenerationPruneCron, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid generation prune schedule: %w", err)
		}
		scheduler.Register(jobScheduler.NewGenerationPruner(journal, a.Cfg.Jobs.GenerationRetention, schedule, a.Log))
		a.Log.Info("generation pruner job registered", "schedule", schedule.String())
	}

	return scheduler, nil
}
