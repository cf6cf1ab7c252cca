package figurine

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/admin/tg-bots/figurine-bot/internal/ports/kafka"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/repository"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/service"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/storage"
	"github.com/admin/tg-bots/figurine-bot/internal/services/checkin"
	"github.com/admin/tg-bots/figurine-bot/internal/services/keypool"
	"github.com/admin/tg-bots/figurine-bot/internal/services/prompts"
)

// Config правила доступа и разбора запросов
type Config struct {
	Admins         []string
	UserBlacklist  []string
	GroupBlacklist []string
	UserWhitelist  []string
	GroupWhitelist []string

	EnableUserLimit  bool
	EnableGroupLimit bool

	// Prefix запросы на генерацию только с обращением к боту
	Prefix bool
	// ExtraPrefix слово для генерации по своему промпту
	ExtraPrefix string
	// MaxMultiImages потолок картинок для бэкендов с несколькими входами, минимум 1
	MaxMultiImages int
}

// Service бизнес-логика плагина: генерации, квоты, промпты, ключи
type Service struct {
	Cfg       Config
	Messenger service.IMessenger
	Images    service.IImageResolver
	Generator service.IImageGenerator
	Users     repository.ICounterRepo
	Groups    repository.ICounterRepo
	Checkin   *checkin.Service
	Catalog   *prompts.Catalog
	Keys      *keypool.Pool
	Settings  repository.ISettingsRepo
	Log       *slog.Logger

	// необязательные зависимости, nil - выключено
	GenerationRepo repository.IGenerationRepo
	EventProducer  kafka.IEventProducer
	AlerterService service.IAlerterService
	Archive        storage.IS3Client
	ArchiveFetcher service.IImageFetcher

	commands map[string]command
	keysMu   sync.Mutex
	now      func() time.Time
}

func New(
	cfg Config,
	messenger service.IMessenger,
	images service.IImageResolver,
	generator service.IImageGenerator,
	users repository.ICounterRepo,
	groups repository.ICounterRepo,
	checkinService *checkin.Service,
	catalog *prompts.Catalog,
	keys *keypool.Pool,
	settings repository.ISettingsRepo,
	log *slog.Logger,
) *Service {
	if cfg.MaxMultiImages < 1 {
		cfg.MaxMultiImages = 1
	}

	s := &Service{
		Cfg:       cfg,
		Messenger: messenger,
		Images:    images,
		Generator: generator,
		Users:     users,
		Groups:    groups,
		Checkin:   checkinService,
		Catalog:   catalog,
		Keys:      keys,
		Settings:  settings,
		Log:       log,
		now:       time.Now,
	}
	s.commands = s.commandTable()
	return s
}

// SetGenerationRepo включает журнал генераций
func (s *Service) SetGenerationRepo(repo repository.IGenerationRepo) {
	s.GenerationRepo = repo
}

// SetEventProducer включает публикацию событий генераций
func (s *Service) SetEventProducer(producer kafka.IEventProducer) {
	s.EventProducer = producer
}

// SetAlerterService включает алерты о неудачных генерациях
func (s *Service) SetAlerterService(alerter service.IAlerterService) {
	s.AlerterService = alerter
}

// SetArchive включает архив удачных генераций, fetcher скачивает результат
func (s *Service) SetArchive(archive storage.IS3Client, fetcher service.IImageFetcher) {
	s.Archive = archive
	s.ArchiveFetcher = fetcher
}

func (s *Service) isAdmin(senderID string) bool {
	return slices.Contains(s.Cfg.Admins, senderID)
}
