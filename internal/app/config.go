package app

import (
	"fmt"

	server "github.com/admin/tg-bots/figurine-bot/internal/adapters/primary/http"
	alerterAdapter "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/alerter"
	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/imagefetch"
	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/imagegen"
	kafkaAdapter "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/onebot"
	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/figurine-bot/internal/pkg/logger"
	"github.com/admin/tg-bots/figurine-bot/internal/services/checkin"
	"github.com/admin/tg-bots/figurine-bot/internal/services/jobs"
	"github.com/admin/tg-bots/figurine-bot/internal/usecases/figurine"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// FigurineConfig без префикса секции: FIGURINE_ADMINS, FIGURINE_PREFIX, ...
	FigurineConfig

	Log       *logger.Config         `envconfig:"LOG"`
	Server    *server.Config         `envconfig:"APISERVER"`
	Telegram  *telegram.Config       `envconfig:"TELEGRAM"`
	OneBot    *onebot.Config         `envconfig:"ONEBOT"`
	Generator *imagegen.Config       `envconfig:"GEN"`
	Fetch     *imagefetch.Config     `envconfig:"FETCH"`
	Postgres  *pg.Config             `envconfig:"POSTGRES"`
	Redis     *redisAdapter.Config   `envconfig:"REDIS"`
	S3        *s3Adapter.Config      `envconfig:"S3"`
	Kafka     *kafkaAdapter.Config   `envconfig:"KAFKA"`
	Alerter   *alerterAdapter.Config `envconfig:"ALERTER"`
	Jobs      *jobs.Config           `envconfig:"JOBS"`
}

// FigurineConfig настройки плагина: хранилище, ключи, доступ, квоты, отметки
type FigurineConfig struct {
	DataDir       string `envconfig:"DATA_DIR" default:"data"`
	PromptsFile   string `envconfig:"PROMPTS_FILE" default:"deployments/prompts.yaml"`
	LocalImageDir string `envconfig:"LOCAL_IMAGE_DIR"`

	// APIKeys стартовый набор, дальше ключи живут в settings.json
	APIKeys  []string `envconfig:"API_KEYS"`
	UseProxy bool     `envconfig:"USE_PROXY" default:"false"`
	ProxyURL string   `envconfig:"PROXY_URL"`

	AvatarTemplate string `envconfig:"AVATAR_TEMPLATE" default:"https://q1.qlogo.cn/g?b=qq&nk=%s&s=640"`
	DedupSize      int    `envconfig:"DEDUP_SIZE" default:"4096"`

	Admins         []string `envconfig:"ADMINS"`
	UserBlacklist  []string `envconfig:"USER_BLACKLIST"`
	GroupBlacklist []string `envconfig:"GROUP_BLACKLIST"`
	UserWhitelist  []string `envconfig:"USER_WHITELIST"`
	GroupWhitelist []string `envconfig:"GROUP_WHITELIST"`

	EnableUserLimit  bool   `envconfig:"ENABLE_USER_LIMIT" default:"true"`
	EnableGroupLimit bool   `envconfig:"ENABLE_GROUP_LIMIT" default:"false"`
	Prefix           bool   `envconfig:"PREFIX" default:"true"`
	ExtraPrefix      string `envconfig:"EXTRA_PREFIX" default:"bnn"`
	MaxMultiImages   int    `envconfig:"MAX_MULTI_IMAGES" default:"5"`

	EnableCheckin          bool `envconfig:"ENABLE_CHECKIN" default:"false"`
	EnableRandomCheckin    bool `envconfig:"ENABLE_RANDOM_CHECKIN" default:"false"`
	CheckinFixedReward     int  `envconfig:"CHECKIN_FIXED_REWARD" default:"3"`
	CheckinRandomRewardMax int  `envconfig:"CHECKIN_RANDOM_REWARD_MAX" default:"5"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверки, которые envconfig не умеет
func (c *Config) Validate() error {
	if c.UseProxy && c.ProxyURL == "" {
		return fmt.Errorf("proxy_url is required when use_proxy is true")
	}
	if c.Telegram.Enabled() && c.Telegram.UseWebhook && c.Telegram.WebhookURL == "" {
		return fmt.Errorf("webhook_url is required when use_webhook is true")
	}
	if !c.Telegram.Enabled() && !c.OneBot.Enabled() {
		return fmt.Errorf("no transport configured: set TELEGRAM_BOT_TOKEN or ONEBOT_WS_URL")
	}
	return nil
}

// proxyURL прокси для исходящих запросов, пустая строка - без прокси
func (c *Config) proxyURL() string {
	if !c.UseProxy {
		return ""
	}
	return c.ProxyURL
}

func (c *FigurineConfig) usecaseConfig() figurine.Config {
	return figurine.Config{
		Admins:           c.Admins,
		UserBlacklist:    c.UserBlacklist,
		GroupBlacklist:   c.GroupBlacklist,
		UserWhitelist:    c.UserWhitelist,
		GroupWhitelist:   c.GroupWhitelist,
		EnableUserLimit:  c.EnableUserLimit,
		EnableGroupLimit: c.EnableGroupLimit,
		Prefix:           c.Prefix,
		ExtraPrefix:      c.ExtraPrefix,
		MaxMultiImages:   c.MaxMultiImages,
	}
}

func (c *FigurineConfig) checkinConfig() checkin.Config {
	return checkin.Config{
		Enabled:   c.EnableCheckin,
		Random:    c.EnableRandomCheckin,
		Fixed:     c.CheckinFixedReward,
		RandomMax: c.CheckinRandomRewardMax,
	}
}
