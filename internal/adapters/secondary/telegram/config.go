package telegram

type Config struct {
	// BotToken пустой - Telegram выключен
	BotToken       string `envconfig:"BOT_TOKEN"`
	UseWebhook     bool   `envconfig:"USE_WEBHOOK" default:"false"`
	WebhookURL     string `envconfig:"WEBHOOK_URL"`
	WebhookSecret  string `envconfig:"WEBHOOK_SECRET"`
	PollingTimeout int    `envconfig:"POLLING_TIMEOUT" default:"30"`
	Workers        int    `envconfig:"WORKERS" default:"8"`
	APIBaseURL     string `envconfig:"API_BASE_URL" default:"https://api.telegram.org"`
}

func (c *Config) Enabled() bool {
	return c != nil && c.BotToken != ""
}
