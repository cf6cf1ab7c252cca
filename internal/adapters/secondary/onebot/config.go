package onebot

import "time"

type Config struct {
	// WSURL пустой - OneBot выключен
	WSURL             string        `envconfig:"WS_URL"`
	AccessToken       string        `envconfig:"ACCESS_TOKEN"`
	ReconnectInterval time.Duration `envconfig:"RECONNECT_INTERVAL" default:"5s"`
	APITimeout        time.Duration `envconfig:"API_TIMEOUT" default:"8s"`
	WakePrefixes      []string      `envconfig:"WAKE_PREFIXES" default:"/,#"`
}

func (c *Config) Enabled() bool {
	return c != nil && c.WSURL != ""
}
