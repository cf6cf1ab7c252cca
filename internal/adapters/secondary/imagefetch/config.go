package imagefetch

import "time"

type Config struct {
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"30s"`
	MaxBytes int64         `envconfig:"MAX_BYTES" default:"20971520"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	// ProxyURL задаётся общей настройкой прокси, а не отдельной переменной
	ProxyURL string `envconfig:"-"`
}
