package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearTransports(t *testing.T) {
	t.Helper()
	t.Setenv("FIGURINE_TELEGRAM_BOT_TOKEN", "")
	t.Setenv("FIGURINE_ONEBOT_WS_URL", "")
	t.Setenv("FIGURINE_USE_PROXY", "false")
	t.Setenv("FIGURINE_PROXY_URL", "")
}

func TestNewEnvConfig_Defaults(t *testing.T) {
	clearTransports(t)
	t.Setenv("FIGURINE_ONEBOT_WS_URL", "ws://127.0.0.1:3001")
	t.Setenv("FIGURINE_ADMINS", "10001,10002")

	cfg, err := NewEnvConfig("figurine")
	require.NoError(t, err)

	assert.Equal(t, []string{"10001", "10002"}, cfg.Admins)
	assert.Equal(t, "bnn", cfg.ExtraPrefix)
	assert.Equal(t, 5, cfg.MaxMultiImages)
	assert.True(t, cfg.Prefix)
	assert.True(t, cfg.EnableUserLimit)
	assert.False(t, cfg.EnableGroupLimit)
	assert.Equal(t, 3, cfg.CheckinFixedReward)
	assert.Equal(t, 5, cfg.CheckinRandomRewardMax)
	assert.Equal(t, "https://q1.qlogo.cn/g?b=qq&nk=%s&s=640", cfg.AvatarTemplate)

	require.NotNil(t, cfg.Server)
	assert.Equal(t, "8080", cfg.Server.Port)
	require.NotNil(t, cfg.Generator)
	assert.Equal(t, "openai", cfg.Generator.APIType)
	assert.Equal(t, []string{"/", "#"}, cfg.OneBot.WakePrefixes)

	assert.True(t, cfg.OneBot.Enabled())
	assert.False(t, cfg.Telegram.Enabled())
	assert.False(t, cfg.Postgres.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.S3.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Alerter.Enabled())
}

func TestNewEnvConfig_NoTransport(t *testing.T) {
	clearTransports(t)

	_, err := NewEnvConfig("figurine")
	assert.ErrorContains(t, err, "no transport configured")
}

func TestNewEnvConfig_ProxyWithoutURL(t *testing.T) {
	clearTransports(t)
	t.Setenv("FIGURINE_TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("FIGURINE_USE_PROXY", "true")

	_, err := NewEnvConfig("figurine")
	assert.ErrorContains(t, err, "proxy_url")
}

func TestConfig_ProxyURL(t *testing.T) {
	cfg := &Config{FigurineConfig: FigurineConfig{ProxyURL: "http://127.0.0.1:7890"}}
	assert.Empty(t, cfg.proxyURL())

	cfg.UseProxy = true
	assert.Equal(t, "http://127.0.0.1:7890", cfg.proxyURL())
}

func TestFigurineConfig_Mapping(t *testing.T) {
	fc := FigurineConfig{
		Admins:                 []string{"1"},
		GroupBlacklist:         []string{"g"},
		Prefix:                 true,
		ExtraPrefix:            "bnn",
		MaxMultiImages:         3,
		EnableCheckin:          true,
		EnableRandomCheckin:    true,
		CheckinFixedReward:     2,
		CheckinRandomRewardMax: 9,
	}

	uc := fc.usecaseConfig()
	assert.Equal(t, []string{"1"}, uc.Admins)
	assert.Equal(t, []string{"g"}, uc.GroupBlacklist)
	assert.Equal(t, 3, uc.MaxMultiImages)
	assert.Equal(t, "bnn", uc.ExtraPrefix)

	ck := fc.checkinConfig()
	assert.True(t, ck.Enabled)
	assert.True(t, ck.Random)
	assert.Equal(t, 2, ck.Fixed)
	assert.Equal(t, 9, ck.RandomMax)
}
