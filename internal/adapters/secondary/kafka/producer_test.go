package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/pkg/logger"
)

func TestConfig(t *testing.T) {
	var nilCfg *Config
	assert.False(t, nilCfg.Enabled())
	assert.False(t, (&Config{}).Enabled())

	cfg := &Config{Brokers: "a:9092, b:9092"}
	assert.True(t, cfg.Enabled())
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.GetBrokers())
}

func TestSaramaConfig_SASL(t *testing.T) {
	c := saramaConfig(&Config{SecurityProtocol: "SASL_SSL", SASLMechanism: "SCRAM-SHA-256", SASLUsername: "u", SASLPassword: "p"})

	assert.True(t, c.Net.SASL.Enable)
	assert.True(t, c.Net.TLS.Enable)
	assert.Equal(t, sarama.SASLMechanism(sarama.SASLTypeSCRAMSHA256), c.Net.SASL.Mechanism)

	plain := saramaConfig(&Config{})
	assert.False(t, plain.Net.SASL.Enable)
}

func TestSendGenerationEvent(t *testing.T) {
	cfg := &Config{Brokers: "mock:9092", Topic: "figurine.generations"}
	mock := mocks.NewSyncProducer(t, nil)
	defer mock.Close()

	dataURL := "data:image/png;base64,AAAA"
	g := &domain.Generation{
		ID:        uuid.New(),
		Platform:  domain.PlatformOneBot,
		SenderID:  "10001",
		Mode:      domain.ModePreset,
		Label:     "手办化",
		Status:    domain.GenerationSucceeded,
		ImageURL:  &dataURL,
		CreatedAt: time.Now(),
	}

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, _ := msg.Key.Encode()
		if string(key) != g.ID.String() {
			return errors.New("unexpected key")
		}
		value, _ := msg.Value.Encode()
		var decoded map[string]any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if _, ok := decoded["image_url"]; ok {
			return errors.New("data uri must not be published")
		}
		if len(msg.Headers) != 3 || string(msg.Headers[0].Value) != eventGenerationCompleted {
			return errors.New("unexpected headers")
		}
		return nil
	})

	p := newProducer(mock, cfg, logger.Discard())
	require.NoError(t, p.SendGenerationEvent(context.Background(), g))
	assert.Equal(t, &dataURL, g.ImageURL)
}

func TestSendGenerationEvent_Error(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	defer mock.Close()
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newProducer(mock, &Config{Topic: "t"}, logger.Discard())
	err := p.SendGenerationEvent(context.Background(), &domain.Generation{ID: uuid.New()})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}
