package imagegen

import "time"

const (
	APITypeVolcengine = "volcengine"
	APITypeOpenAI     = "openai"
)

type Config struct {
	APIType string `envconfig:"API_TYPE" default:"openai"`

	VolcengineAPIURL string `envconfig:"VOLCENGINE_API_URL"`
	VolcengineModel  string `envconfig:"VOLCENGINE_MODEL"`
	OpenAIAPIURL     string `envconfig:"OPENAI_API_URL"`
	OpenAIModel      string `envconfig:"OPENAI_MODEL"`

	// APIURL и Model - старые общие ключи, используются volcengine как запасной вариант
	APIURL string `envconfig:"API_URL"`
	Model  string `envconfig:"MODEL"`

	// ImageSize пустой - размер по умолчанию для бэкенда
	ImageSize                 string        `envconfig:"IMAGE_SIZE"`
	SequentialImageGeneration string        `envconfig:"SEQUENTIAL_IMAGE_GENERATION" default:"disabled"`
	Watermark                 bool          `envconfig:"WATERMARK" default:"false"`
	Timeout                   time.Duration `envconfig:"TIMEOUT" default:"120s"`

	ProxyURL string `envconfig:"-"`
}
