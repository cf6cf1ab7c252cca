package imagegen

import (
	"encoding/base64"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

// backend формат запроса и ответа конкретного API
type backend interface {
	name() string
	multiImage() bool
	payload(images [][]byte, prompt string) any
	parse(body []byte) domain.GenerationResult
}

func dataURI(img []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
}

// volcengine - images/generations Ark, одна входная картинка
type volcengine struct {
	model      string
	size       string
	sequential string
	watermark  bool
}

type volcenginePayload struct {
	Model                     string `json:"model"`
	Prompt                    string `json:"prompt"`
	Size                      string `json:"size"`
	SequentialImageGeneration string `json:"sequential_image_generation"`
	Stream                    bool   `json:"stream"`
	ResponseFormat            string `json:"response_format"`
	Watermark                 bool   `json:"watermark"`
	Image                     string `json:"image,omitempty"`
}

func (v *volcengine) name() string     { return APITypeVolcengine }
func (v *volcengine) multiImage() bool { return false }

func (v *volcengine) payload(images [][]byte, prompt string) any {
	p := volcenginePayload{
		Model:                     v.model,
		Prompt:                    prompt,
		Size:                      v.size,
		SequentialImageGeneration: v.sequential,
		Stream:                    false,
		ResponseFormat:            "url",
		Watermark:                 v.watermark,
	}
	if len(images) > 0 {
		p.Image = dataURI(images[0])
	}
	return p
}

func (v *volcengine) parse(body []byte) domain.GenerationResult {
	return parseImagesResponse(body)
}

// openAIImages - OpenAI-совместимый images endpoint, одна входная картинка
type openAIImages struct {
	model string
	size  string
}

type openAIImagesPayload struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
	Image          string `json:"image,omitempty"`
}

func (o *openAIImages) name() string     { return "openai_images" }
func (o *openAIImages) multiImage() bool { return false }

func (o *openAIImages) payload(images [][]byte, prompt string) any {
	p := openAIImagesPayload{
		Model:          o.model,
		Prompt:         prompt,
		N:              1,
		Size:           o.size,
		ResponseFormat: "url",
	}
	if len(images) > 0 {
		p.Image = dataURI(images[0])
	}
	return p
}

func (o *openAIImages) parse(body []byte) domain.GenerationResult {
	return parseImagesResponse(body)
}

// openAIChat - chat/completions, все картинки уходят частями image_url
type openAIChat struct {
	model string
}

type chatPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string     `json:"role"`
	Content []chatPart `json:"content"`
}

type openAIChatPayload struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

func (o *openAIChat) name() string     { return "openai_chat" }
func (o *openAIChat) multiImage() bool { return true }

func (o *openAIChat) payload(images [][]byte, prompt string) any {
	content := make([]chatPart, 0, len(images)+1)
	content = append(content, chatPart{Type: "text", Text: prompt})
	for _, img := range images {
		content = append(content, chatPart{Type: "image_url", ImageURL: &chatImageURL{URL: dataURI(img)}})
	}
	return openAIChatPayload{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: content}},
		Stream:   false,
	}
}

func (o *openAIChat) parse(body []byte) domain.GenerationResult {
	return parseChatResponse(body)
}
