package domain

import (
	"time"

	"github.com/google/uuid"
)

type ResultKind int

const (
	ResultFailure ResultKind = iota
	ResultSuccess
)

// GenerationResult результат вызова бэкенда генерации.
// При Success заполнен URL (http(s) или data:image), при Failure - Reason.
type GenerationResult struct {
	Kind   ResultKind
	URL    string
	Reason string
}

func Success(url string) GenerationResult {
	return GenerationResult{Kind: ResultSuccess, URL: url}
}

func Failure(reason string) GenerationResult {
	return GenerationResult{Kind: ResultFailure, Reason: reason}
}

func (r GenerationResult) OK() bool {
	return r.Kind == ResultSuccess
}

type GenerationMode string

const (
	ModePreset      GenerationMode = "preset"
	ModeCustom      GenerationMode = "custom"
	ModeTextToImage GenerationMode = "text_to_image"
)

type GenerationStatus string

const (
	GenerationSucceeded GenerationStatus = "succeeded"
	GenerationFailed    GenerationStatus = "failed"
)

// Generation запись журнала генераций
type Generation struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	Platform     Platform         `json:"platform" db:"platform"`
	ChatID       string           `json:"chat_id" db:"chat_id"`
	SenderID     string           `json:"sender_id" db:"sender_id"`
	GroupID      *string          `json:"group_id,omitempty" db:"group_id"`
	Mode         GenerationMode   `json:"mode" db:"mode"`
	Label        string           `json:"label" db:"label"`
	ImageCount   int              `json:"image_count" db:"image_count"`
	Backend      string           `json:"backend" db:"backend"`
	Status       GenerationStatus `json:"status" db:"status"`
	ImageURL     *string          `json:"image_url,omitempty" db:"image_url"`
	ArchiveKey   *string          `json:"archive_key,omitempty" db:"archive_key"`
	ErrorMessage *string          `json:"error_message,omitempty" db:"error_message"`
	ElapsedMs    int64            `json:"elapsed_ms" db:"elapsed_ms"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}
