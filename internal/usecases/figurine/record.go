package figurine

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

const alertTemplate = "❌ 手办化生成失败\n🆔 %s\n平台: %s\n用户: %s\n模式: %s [%s]\n后端: %s\n原因: %s"

// record журнал, событие, алерт и архив. Ошибки здесь не доходят до пользователя.
func (s *Service) record(ctx context.Context, msg *domain.Message, req Request, imageCount int, result domain.GenerationResult, elapsed time.Duration) {
	if s.GenerationRepo == nil && s.EventProducer == nil && s.AlerterService == nil && s.Archive == nil {
		return
	}

	g := s.newGeneration(msg, req, imageCount, result, elapsed)

	if result.OK() {
		s.archive(ctx, g)
	} else {
		s.sendAlertOrLog(ctx, g)
	}

	if s.GenerationRepo != nil {
		if err := s.GenerationRepo.Create(ctx, g); err != nil {
			s.Log.Warn("failed to save generation (non-critical)",
				"error", err,
				"generation_id", g.ID,
			)
		}
	}

	if s.EventProducer != nil {
		if err := s.EventProducer.SendGenerationEvent(ctx, g); err != nil {
			s.Log.Warn("failed to publish generation event (non-critical)",
				"error", err,
				"generation_id", g.ID,
			)
		}
	}
}

func (s *Service) newGeneration(msg *domain.Message, req Request, imageCount int, result domain.GenerationResult, elapsed time.Duration) *domain.Generation {
	g := &domain.Generation{
		ID:         uuid.New(),
		Platform:   msg.Platform,
		ChatID:     msg.ChatID,
		SenderID:   msg.SenderID,
		Mode:       req.Mode,
		Label:      req.Label(),
		ImageCount: imageCount,
		Status:     domain.GenerationFailed,
		ElapsedMs:  elapsed.Milliseconds(),
		CreatedAt:  s.now(),
	}
	if s.Generator != nil {
		g.Backend = s.Generator.Name()
	}
	if msg.IsGroup() {
		group := msg.GroupID
		g.GroupID = &group
	}
	if result.OK() {
		url := result.URL
		g.Status = domain.GenerationSucceeded
		g.ImageURL = &url
	} else {
		reason := truncateRunes(result.Reason, maxReasonRunes)
		g.ErrorMessage = &reason
	}
	return g
}

// archive кладёт результат в generations/YYYY/MM/DD/<id>.<ext>
func (s *Service) archive(ctx context.Context, g *domain.Generation) {
	if s.Archive == nil || s.ArchiveFetcher == nil || g.ImageURL == nil {
		return
	}

	data, err := s.ArchiveFetcher.Fetch(ctx, *g.ImageURL)
	if err != nil {
		s.Log.Warn("failed to fetch generated image for archive",
			"error", err,
			"generation_id", g.ID,
		)
		return
	}

	contentType := http.DetectContentType(data)
	key := archiveKey(g.ID, g.CreatedAt, contentType)
	if err := s.Archive.PutFile(ctx, key, data, contentType); err != nil {
		s.Log.Warn("failed to archive generated image",
			"error", err,
			"generation_id", g.ID,
		)
		return
	}
	g.ArchiveKey = &key
}

func archiveKey(id uuid.UUID, at time.Time, contentType string) string {
	ext := "bin"
	if strings.HasPrefix(contentType, "image/") {
		ext = strings.TrimPrefix(contentType, "image/")
		if ext == "jpeg" {
			ext = "jpg"
		}
	}
	return fmt.Sprintf("generations/%s/%s.%s", at.Format("2006/01/02"), id, ext)
}

// sendAlertOrLog не падает, если алертер не настроен
func (s *Service) sendAlertOrLog(ctx context.Context, g *domain.Generation) {
	if s.AlerterService == nil {
		return
	}

	reason := ""
	if g.ErrorMessage != nil {
		reason = *g.ErrorMessage
	}
	message := fmt.Sprintf(alertTemplate, g.ID, g.Platform, g.SenderID, g.Mode, g.Label, g.Backend, reason)

	if err := s.AlerterService.SendAlert(ctx, message); err != nil {
		s.Log.Warn("failed to send alert (non-critical)",
			"error", err,
			"generation_id", g.ID,
		)
	}
}
