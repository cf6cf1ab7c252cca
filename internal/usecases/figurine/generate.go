package figurine

import (
	"context"
	"strings"
	"time"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/usecases/figurine/texts"
)

const (
	customLabelRunes = 10
	t2iLabelRunes    = 20
	maxReasonRunes   = 500
)

// Request разобранный запрос на генерацию
type Request struct {
	Mode   domain.GenerationMode
	Key    string
	Prompt string
}

// Label подпись запроса в прогрессе и в подписи к результату
func (r Request) Label() string {
	switch r.Mode {
	case domain.ModeCustom:
		return truncateLabel(r.Prompt, customLabelRunes)
	case domain.ModeTextToImage:
		return truncateLabel(r.Prompt, t2iLabelRunes)
	default:
		return r.Key
	}
}

// Plan что уйдёт в генератор и какие уведомления показать до отправки
type Plan struct {
	Images  [][]byte
	Notices []string
}

// parseRequest первое слово - ExtraPrefix или ключ пресета, иначе запрос не наш
func (s *Service) parseRequest(text string) (Request, bool) {
	first, rest := splitCommand(text)
	if first == "" {
		return Request{}, false
	}

	if first == s.Cfg.ExtraPrefix {
		if rest == "" {
			return Request{}, false
		}
		return Request{Mode: domain.ModeCustom, Key: first, Prompt: rest}, true
	}

	if prompt, ok := s.Catalog.Lookup(first); ok {
		return Request{Mode: domain.ModePreset, Key: first, Prompt: prompt}, true
	}
	return Request{}, false
}

// BuildPlan обрезает картинки до лимита бэкенда и готовит уведомления.
// ok=false когда пресету нечего обрабатывать.
func BuildPlan(req Request, images [][]byte, multiImage bool, maxImages int) (Plan, bool) {
	if req.Mode == domain.ModePreset && len(images) == 0 {
		return Plan{Notices: []string{texts.SendOrQuoteImage}}, false
	}

	limit := 1
	if multiImage {
		limit = max(1, maxImages)
	}

	var plan Plan
	plan.Images = images
	if len(images) > limit {
		plan.Images = images[:limit]
		plan.Notices = append(plan.Notices, texts.Truncated(len(images), limit))
	}

	switch req.Mode {
	case domain.ModeCustom:
		plan.Notices = append(plan.Notices, texts.CustomProgress(len(plan.Images), req.Label()))
	case domain.ModeTextToImage:
		plan.Notices = append(plan.Notices, texts.TextToImageProgress(req.Label()))
	default:
		plan.Notices = append(plan.Notices, texts.PresetProgress(req.Label()))
	}
	return plan, true
}

func (s *Service) handleFigurine(ctx context.Context, msg *domain.Message, text string) error {
	if s.Cfg.Prefix && !msg.Addressed {
		return nil
	}

	req, ok := s.parseRequest(text)
	if !ok {
		return nil
	}

	switch decision := s.checkAccess(msg); decision {
	case Allowed:
	case DeniedGroupAndUserQuota:
		return s.reply(ctx, msg, texts.GroupAndUserExhausted)
	case DeniedUserQuota:
		return s.reply(ctx, msg, texts.UserExhausted)
	default:
		s.Log.Debug("figurine request rejected",
			"decision", decision,
			"sender_id", msg.SenderID,
			"group_id", msg.GroupID,
		)
		return nil
	}

	var images [][]byte
	if s.Images != nil {
		images = s.Images.Resolve(ctx, msg)
	}

	multi := s.Generator != nil && s.Generator.SupportsMultiImage()
	plan, ok := BuildPlan(req, images, multi, s.Cfg.MaxMultiImages)
	for _, notice := range plan.Notices {
		if err := s.reply(ctx, msg, notice); err != nil {
			return err
		}
	}
	if !ok {
		return nil
	}

	return s.generate(ctx, msg, req, plan.Images)
}

func (s *Service) handleTextToImage(ctx context.Context, msg *domain.Message, args string) error {
	if args == "" {
		return s.reply(ctx, msg, texts.TextToImageUsage)
	}

	if notice := textToImageDenial(s.checkAccess(msg)); notice != "" {
		return s.reply(ctx, msg, notice)
	}

	req := Request{Mode: domain.ModeTextToImage, Prompt: args}
	plan, _ := BuildPlan(req, nil, false, 1)
	for _, notice := range plan.Notices {
		if err := s.reply(ctx, msg, notice); err != nil {
			return err
		}
	}
	return s.generate(ctx, msg, req, nil)
}

// textToImageDenial для 文生图 каждый отказ объясняется пользователю
func textToImageDenial(d Decision) string {
	switch d {
	case DeniedUserBlacklist:
		return texts.T2IUserBlacklisted
	case DeniedGroupBlacklist:
		return texts.T2IGroupBlacklisted
	case DeniedUserWhitelist:
		return texts.T2IUserNotWhitelist
	case DeniedGroupWhitelist:
		return texts.T2IGroupNotWhitelist
	case DeniedGroupAndUserQuota:
		return texts.T2IGroupAndUserEmpty
	case DeniedUserQuota:
		return texts.T2IUserEmpty
	default:
		return ""
	}
}

// generate вызывает бэкенд, списывает квоту только после успеха и отвечает результатом
func (s *Service) generate(ctx context.Context, msg *domain.Message, req Request, images [][]byte) error {
	start := s.now()
	result := domain.Failure(texts.GeneratorNotReady)
	if s.Generator != nil {
		result = s.Generator.Generate(ctx, images, req.Prompt)
	}
	elapsed := s.now().Sub(start)

	s.Log.Info("generation finished",
		"mode", req.Mode,
		"label", req.Label(),
		"sender_id", msg.SenderID,
		"group_id", msg.GroupID,
		"images", len(images),
		"ok", result.OK(),
		"elapsed", elapsed,
	)

	var sendErr error
	if result.OK() {
		s.consumeQuota(msg)
		sendErr = s.sendResult(ctx, msg, result.URL, s.caption(msg, req, elapsed))
	} else {
		reason := truncateRunes(result.Reason, maxReasonRunes)
		sendErr = s.reply(ctx, msg, texts.GenerationFailed(elapsed, reason))
	}

	s.record(ctx, msg, req, len(images), result, elapsed)
	return sendErr
}

func (s *Service) consumeQuota(msg *domain.Message) {
	if s.isAdmin(msg.SenderID) {
		return
	}
	if s.Cfg.EnableUserLimit {
		if _, err := s.Users.Decrement(msg.SenderID); err != nil {
			s.Log.Error("failed to persist user quota", "error", err, "user_id", msg.SenderID)
		}
	}
	if s.Cfg.EnableGroupLimit && msg.IsGroup() {
		if _, err := s.Groups.Decrement(msg.GroupID); err != nil {
			s.Log.Error("failed to persist group quota", "error", err, "group_id", msg.GroupID)
		}
	}
}

func (s *Service) caption(msg *domain.Message, req Request, elapsed time.Duration) string {
	p := texts.CaptionParams{Elapsed: elapsed}
	if req.Mode != domain.ModeTextToImage {
		p.Label = req.Label()
	}
	if s.isAdmin(msg.SenderID) {
		p.Unlimited = true
		return texts.Caption(p)
	}

	p.UserLeft = s.Users.Get(msg.SenderID)
	if s.Cfg.EnableGroupLimit && msg.IsGroup() {
		p.ShowGroup = true
		p.GroupLeft = s.Groups.Get(msg.GroupID)
	}
	return texts.Caption(p)
}

// sendResult при сбое отправки картинки шлём подпись со ссылкой текстом
func (s *Service) sendResult(ctx context.Context, msg *domain.Message, url, caption string) error {
	err := s.Messenger.SendImage(ctx, msg.Reply(), url, caption)
	if err == nil {
		return nil
	}

	s.Log.Warn("failed to send generated image, falling back to text",
		"error", err,
		"platform", msg.Platform,
		"chat_id", msg.ChatID,
	)
	fallback := caption
	if !strings.HasPrefix(url, "data:") {
		fallback += "\n" + url
	}
	return s.reply(ctx, msg, fallback)
}

// truncateLabel первые n символов и многоточие, если обрезали
func truncateLabel(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
