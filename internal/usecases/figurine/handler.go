package figurine

import (
	"context"
	"strings"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/service"
)

var _ service.IBotService = (*Service)(nil)

type command struct {
	admin  bool
	handle func(ctx context.Context, msg *domain.Message, args string) error
}

func (s *Service) commandTable() map[string]command {
	table := map[string]command{}
	register := func(cmd command, names ...string) {
		for _, name := range names {
			table[name] = cmd
		}
	}

	register(command{handle: s.handleTextToImage}, "文生图")
	register(command{admin: true, handle: s.handleAddPrompt}, "lm添加", "lma")
	register(command{handle: s.handleHelp}, "lm帮助", "lmh", "手办化帮助")
	register(command{handle: s.handleEffects}, "lm效果", "手办化效果")
	register(command{admin: true, handle: s.handleListPrompts}, "lm列表")
	register(command{admin: true, handle: s.handleUpdatePrompt}, "lm修改")
	register(command{admin: true, handle: s.handleDeletePrompt}, "lm删除")
	register(command{handle: s.handleCheckin}, "手办化签到")
	register(command{admin: true, handle: s.handleGrantUser}, "手办化增加用户次数")
	register(command{admin: true, handle: s.handleGrantGroup}, "手办化增加群组次数")
	register(command{handle: s.handleQueryCounts}, "手办化查询次数")
	register(command{admin: true, handle: s.handleAddKeys}, "手办化添加key")
	register(command{admin: true, handle: s.handleListKeys}, "手办化key列表")
	register(command{admin: true, handle: s.handleDeleteKey}, "手办化删除key")

	return table
}

// HandleMessage команды имеют приоритет над запросами на генерацию по пресету
func (s *Service) HandleMessage(ctx context.Context, msg *domain.Message) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}

	name, args := splitCommand(text)
	if cmd, ok := s.commands[name]; ok {
		if cmd.admin && !s.isAdmin(msg.SenderID) {
			s.Log.Debug("admin command from non-admin ignored",
				"command", name,
				"sender_id", msg.SenderID,
			)
			return nil
		}
		return cmd.handle(ctx, msg, args)
	}

	return s.handleFigurine(ctx, msg, text)
}

// splitCommand первое слово и остаток без крайних пробелов
func splitCommand(text string) (string, string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	name := fields[0]
	return name, strings.TrimSpace(strings.TrimPrefix(text, name))
}

// reply отправляет текст в тот же чат ответом на сообщение
func (s *Service) reply(ctx context.Context, msg *domain.Message, text string) error {
	if err := s.Messenger.SendText(ctx, msg.Reply(), text); err != nil {
		s.Log.Error("failed to send reply",
			"error", err,
			"platform", msg.Platform,
			"chat_id", msg.ChatID,
		)
		return domain.WrapBusinessError(err)
	}
	return nil
}
