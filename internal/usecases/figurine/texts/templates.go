package texts

import (
	"fmt"
	"strings"
	"time"
)

// Генерация
const (
	SendOrQuoteImage      = "请发送或引用一张图片。"
	GroupAndUserExhausted = "❌ 本群次数与您的个人次数均已用尽。"
	UserExhausted         = "❌ 您的使用次数已用完。"
	TextToImageUsage      = "请提供文生图的描述。用法: #文生图 <描述>"
	GeneratorNotReady     = "图片生成服务未初始化"
)

// Отказы для 文生图 показываются пользователю
const (
	T2IUserBlacklisted   = "❌ 您已被禁止使用此功能。"
	T2IGroupBlacklisted  = "❌ 本群已被禁止使用此功能。"
	T2IUserNotWhitelist  = "❌ 您不在白名单中，无法使用此功能。"
	T2IGroupNotWhitelist = "❌ 本群不在白名单中，无法使用此功能。"
	T2IGroupAndUserEmpty = "❌ 您的个人次数和本群次数均已用尽。"
	T2IUserEmpty         = "❌ 您的个人次数已用尽。"
)

// Квоты
const (
	CheckinDisabled = "📅 本机器人未开启签到功能。"
	GrantUserUsage  = "格式错误:\n#手办化增加用户次数 @用户 <次数>\n或 #手办化增加用户次数 <QQ号> <次数>"
	GrantGroupUsage = "格式错误: #手办化增加群组次数 <群号> <次数>"
	SaveFailed      = "⚠️ 写入文件失败，修改仅在本次运行中生效。"
)

// Ключи
const (
	AddKeyUsage    = "格式错误，请提供要添加的Key。"
	NoKeys         = "📝 暂未配置任何 API Key。"
	DeleteKeyUsage = "格式错误，请使用 #手办化删除key <序号|all>"
)

// Промпты
const (
	AddPromptUsage    = "格式错误, 正确示例:\n/lm添加 姿势表:为这幅图创建一个姿势表, 摆出各种姿势"
	UpdatePromptUsage = "格式错误, 正确示例:\n/lm修改 姿势表:新的提示内容"
	DeletePromptUsage = "格式错误, 正确示例:\n/lm删除 姿势表"
	NoPrompts         = "当前没有配置任何提示词。"
)

var helpLines = []string{
	"📘 手办化插件指令速览",
	"--------------------------------",
	"图生图: 发送图片 + 预设指令，或 @用户 + 预设指令",
	"文生图: /文生图 <描述>",
	"自定义提示词: /lm添加 <名称:提示词>",
	"查看提示词列表: /lm列表 (管理员)",
	"修改提示词: /lm修改 <名称:新提示词> (管理员)",
	"删除提示词: /lm删除 <名称> (管理员)",
	"查看预设效果: /lm效果 [预设名称]",
	"签到领取次数: /手办化签到",
	"查询次数: /手办化查询次数",
	"增加次数: /手办化增加用户次数  /手办化增加群组次数 (管理员)",
	"管理 API Key: /手办化添加key  /手办化key列表  /手办化删除key (管理员)",
}

func Help() string {
	return strings.Join(helpLines, "\n")
}

func Truncated(total, used int) string {
	return fmt.Sprintf("🎨 检测到 %d 张图片，已选取前 %d 张…", total, used)
}

func CustomProgress(count int, label string) string {
	return fmt.Sprintf("🎨 检测到 %d 张图片，正在生成 [%s]...", count, label)
}

func PresetProgress(label string) string {
	return fmt.Sprintf("🎨 收到请求，正在生成 [%s]...", label)
}

func TextToImageProgress(label string) string {
	return fmt.Sprintf("🎨 收到文生图请求，正在生成 [%s]...", label)
}

// CaptionParams данные для подписи к результату
type CaptionParams struct {
	Elapsed   time.Duration
	Label     string
	Unlimited bool
	UserLeft  int
	ShowGroup bool
	GroupLeft int
}

// Caption части подписи склеиваются через " | "
func Caption(p CaptionParams) string {
	parts := []string{fmt.Sprintf("✅ 生成成功 (%s)", seconds(p.Elapsed))}
	if p.Label != "" {
		parts = append(parts, "预设: "+p.Label)
	}
	if p.Unlimited {
		parts = append(parts, "剩余次数: ∞")
	} else {
		parts = append(parts, fmt.Sprintf("个人剩余: %d", p.UserLeft))
		if p.ShowGroup {
			parts = append(parts, fmt.Sprintf("群组剩余: %d", p.GroupLeft))
		}
	}
	return strings.Join(parts, " | ")
}

func GenerationFailed(elapsed time.Duration, reason string) string {
	return fmt.Sprintf("❌ 生成失败 (%s)\n原因: %s", seconds(elapsed), reason)
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func AlreadyCheckedIn(left int) string {
	return fmt.Sprintf("您今天已经签到过了。\n剩余次数: %d", left)
}

func CheckinSuccess(reward, total int) string {
	return fmt.Sprintf("🎉 签到成功！获得 %d 次，当前剩余: %d 次。", reward, total)
}

func UserGranted(userID string, amount, total int) string {
	return fmt.Sprintf("✅ 已为用户 %s 增加 %d 次，TA当前剩余 %d 次。", userID, amount, total)
}

func GroupGranted(groupID string, amount, total int) string {
	return fmt.Sprintf("✅ 已为群组 %s 增加 %d 次，该群当前剩余 %d 次。", groupID, amount, total)
}

// QueryCounts self - запрос о себе, groupLeft < 0 - вне группы
func QueryCounts(userID string, left int, self bool, groupLeft int) string {
	msg := fmt.Sprintf("用户 %s 个人剩余次数为: %d", userID, left)
	if self {
		msg = fmt.Sprintf("您好，您当前个人剩余次数为: %d", left)
	}
	if groupLeft >= 0 {
		msg += fmt.Sprintf("\n本群共享剩余次数为: %d", groupLeft)
	}
	return msg
}

func KeysAdded(added, total int) string {
	return fmt.Sprintf("✅ 操作完成，新增 %d 个Key，当前共 %d 个。", added, total)
}

func KeyList(masked []string) string {
	lines := make([]string, 0, len(masked))
	for i, key := range masked {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, key))
	}
	return "🔑 API Key 列表:\n" + strings.Join(lines, "\n")
}

func AllKeysDeleted(count int) string {
	return fmt.Sprintf("✅ 已删除全部 %d 个 Key。", count)
}

func KeyDeleted(prefix string) string {
	return fmt.Sprintf("✅ 已删除 Key: %s...", prefix)
}

func PromptSaved(key, value string) string {
	return fmt.Sprintf("已保存LM生图提示语:\n%s:%s", key, value)
}

func PromptList(entries []string) string {
	lines := []string{"当前提示词列表:"}
	for i, entry := range entries {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, entry))
	}
	return strings.Join(lines, "\n")
}

func PromptUpdated(key, value string) string {
	return fmt.Sprintf("✅ 已更新提示词:\n%s:%s", key, value)
}

func PromptToUpdateNotFound(key string) string {
	return fmt.Sprintf("未找到需要修改的提示词 [%s]，请先添加。", key)
}

func PromptToDeleteNotFound(key string) string {
	return fmt.Sprintf("未找到提示词 [%s]，无法删除。", key)
}

func PromptDeleted(entry string) string {
	return "✅ 已删除提示词: " + entry
}

func PresetNotFound(key string) string {
	return fmt.Sprintf("未找到预设 [%s]，请确认名称。", key)
}

func PresetEffect(key, prompt string) string {
	return strings.Join([]string{
		fmt.Sprintf("🎯 预设 [%s]", key),
		"说明: " + Description(key),
		"提示词:",
		prompt,
	}, "\n")
}

func PresetOverview(keys []string) string {
	parts := []string{"🎨 可用图生图指令及效果说明 🎨", ""}
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("✨ %s: %s", key, Description(key)))
	}
	parts = append(parts, "", "💡 使用 /lm效果 <预设名称> 查看具体提示词内容。")
	return strings.Join(parts, "\n")
}
