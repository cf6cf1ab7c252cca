package figurine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/usecases/figurine/texts"
)

func send(t *testing.T, h *harness, msg *domain.Message) string {
	t.Helper()
	require.NoError(t, h.svc.HandleMessage(context.Background(), msg))
	return h.messenger.last()
}

func TestCheckin(t *testing.T) {
	h := newHarness(t, defaultConfig())

	assert.Equal(t, texts.CheckinSuccess(3, 5), send(t, h, privateMsg("alice", "手办化签到")))
	assert.Equal(t, texts.AlreadyCheckedIn(5), send(t, h, privateMsg("alice", "手办化签到")))

	h.svc.Checkin = nil
	assert.Equal(t, texts.CheckinDisabled, send(t, h, privateMsg("bob", "手办化签到")))
}

func TestAdminCommands_SilentForNonAdmin(t *testing.T) {
	h := newHarness(t, defaultConfig())

	for _, text := range []string{"手办化增加用户次数 bob 5", "手办化key列表", "lm列表", "lm添加 a:b", "lma a:b"} {
		require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("alice", text)))
	}
	assert.Empty(t, h.messenger.texts)
	assert.Equal(t, 0, h.users.Get("bob"))
	_, ok := h.svc.Catalog.Lookup("a")
	assert.False(t, ok)
}

func TestGrantUser(t *testing.T) {
	h := newHarness(t, defaultConfig())

	assert.Equal(t, texts.UserGranted("10001", 5, 5), send(t, h, privateMsg("admin", "手办化增加用户次数 10001 5")))

	msg := privateMsg("admin", "手办化增加用户次数 @alice 3")
	msg.Segments = []domain.Segment{{Type: domain.SegmentMention, UserID: "alice"}}
	assert.Equal(t, texts.UserGranted("alice", 3, 5), send(t, h, msg))

	assert.Equal(t, texts.GrantUserUsage, send(t, h, privateMsg("admin", "手办化增加用户次数 10001")))
	assert.Equal(t, texts.GrantUserUsage, send(t, h, privateMsg("admin", "手办化增加用户次数 10001 0")))
}

func TestGrantGroup_NegativeID(t *testing.T) {
	h := newHarness(t, defaultConfig())

	assert.Equal(t, texts.GroupGranted("-100123", 10, 10), send(t, h, privateMsg("admin", "手办化增加群组次数 -100123 10")))
	assert.Equal(t, 10, h.groups.Get("-100123"))
	assert.Equal(t, texts.GrantGroupUsage, send(t, h, privateMsg("admin", "手办化增加群组次数 abc")))
}

func TestQueryCounts(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.groups.counts["g1"] = 7

	assert.Equal(t, texts.QueryCounts("alice", 2, true, -1), send(t, h, privateMsg("alice", "手办化查询次数")))
	assert.Equal(t, texts.QueryCounts("alice", 2, true, 7), send(t, h, groupMsg("alice", "g1", "手办化查询次数 10001")))
	assert.Equal(t, texts.QueryCounts("10001", 0, false, -1), send(t, h, privateMsg("admin", "手办化查询次数 10001")))

	msg := privateMsg("admin", "手办化查询次数")
	msg.Segments = []domain.Segment{{Type: domain.SegmentMention, UserID: "alice"}}
	assert.Equal(t, texts.QueryCounts("alice", 2, false, -1), send(t, h, msg))
}

func TestKeyCommands(t *testing.T) {
	h := newHarness(t, defaultConfig())

	assert.Equal(t, texts.KeysAdded(2, 3), send(t, h, privateMsg("admin", "手办化添加key sk-new-000000002222 sk-aaaaaaaaaaaa1111 sk-x sk-x")))
	assert.Equal(t, []string{"sk-aaaaaaaaaaaa1111", "sk-new-000000002222", "sk-x"}, h.svc.Keys.Keys())

	assert.Equal(t, texts.KeyList([]string{"sk-aaaaa...1111", "sk-new-0...2222", "sk-x...sk-x"}),
		send(t, h, privateMsg("admin", "手办化key列表")))

	assert.Equal(t, texts.KeyDeleted("sk-new-0"), send(t, h, privateMsg("admin", "手办化删除key 2")))
	assert.Equal(t, []string{"sk-aaaaaaaaaaaa1111", "sk-x"}, h.settings.settings.APIKeys)

	assert.Equal(t, texts.DeleteKeyUsage, send(t, h, privateMsg("admin", "手办化删除key 9")))
	assert.Equal(t, texts.DeleteKeyUsage, send(t, h, privateMsg("admin", "手办化删除key +1")))

	assert.Equal(t, texts.AllKeysDeleted(2), send(t, h, privateMsg("admin", "手办化删除key ALL")))
	assert.Empty(t, h.svc.Keys.Keys())
	assert.Equal(t, texts.NoKeys, send(t, h, privateMsg("admin", "手办化key列表")))
	assert.Equal(t, texts.AddKeyUsage, send(t, h, privateMsg("admin", "手办化添加key")))
}

func TestKeyCommands_SaveFailure(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.settings.saveErr = errDisk

	assert.Equal(t, texts.SaveFailed, send(t, h, privateMsg("admin", "手办化添加key sk-new")))
	assert.Contains(t, h.svc.Keys.Keys(), "sk-new")
}

func TestPromptCommands_SaveFailureAppliedInMemory(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.settings.saveErr = errDisk

	assert.Equal(t, texts.SaveFailed, send(t, h, privateMsg("admin", "lma 姿势表:pose sheet")))
	prompt, ok := h.svc.Catalog.Lookup("姿势表")
	require.True(t, ok)
	assert.Equal(t, "pose sheet", prompt)
	assert.Equal(t, h.settings.Get().PromptList, h.svc.Catalog.Entries())
}

func TestPromptCommands(t *testing.T) {
	h := newHarness(t, defaultConfig())

	assert.Equal(t, texts.PromptSaved("姿势表", "pose sheet"), send(t, h, privateMsg("admin", "lma 姿势表：pose sheet")))
	prompt, ok := h.svc.Catalog.Lookup("姿势表")
	require.True(t, ok)
	assert.Equal(t, "pose sheet", prompt)

	assert.Equal(t, texts.AddPromptUsage, send(t, h, privateMsg("admin", "lm添加 no colon")))

	assert.Equal(t, texts.PromptUpdated("Q版化", "tiny"), send(t, h, privateMsg("admin", "lm修改 Q版化:tiny")))
	assert.Equal(t, texts.PromptToUpdateNotFound("missing"), send(t, h, privateMsg("admin", "lm修改 missing:x")))

	assert.Equal(t, texts.PromptList([]string{"手办化:make a figurine", "Q版化:tiny", "姿势表:pose sheet"}),
		send(t, h, privateMsg("admin", "lm列表")))

	assert.Equal(t, texts.PromptDeleted("Q版化:tiny"), send(t, h, privateMsg("admin", "lm删除 Q版化")))
	assert.Equal(t, texts.PromptToDeleteNotFound("Q版化"), send(t, h, privateMsg("admin", "lm删除 Q版化")))
	assert.Equal(t, texts.DeletePromptUsage, send(t, h, privateMsg("admin", "lm删除")))

	_, ok = h.svc.Catalog.Lookup("Q版化")
	assert.False(t, ok)
}

func TestCommandBeatsPresetKey(t *testing.T) {
	h := newHarness(t, defaultConfig())
	require.NoError(t, h.svc.Catalog.AddOrUpdate("lmh", "shadowing prompt"))

	assert.Equal(t, texts.Help(), send(t, h, privateMsg("alice", "lmh")))
	assert.Zero(t, h.generator.calls)
}

func TestEffects(t *testing.T) {
	h := newHarness(t, defaultConfig())

	assert.Equal(t, texts.PresetOverview([]string{"Q版化", "手办化"}), send(t, h, privateMsg("alice", "lm效果")))
	assert.Equal(t, texts.PresetEffect("手办化", "make a figurine"), send(t, h, privateMsg("alice", "手办化效果 看看 手办化")))
	assert.Equal(t, texts.PresetNotFound("nope"), send(t, h, privateMsg("alice", "lm效果 nope")))
}

func TestQuotaOfAndGrant(t *testing.T) {
	h := newHarness(t, defaultConfig())

	total, err := h.svc.Grant(domain.ScopeGroup, "g1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	left, err := h.svc.QuotaOf(domain.ScopeUser, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	_, err = h.svc.QuotaOf("channel", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
	_, err = h.svc.Grant(domain.ScopeUser, "alice", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
