package figurine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/usecases/figurine/texts"
)

func fakeImages(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte{byte(i)}
	}
	return out
}

func TestBuildPlan_ImageCap(t *testing.T) {
	custom := Request{Mode: domain.ModeCustom, Prompt: "make it shiny"}

	tests := []struct {
		name      string
		images    int
		multi     bool
		max       int
		wantCount int
		truncated bool
	}{
		{name: "multi under cap", images: 3, multi: true, max: 5, wantCount: 3},
		{name: "multi over cap", images: 7, multi: true, max: 5, wantCount: 5, truncated: true},
		{name: "single image backend", images: 3, multi: false, max: 5, wantCount: 1, truncated: true},
		{name: "cap floored to one", images: 2, multi: true, max: 0, wantCount: 1, truncated: true},
		{name: "text only custom", images: 0, multi: true, max: 5, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, ok := BuildPlan(custom, fakeImages(tt.images), tt.multi, tt.max)
			require.True(t, ok)
			assert.Len(t, plan.Images, tt.wantCount)

			progress := texts.CustomProgress(tt.wantCount, "make it sh...")
			if tt.truncated {
				require.Len(t, plan.Notices, 2)
				assert.Equal(t, texts.Truncated(tt.images, tt.wantCount), plan.Notices[0])
				assert.Equal(t, progress, plan.Notices[1])
			} else {
				assert.Equal(t, []string{progress}, plan.Notices)
			}
		})
	}
}

func TestBuildPlan_PresetNeedsImage(t *testing.T) {
	plan, ok := BuildPlan(Request{Mode: domain.ModePreset, Key: "手办化"}, nil, true, 5)

	assert.False(t, ok)
	assert.Equal(t, []string{texts.SendOrQuoteImage}, plan.Notices)
}

func TestHandleMessage_PresetSuccessConsumesQuota(t *testing.T) {
	h := newHarness(t, defaultConfig())

	err := h.svc.HandleMessage(context.Background(), privateMsg("alice", "手办化"))
	require.NoError(t, err)

	assert.Equal(t, 1, h.generator.calls)
	assert.Equal(t, "make a figurine", h.generator.prompt)
	assert.Equal(t, []string{texts.PresetProgress("手办化")}, h.messenger.texts)
	require.Len(t, h.messenger.images, 1)
	assert.Equal(t, "https://cdn.example/out.png", h.messenger.images[0].url)
	assert.Equal(t, "✅ 生成成功 (1.50s) | 预设: 手办化 | 个人剩余: 1", h.messenger.images[0].caption)
	assert.Equal(t, 1, h.users.Get("alice"))
}

func TestHandleMessage_FailureKeepsQuota(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.generator.result = domain.Failure(strings.Repeat("x", 600))

	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("alice", "手办化")))

	assert.Equal(t, 2, h.users.Get("alice"))
	assert.Empty(t, h.messenger.images)
	assert.Equal(t, texts.GenerationFailed(1500_000_000, strings.Repeat("x", 500)), h.messenger.last())
}

func TestHandleMessage_NotAddressedIgnored(t *testing.T) {
	h := newHarness(t, defaultConfig())
	msg := groupMsg("alice", "g1", "手办化")
	msg.Addressed = false

	require.NoError(t, h.svc.HandleMessage(context.Background(), msg))
	assert.Zero(t, h.generator.calls)
	assert.Empty(t, h.messenger.texts)

	h.svc.Cfg.Prefix = false
	require.NoError(t, h.svc.HandleMessage(context.Background(), msg))
	assert.Equal(t, 1, h.generator.calls)
}

func TestHandleMessage_UnknownTextIgnored(t *testing.T) {
	h := newHarness(t, defaultConfig())

	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("alice", "hello there")))
	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("alice", "bnn")))

	assert.Zero(t, h.generator.calls)
	assert.Empty(t, h.messenger.texts)
}

func TestHandleMessage_QuotaExhausted(t *testing.T) {
	cfg := defaultConfig()
	cfg.EnableGroupLimit = true
	h := newHarness(t, cfg)

	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("bob", "手办化")))
	assert.Equal(t, texts.UserExhausted, h.messenger.last())

	require.NoError(t, h.svc.HandleMessage(context.Background(), groupMsg("bob", "g1", "手办化")))
	assert.Equal(t, texts.GroupAndUserExhausted, h.messenger.last())
	assert.Zero(t, h.generator.calls)
}

func TestHandleMessage_GroupQuotaUsedWhenUserEmpty(t *testing.T) {
	cfg := defaultConfig()
	cfg.EnableGroupLimit = true
	h := newHarness(t, cfg)
	h.groups.counts["g1"] = 4

	require.NoError(t, h.svc.HandleMessage(context.Background(), groupMsg("bob", "g1", "手办化")))

	assert.Equal(t, 3, h.groups.Get("g1"))
	assert.Equal(t, 0, h.users.Get("bob"))
	require.Len(t, h.messenger.images, 1)
	assert.Equal(t, "✅ 生成成功 (1.50s) | 预设: 手办化 | 个人剩余: 0 | 群组剩余: 3", h.messenger.images[0].caption)
}

func TestHandleMessage_BlacklistSilent(t *testing.T) {
	cfg := defaultConfig()
	cfg.UserBlacklist = []string{"alice"}
	h := newHarness(t, cfg)

	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("alice", "手办化")))
	assert.Empty(t, h.messenger.texts)
	assert.Zero(t, h.generator.calls)
}

func TestHandleMessage_PresetWithoutImage(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.resolver.images = nil

	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("alice", "手办化")))
	assert.Equal(t, []string{texts.SendOrQuoteImage}, h.messenger.texts)
	assert.Zero(t, h.generator.calls)
}

func TestHandleMessage_CustomPromptMultiImage(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxMultiImages = 2
	h := newHarness(t, cfg)
	h.generator.multi = true
	h.resolver.images = fakeImages(3)

	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("admin", "bnn  turn these into a poster")))

	assert.Equal(t, "turn these into a poster", h.generator.prompt)
	assert.Len(t, h.generator.images, 2)
	assert.Equal(t, []string{
		texts.Truncated(3, 2),
		texts.CustomProgress(2, "turn these..."),
	}, h.messenger.texts)
	require.Len(t, h.messenger.images, 1)
	assert.Equal(t, "✅ 生成成功 (1.50s) | 预设: turn these... | 剩余次数: ∞", h.messenger.images[0].caption)
}

func TestHandleMessage_SendImageFallback(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.messenger.imageErr = errors.New("upload failed")

	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("alice", "手办化")))
	assert.Equal(t, "✅ 生成成功 (1.50s) | 预设: 手办化 | 个人剩余: 1\nhttps://cdn.example/out.png", h.messenger.last())
}

func TestTextToImage(t *testing.T) {
	h := newHarness(t, defaultConfig())

	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("alice", "文生图")))
	assert.Equal(t, texts.TextToImageUsage, h.messenger.last())

	prompt := "一只在月球上弹吉他的橘猫，背景是地球升起的景象"
	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("alice", "文生图 "+prompt)))
	assert.Equal(t, prompt, h.generator.prompt)
	assert.Empty(t, h.generator.images)
	assert.Contains(t, h.messenger.texts, texts.TextToImageProgress(string([]rune(prompt)[:20])+"..."))
	require.Len(t, h.messenger.images, 1)
	assert.Equal(t, "✅ 生成成功 (1.50s) | 个人剩余: 1", h.messenger.images[0].caption)
}

func TestTextToImage_VisibleDenials(t *testing.T) {
	cfg := defaultConfig()
	cfg.GroupBlacklist = []string{"g-bad"}
	h := newHarness(t, cfg)

	require.NoError(t, h.svc.HandleMessage(context.Background(), groupMsg("alice", "g-bad", "文生图 cat")))
	assert.Equal(t, texts.T2IGroupBlacklisted, h.messenger.last())

	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("bob", "文生图 cat")))
	assert.Equal(t, texts.T2IUserEmpty, h.messenger.last())
	assert.Zero(t, h.generator.calls)
}

func TestGenerate_RecordsSideEffects(t *testing.T) {
	h := newHarness(t, defaultConfig())
	journal := &fakeJournal{}
	events := &fakeEvents{}
	alerter := &fakeAlerter{}
	archive := &fakeArchive{files: map[string][]byte{}}
	h.svc.SetGenerationRepo(journal)
	h.svc.SetEventProducer(events)
	h.svc.SetAlerterService(alerter)
	h.svc.SetArchive(archive, &staticFetcher{data: []byte("\x89PNG\r\n\x1a\n0000")})

	require.NoError(t, h.svc.HandleMessage(context.Background(), groupMsg("alice", "g1", "手办化")))

	require.Len(t, journal.created, 1)
	g := journal.created[0]
	assert.Equal(t, domain.GenerationSucceeded, g.Status)
	assert.Equal(t, domain.ModePreset, g.Mode)
	assert.Equal(t, "fake", g.Backend)
	require.NotNil(t, g.GroupID)
	assert.Equal(t, "g1", *g.GroupID)
	require.NotNil(t, g.ArchiveKey)
	assert.True(t, strings.HasPrefix(*g.ArchiveKey, "generations/2026/03/01/"))
	assert.True(t, strings.HasSuffix(*g.ArchiveKey, ".png"))
	assert.Contains(t, archive.files, *g.ArchiveKey)
	assert.Len(t, events.sent, 1)
	assert.Empty(t, alerter.messages)

	h.generator.result = domain.Failure("请求超时")
	require.NoError(t, h.svc.HandleMessage(context.Background(), groupMsg("alice", "g1", "手办化")))

	require.Len(t, journal.created, 2)
	assert.Equal(t, domain.GenerationFailed, journal.created[1].Status)
	require.Len(t, alerter.messages, 1)
	assert.Contains(t, alerter.messages[0], "请求超时")
	assert.Len(t, archive.files, 1)
}

func TestGenerate_NoGenerator(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.svc.Generator = nil

	require.NoError(t, h.svc.HandleMessage(context.Background(), privateMsg("alice", "手办化")))
	assert.Contains(t, h.messenger.last(), texts.GeneratorNotReady)
	assert.Equal(t, 2, h.users.Get("alice"))
}
