package onebot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ob "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/onebot"
	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/pkg/logger"
)

type sentCall struct {
	group   bool
	id      int64
	message []ob.OutSegment
}

type fakeAPI struct {
	mu     sync.Mutex
	self   int64
	stored map[string]*ob.StoredMessage
	sent   []sentCall
}

func (f *fakeAPI) Run(ctx context.Context, _ ob.EventHandler) error {
	<-ctx.Done()
	return nil
}

func (f *fakeAPI) SelfID() int64 { return f.self }

func (f *fakeAPI) GetMsg(_ context.Context, id string) (*ob.StoredMessage, error) {
	if m, ok := f.stored[id]; ok {
		return m, nil
	}
	return nil, errors.New("message not found")
}

func (f *fakeAPI) SendGroupMsg(_ context.Context, groupID int64, message []ob.OutSegment) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentCall{group: true, id: groupID, message: message})
	return "1", nil
}

func (f *fakeAPI) SendPrivateMsg(_ context.Context, userID int64, message []ob.OutSegment) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentCall{id: userID, message: message})
	return "1", nil
}

type recordingBot struct {
	messages []*domain.Message
}

func (b *recordingBot) HandleMessage(_ context.Context, msg *domain.Message) error {
	b.messages = append(b.messages, msg)
	return nil
}

func newTestService() (*Service, *fakeAPI, *recordingBot) {
	api := &fakeAPI{self: 999, stored: map[string]*ob.StoredMessage{}}
	s := New(api, inmemory.NewDedupCache(16), []string{"/", "#"}, logger.Discard())
	bot := &recordingBot{}
	s.SetBotService(bot)
	return s, api, bot
}

func TestToMessage_GroupAtSelfWithReply(t *testing.T) {
	s, api, _ := newTestService()
	api.stored["41"] = &ob.StoredMessage{
		MessageID: "41",
		Segments: []ob.Segment{
			{Type: ob.SegmentText, Text: "look"},
			{Type: ob.SegmentImage, URL: "https://img.example/q.png", File: "q.png"},
		},
	}

	msg := s.toMessage(context.Background(), &ob.Event{
		MessageType: "group",
		MessageID:   "42",
		UserID:      10001,
		GroupID:     20002,
		SelfID:      999,
		Sender:      ob.Sender{Nickname: "nick"},
		Segments: []ob.Segment{
			{Type: ob.SegmentReply, ReplyID: "41"},
			{Type: ob.SegmentAt, QQ: "999"},
			{Type: ob.SegmentText, Text: " 手办化 "},
			{Type: ob.SegmentAt, QQ: "30003"},
		},
	})

	require.NotNil(t, msg)
	assert.True(t, msg.Addressed)
	assert.Equal(t, "手办化", msg.Text)
	assert.Equal(t, "20002", msg.ChatID)
	assert.Equal(t, "20002", msg.GroupID)
	assert.Equal(t, "nick", msg.SenderName)

	require.Len(t, msg.Segments, 3)
	assert.Equal(t, domain.SegmentText, msg.Segments[0].Type)
	assert.Equal(t, domain.Segment{Type: domain.SegmentMention, UserID: "30003"}, msg.Segments[1])
	require.Equal(t, domain.SegmentQuote, msg.Segments[2].Type)
	assert.Equal(t, "https://img.example/q.png", msg.Segments[2].Quoted[0].ImageURL)
}

func TestToMessage_TextSplitByImage(t *testing.T) {
	s, _, _ := newTestService()

	msg := s.toMessage(context.Background(), &ob.Event{
		MessageType: "group",
		MessageID:   "7",
		UserID:      10001,
		GroupID:     20002,
		Segments: []ob.Segment{
			{Type: ob.SegmentText, Text: "bnn "},
			{Type: ob.SegmentImage, URL: "https://img.example/a.png"},
			{Type: ob.SegmentText, Text: " 变成手办"},
		},
	})

	require.NotNil(t, msg)
	assert.Equal(t, []string{"bnn", "变成手办"}, strings.Fields(msg.Text))
}

func TestToMessage_WakePrefix(t *testing.T) {
	s, _, _ := newTestService()

	msg := s.toMessage(context.Background(), &ob.Event{
		MessageType: "group",
		MessageID:   "1",
		UserID:      10001,
		GroupID:     20002,
		Segments:    []ob.Segment{{Type: ob.SegmentText, Text: "#手办化签到"}},
	})
	require.NotNil(t, msg)
	assert.True(t, msg.Addressed)
	assert.Equal(t, "手办化签到", msg.Text)

	msg = s.toMessage(context.Background(), &ob.Event{
		MessageType: "group",
		MessageID:   "2",
		UserID:      10001,
		GroupID:     20002,
		Segments:    []ob.Segment{{Type: ob.SegmentText, Text: "手办化签到"}},
	})
	require.NotNil(t, msg)
	assert.False(t, msg.Addressed)
}

func TestToMessage_PrivateAndSelf(t *testing.T) {
	s, _, _ := newTestService()

	msg := s.toMessage(context.Background(), &ob.Event{
		MessageType: "private",
		MessageID:   "3",
		UserID:      10001,
		Segments:    []ob.Segment{{Type: ob.SegmentText, Text: "lmh"}},
	})
	require.NotNil(t, msg)
	assert.True(t, msg.Addressed)
	assert.Equal(t, "10001", msg.ChatID)
	assert.False(t, msg.IsGroup())

	assert.Nil(t, s.toMessage(context.Background(), &ob.Event{MessageType: "private", UserID: 999}))
}

func TestHandleEvent_Dedup(t *testing.T) {
	s, _, bot := newTestService()
	event := &ob.Event{
		MessageType: "private",
		MessageID:   "5",
		UserID:      10001,
		SelfID:      999,
		Segments:    []ob.Segment{{Type: ob.SegmentText, Text: "lmh"}},
	}

	s.HandleEvent(context.Background(), event)
	s.HandleEvent(context.Background(), event)

	assert.Len(t, bot.messages, 1)
}

func TestSender(t *testing.T) {
	s, api, _ := newTestService()
	ctx := context.Background()

	group := domain.ChatRef{Platform: domain.PlatformOneBot, ChatID: "20002", IsGroup: true, ReplyTo: "42"}
	require.NoError(t, s.SendText(ctx, group, "ok"))
	require.NoError(t, s.SendImage(ctx, domain.ChatRef{Platform: domain.PlatformOneBot, ChatID: "10001"},
		domain.OutboundImage{Data: []byte("png")}, "caption"))

	require.Len(t, api.sent, 2)
	assert.True(t, api.sent[0].group)
	assert.Equal(t, int64(20002), api.sent[0].id)
	assert.Equal(t, []ob.OutSegment{ob.ReplySegment("42"), ob.TextSegment("ok")}, api.sent[0].message)

	assert.False(t, api.sent[1].group)
	assert.Equal(t, []ob.OutSegment{ob.ImageSegment("base64://cG5n"), ob.TextSegment("caption")}, api.sent[1].message)

	err := s.SendText(ctx, domain.ChatRef{Platform: domain.PlatformTelegram, ChatID: "1"}, "x")
	assert.ErrorIs(t, err, domain.ErrUnknownPlatform)
}
