package onebot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeImplementation отвечает на каждый action через respond и шлет push-события из events
func fakeImplementation(t *testing.T, token string, events []string, respond func(req map[string]any) map[string]any) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, event := range events {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(event)); err != nil {
				return
			}
		}

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req map[string]any
			if err := json.Unmarshal(payload, &req); err != nil {
				return
			}
			resp := respond(req)
			resp["echo"] = req["echo"]
			out, _ := json.Marshal(resp)
			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestClient_EventsAndAPICalls(t *testing.T) {
	events := []string{
		`{"post_type":"meta_event","meta_event_type":"lifecycle","self_id":999}`,
		`{"post_type":"message","message_type":"private","message_id":5,"user_id":10001,"self_id":999,"message":[{"type":"text","data":{"text":"手办化签到"}}]}`,
	}
	server := fakeImplementation(t, "secret", events, func(req map[string]any) map[string]any {
		switch req["action"] {
		case "send_private_msg":
			return map[string]any{"status": "ok", "retcode": 0, "data": map[string]any{"message_id": 77}}
		case "get_msg":
			return map[string]any{"status": "ok", "retcode": 0, "data": map[string]any{
				"message_id": 5,
				"sender":     map[string]any{"user_id": 10001, "nickname": "nick"},
				"message":    "[CQ:image,file=a.png,url=https://img.example/a.png]",
			}}
		default:
			return map[string]any{"status": "failed", "retcode": 1404, "wording": "unsupported"}
		}
	})
	defer server.Close()

	client := NewClient(&Config{
		WSURL:             wsURL(server),
		AccessToken:       "secret",
		ReconnectInterval: time.Second,
		APITimeout:        2 * time.Second,
	}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan *Event, 1)
	done := make(chan error, 1)
	go func() {
		done <- client.Run(ctx, func(_ context.Context, event *Event) {
			received <- event
		})
	}()

	var event *Event
	select {
	case event = <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
	assert.Equal(t, "5", event.MessageID)
	assert.Equal(t, int64(10001), event.UserID)
	assert.False(t, event.IsGroup())
	assert.Equal(t, int64(999), client.SelfID())

	id, err := client.SendPrivateMsg(ctx, 10001, []OutSegment{TextSegment("ok")})
	require.NoError(t, err)
	assert.Equal(t, "77", id)

	stored, err := client.GetMsg(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "nick", stored.Sender.DisplayName())
	require.Len(t, stored.Segments, 1)
	assert.Equal(t, "https://img.example/a.png", stored.Segments[0].URL)

	_, err = client.CallAPI(ctx, "unknown_action", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestClient_CallAPIWithoutConnection(t *testing.T) {
	client := NewClient(&Config{WSURL: "ws://127.0.0.1:1"}, testLogger())

	_, err := client.CallAPI(context.Background(), "get_login_info", nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestGetMsg_InvalidID(t *testing.T) {
	client := NewClient(&Config{}, testLogger())

	_, err := client.GetMsg(context.Background(), "abc")
	assert.Error(t, err)
}
