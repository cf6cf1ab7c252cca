package onebot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var ErrNotConnected = errors.New("onebot websocket not connected")

// EventHandler вызывается в отдельной горутине на каждое событие message
type EventHandler func(ctx context.Context, event *Event)

// Client прямое (forward) websocket подключение к реализации OneBot v11
type Client struct {
	cfg *Config
	log *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn

	writeMu sync.Mutex

	waitMu  sync.Mutex
	waiters map[string]chan apiResponse

	echoCounter atomic.Int64
	selfID      atomic.Int64
}

func NewClient(cfg *Config, log *slog.Logger) *Client {
	return &Client{
		cfg:     cfg,
		log:     log,
		waiters: make(map[string]chan apiResponse),
	}
}

// SelfID id аккаунта бота, известен после первого события
func (c *Client) SelfID() int64 {
	return c.selfID.Load()
}

// Run держит подключение и читает события до отмены контекста
func (c *Client) Run(ctx context.Context, handler EventHandler) error {
	interval := c.cfg.ReconnectInterval
	if interval < time.Second {
		interval = time.Second
	}

	stop := context.AfterFunc(ctx, c.close)
	defer stop()

	c.log.Info("starting onebot client", "ws_url", c.cfg.WSURL)

	for {
		if err := c.connect(ctx); err != nil {
			c.log.Error("onebot connect failed", "error", err, "retry_in", interval)
		} else {
			c.listen(ctx, handler)
		}

		select {
		case <-ctx.Done():
			c.log.Info("onebot client stopped")
			return nil
		case <-time.After(interval):
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	header := http.Header{}
	if c.cfg.AccessToken != "" {
		header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.WSURL, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.WSURL, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.log.Info("onebot websocket connected")
	return nil
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Client) listen(ctx context.Context, handler EventHandler) {
	conn := c.current()
	if conn == nil {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.log.Error("onebot websocket read error", "error", err)
			}
			c.mu.Lock()
			if c.conn == conn {
				_ = conn.Close()
				c.conn = nil
			}
			c.mu.Unlock()
			return
		}

		var raw rawEvent
		if err := json.Unmarshal(payload, &raw); err != nil {
			c.log.Warn("failed to unmarshal onebot payload",
				"error", err,
				"payload", truncate(string(payload), 200),
			)
			continue
		}

		if raw.Echo != "" {
			c.dispatchResponse(payload)
			continue
		}

		if id, err := parseJSONInt64(raw.SelfID); err == nil && id != 0 {
			c.selfID.Store(id)
		}

		if raw.PostType != "message" {
			continue
		}

		event, err := parseEvent(&raw)
		if err != nil {
			c.log.Warn("failed to parse onebot message event", "error", err)
			continue
		}
		go handler(ctx, event)
	}
}

func (c *Client) dispatchResponse(payload []byte) {
	var resp apiResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		c.log.Warn("failed to unmarshal onebot api response", "error", err)
		return
	}

	c.waitMu.Lock()
	waiter := c.waiters[resp.Echo]
	c.waitMu.Unlock()
	if waiter == nil {
		return
	}

	select {
	case waiter <- resp:
	default:
	}
}

// CallAPI отправляет action и ждет ответа с тем же echo
func (c *Client) CallAPI(ctx context.Context, action string, params any) (json.RawMessage, error) {
	conn := c.current()
	if conn == nil {
		return nil, ErrNotConnected
	}

	timeout := c.cfg.APITimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	echo := action + ":" + strconv.FormatInt(c.echoCounter.Add(1), 10)
	waiter := make(chan apiResponse, 1)

	c.waitMu.Lock()
	c.waiters[echo] = waiter
	c.waitMu.Unlock()
	defer func() {
		c.waitMu.Lock()
		delete(c.waiters, echo)
		c.waitMu.Unlock()
	}()

	payload, err := json.Marshal(apiRequest{Action: action, Params: params, Echo: echo})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", action, err)
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to write %s request: %w", action, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-waiter:
		if resp.failed() {
			return nil, fmt.Errorf("onebot %s failed: %s", action, resp.reason())
		}
		return resp.Data, nil
	case <-timer.C:
		return nil, fmt.Errorf("onebot %s timeout after %s", action, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type sentMessage struct {
	MessageID json.RawMessage `json:"message_id"`
}

// SendGroupMsg возвращает message_id отправленного сообщения
func (c *Client) SendGroupMsg(ctx context.Context, groupID int64, message []OutSegment) (string, error) {
	data, err := c.CallAPI(ctx, "send_group_msg", map[string]any{
		"group_id": groupID,
		"message":  message,
	})
	if err != nil {
		return "", err
	}
	return decodeMessageID(data), nil
}

func (c *Client) SendPrivateMsg(ctx context.Context, userID int64, message []OutSegment) (string, error) {
	data, err := c.CallAPI(ctx, "send_private_msg", map[string]any{
		"user_id": userID,
		"message": message,
	})
	if err != nil {
		return "", err
	}
	return decodeMessageID(data), nil
}

// GetMsg загружает сообщение по id, нужен для разбора ответов (reply)
func (c *Client) GetMsg(ctx context.Context, messageID string) (*StoredMessage, error) {
	id, err := strconv.ParseInt(messageID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid message id %q: %w", messageID, err)
	}

	data, err := c.CallAPI(ctx, "get_msg", map[string]any{"message_id": id})
	if err != nil {
		return nil, err
	}

	var raw struct {
		MessageID  json.RawMessage `json:"message_id"`
		Sender     rawSender       `json:"sender"`
		Message    json.RawMessage `json:"message"`
		RawMessage string          `json:"raw_message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal get_msg data: %w", err)
	}

	return &StoredMessage{
		MessageID: parseJSONString(raw.MessageID),
		Sender:    parseSender(raw.Sender, 0),
		Segments:  parseMessage(raw.Message, raw.RawMessage),
	}, nil
}

func decodeMessageID(data json.RawMessage) string {
	var sent sentMessage
	if err := json.Unmarshal(data, &sent); err != nil {
		return ""
	}
	return parseJSONString(sent.MessageID)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
