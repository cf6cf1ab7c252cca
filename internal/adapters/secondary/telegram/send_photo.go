package telegram

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
)

// SendPhotoRequest отправка фото байтами (multipart) или ссылкой
type SendPhotoRequest struct {
	ChatID    int64
	Photo     []byte
	Filename  string
	PhotoURL  string
	Caption   string
	ReplyToID int64
}

// SendPhoto отправляет фото. Если задан PhotoURL, Telegram скачивает его сам.
func (c *Client) SendPhoto(ctx context.Context, req SendPhotoRequest) (int64, error) {
	if req.PhotoURL != "" {
		return c.sendPhotoByURL(ctx, req)
	}
	return c.sendPhotoMultipart(ctx, req)
}

func (c *Client) sendPhotoByURL(ctx context.Context, req SendPhotoRequest) (int64, error) {
	payload := struct {
		ChatID          int64            `json:"chat_id"`
		Photo           string           `json:"photo"`
		Caption         string           `json:"caption,omitempty"`
		ReplyParameters *ReplyParameters `json:"reply_parameters,omitempty"`
	}{
		ChatID:          req.ChatID,
		Photo:           req.PhotoURL,
		Caption:         req.Caption,
		ReplyParameters: ReplyTo(req.ReplyToID),
	}

	var sent SentMessage
	if err := c.call(ctx, "sendPhoto", payload, &sent); err != nil {
		c.log.Error("failed to send photo by url", "error", err, "chat_id", req.ChatID)
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) sendPhotoMultipart(ctx context.Context, req SendPhotoRequest) (int64, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"chat_id": strconv.FormatInt(req.ChatID, 10),
	}
	if req.Caption != "" {
		fields["caption"] = req.Caption
	}
	if req.ReplyToID != 0 {
		fields["reply_parameters"] = fmt.Sprintf(`{"message_id":%d,"allow_sending_without_reply":true}`, req.ReplyToID)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	filename := req.Filename
	if filename == "" {
		filename = "image.png"
	}
	part, err := writer.CreateFormFile("photo", filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create photo form file: %w", err)
	}
	if _, err := part.Write(req.Photo); err != nil {
		return 0, fmt.Errorf("failed to write photo data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendPhoto"), &body)
	if err != nil {
		return 0, fmt.Errorf("telegram create request failed [chat_id=%d]: %w", req.ChatID, err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	c.log.Debug("sending photo to telegram",
		"chat_id", req.ChatID,
		"filename", filename,
		"photo_size", len(req.Photo))

	var sent SentMessage
	if err := c.do(httpReq, "sendPhoto", &sent); err != nil {
		c.log.Error("failed to send photo", "error", err, "chat_id", req.ChatID)
		return 0, err
	}
	return sent.MessageID, nil
}

// ReplyTo nil для messageID == 0
func ReplyTo(messageID int64) *ReplyParameters {
	if messageID == 0 {
		return nil
	}
	return &ReplyParameters{MessageID: messageID, AllowSendingWithoutReply: true}
}
