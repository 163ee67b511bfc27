package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal Telegram Bot API client covering exactly what the
// bot needs: long polling, sending, deleting and member restriction.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient creates a Client for the given bot token.
func NewClient(httpClient *http.Client, token string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		http:    httpClient,
		baseURL: "https://api.telegram.org",
		token:   token,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

// call posts a JSON payload to one Bot API method and unmarshals the
// result envelope into out (when out is non-nil).
func (c *Client) call(ctx context.Context, method string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: encode request: %w", method, err)
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("telegram %s: http %d: %s", method, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if !envelope.OK {
		return fmt.Errorf("telegram %s: %s", method, envelope.Description)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for new updates starting at offset and returns
// them with the next offset to use.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, int64, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout+5*time.Second)
	defer cancel()

	var updates []Update
	payload := map[string]interface{}{
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "channel_post"},
	}
	if offset > 0 {
		payload["offset"] = offset
	}
	if err := c.call(reqCtx, "getUpdates", payload, &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

// SendMessage sends text to a chat and returns the new message id.
// Markdown can be picky about generated text, so it tries Markdown
// formatting first and falls back to plain text.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("telegram sendMessage: empty text")
	}
	if id, err := c.sendMessageWithParseMode(ctx, chatID, text, "Markdown"); err == nil {
		return id, nil
	}
	return c.sendMessageWithParseMode(ctx, chatID, text, "")
}

func (c *Client) sendMessageWithParseMode(ctx context.Context, chatID int64, text, parseMode string) (int64, error) {
	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	var sent Message
	if err := c.call(ctx, "sendMessage", payload, &sent); err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// DeleteMessage removes a message. Telegram reports an error when the
// message is already gone; callers treat that as a no-op.
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return c.call(ctx, "deleteMessage", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
	}, nil)
}

// RestrictMember revokes sending permissions for a group member until the
// given time.
func (c *Client) RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	return c.call(ctx, "restrictChatMember", map[string]interface{}{
		"chat_id":     chatID,
		"user_id":     userID,
		"permissions": ChatPermissions{},
		"until_date":  until.Unix(),
	}, nil)
}

// SetWebhook registers the webhook URL for this bot.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	if err := c.call(ctx, "setWebhook", map[string]interface{}{
		"url":             url,
		"allowed_updates": []string{"message", "channel_post"},
	}, nil); err != nil {
		return err
	}
	log.Printf("INFO: [Telegram] Webhook registered at %s.", url)
	return nil
}

// DeleteWebhook removes a previously registered webhook so long polling
// can take over.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", map[string]interface{}{}, nil)
}
