package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tgwatch/tgwatch/internal/errs"
)

// BotAPI is a minimal client over the Telegram Bot HTTP API's sendMessage,
// getMe and setWebhook methods. The API is a small, fixed JSON-over-HTTPS
// surface with no client library in use anywhere in the retrieved pack, so
// it is built directly on net/http rather than adopting a dependency for
// three calls.
type BotAPI struct {
	baseURL string
	hc      *http.Client
}

func NewBotAPI(token string) *BotAPI {
	return &BotAPI{
		baseURL: fmt.Sprintf("https://api.telegram.org/bot%s", token),
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Parameters  struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

// SendMessage posts a text message to chatID, formatted MarkdownV2.
func (b *BotAPI) SendMessage(ctx context.Context, chatID, text string) error {
	return b.call(ctx, "sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "MarkdownV2",
	})
}

// GetMe probes bot credentials, used by the bot "test" control endpoint.
func (b *BotAPI) GetMe(ctx context.Context) error {
	return b.call(ctx, "getMe", nil)
}

// SetWebhook registers the inbound webhook URL.
func (b *BotAPI) SetWebhook(ctx context.Context, url string) error {
	return b.call(ctx, "setWebhook", map[string]any{"url": url})
}

func (b *BotAPI) call(ctx context.Context, method string, body map[string]any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errs.WrapInternal(err, "encoding bot api request")
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/"+method, reader)
	if err != nil {
		return errs.WrapInternal(err, "building bot api request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := b.hc.Do(req)
	if err != nil {
		return errs.WrapUpstreamTransient(err, "calling bot api")
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return errs.WrapUpstreamTransient(err, "decoding bot api response")
	}
	if decoded.OK {
		return nil
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return errs.WrapUpstreamTransient(fmt.Errorf("%s: %s", method, decoded.Description), "bot api transient error")
	default:
		return errs.WrapUpstreamPermanent(fmt.Errorf("%s: %s", method, decoded.Description), "bot api permanent error")
	}
}
