package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/client-go/util/retry"
)

// DefaultTelegramURL is the Bot API endpoint.
const DefaultTelegramURL = "https://api.telegram.org"

// TelegramOptions configures a Telegram notifier. Token and ChatID are required.
type TelegramOptions struct {
	BaseURL    string
	Token      string
	ChatID     int64
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Telegram sends messages to a chat through a bot.
type Telegram struct {
	baseURL string
	token   string
	chatID  int64
	client  *http.Client
	log     logr.Logger
}

var _ Notifier = (*Telegram)(nil)

// NewTelegram creates a Telegram notifier.
func NewTelegram(log logr.Logger, opts TelegramOptions) (*Telegram, error) {
	if opts.Token == "" {
		return nil, errors.New("telegram: missing bot token")
	}
	if opts.ChatID == 0 {
		return nil, errors.New("telegram: missing chat id")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultTelegramURL
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Telegram{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   opts.Token,
		chatID:  opts.ChatID,
		client:  client,
		log:     log,
	}, nil
}

// sendError is a failed sendMessage call. Retryable marks failures worth
// another attempt: transport errors, 429 and 5xx.
type sendError struct {
	status    int
	msg       string
	retryable bool
}

func (e *sendError) Error() string {
	if e.status == 0 {
		return "telegram: sendMessage: " + e.msg
	}
	return fmt.Sprintf("telegram: sendMessage returned status %d: %s", e.status, e.msg)
}

func isRetryable(err error) bool {
	var se *sendError
	return errors.As(err, &se) && se.retryable
}

// Notify sends message to the configured chat, retrying transient failures
// with client-go's default backoff.
func (t *Telegram) Notify(ctx context.Context, message string) error {
	attempt := 0
	err := retry.OnError(retry.DefaultBackoff, isRetryable, func() error {
		attempt++
		if attempt > 1 {
			t.log.V(1).Info("retrying telegram message", "attempt", attempt)
		}
		return t.send(ctx, message)
	})
	if err != nil {
		return err
	}
	t.log.Info("telegram message sent", "chatID", t.chatID)
	return nil
}

func (t *Telegram) send(ctx context.Context, message string) error {
	data, err := json.Marshal(map[string]interface{}{
		"chat_id": t.chatID,
		"text":    message,
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal request body: %w", err)
	}

	url := t.baseURL + "/bot" + t.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// The URL holds the bot token; keep it out of the error text.
		return &sendError{msg: "request failed", retryable: ctx.Err() == nil}
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(body, &result)

	if resp.StatusCode != http.StatusOK || !result.OK {
		desc := result.Description
		if desc == "" {
			desc = strings.TrimSpace(string(body))
		}
		return &sendError{
			status:    resp.StatusCode,
			msg:       desc,
			retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}
	return nil
}
