package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"SignalRelay/internal/domain/models"
	drepo "SignalRelay/internal/domain/repository"
	xlogger "SignalRelay/pkg/logger"
)

// Client implements a Transport backed by the Telegram Bot API over
// HTTP long polling. Connect performs the getMe handshake; Read long
// polls getUpdates until a fatal error, which is pushed on the error
// channel. Reconnection policy belongs to the supervisor.
type Client struct {
	token       string
	apiURL      string
	pollTimeout time.Duration

	httpClient *http.Client
	pollClient *http.Client

	offsets drepo.OffsetStore
	logger  *xlogger.Logger

	offset    int64
	connected bool
	username  string
}

// Option configures the client.
type Option func(*Client)

// WithOffsetStore attaches a persistent update-offset store.
func WithOffsetStore(s drepo.OffsetStore) Option {
	return func(c *Client) { c.offsets = s }
}

// New creates a Telegram transport client. apiURL is the API host
// (https://api.telegram.org in production, an httptest server in tests).
func New(token, apiURL string, pollTimeout time.Duration, logger *xlogger.Logger, opts ...Option) *Client {
	c := &Client{
		token:       token,
		apiURL:      apiURL,
		pollTimeout: pollTimeout,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		// poll client must outlive the server-side long-poll window
		pollClient: &http.Client{Timeout: pollTimeout + 5*time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type wireMessage struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	Text    string `json:"text"`
	Caption string `json:"caption"`
	Date    int64  `json:"date"`
}

type wireUpdate struct {
	UpdateID    int64        `json:"update_id"`
	Message     *wireMessage `json:"message"`
	ChannelPost *wireMessage `json:"channel_post"`
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)
}

// Connect verifies the bot credential with getMe and restores the last
// processed update offset if an offset store is configured.
func (c *Client) Connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getMe"), nil)
	if err != nil {
		return fmt.Errorf("telegram getMe request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	defer resp.Body.Close()

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return fmt.Errorf("telegram getMe decode: %w", err)
	}
	if !ar.OK {
		return fmt.Errorf("telegram getMe rejected: %s", ar.Description)
	}

	var me struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(ar.Result, &me); err == nil {
		c.username = me.Username
	}

	if c.offsets != nil {
		if off, err := c.offsets.Load(ctx); err != nil {
			c.logger.Warn("offset restore failed", xlogger.Error(err))
		} else if off > c.offset {
			c.offset = off
		}
	}

	c.connected = true
	c.logger.Info("telegram connected", xlogger.String("username", c.username), xlogger.Int64("offset", c.offset))
	return nil
}

// Send delivers text to the given chat via sendMessage.
func (c *Client) Send(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("telegram send marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return fmt.Errorf("telegram send decode: %w", err)
	}
	if !ar.OK {
		return fmt.Errorf("telegram send rejected: %s", ar.Description)
	}
	return nil
}

// Read streams inbound messages and fatal transport errors. The
// message channel is closed when the receive loop ends.
func (c *Client) Read(ctx context.Context) (<-chan *models.InboundMessage, <-chan error) {
	msgs := make(chan *models.InboundMessage, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(msgs)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			updates, err := c.poll(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				errs <- err
				return
			}

			for _, u := range updates {
				if m := c.toInbound(u); m != nil {
					select {
					case msgs <- m:
					case <-ctx.Done():
						return
					}
				}
				c.advance(ctx, u.UpdateID+1)
			}
		}
	}()

	return msgs, errs
}

func (c *Client) poll(ctx context.Context) ([]wireUpdate, error) {
	q := url.Values{}
	q.Set("offset", strconv.FormatInt(c.offset, 10))
	q.Set("timeout", strconv.Itoa(int(c.pollTimeout/time.Second)))
	q.Set("allowed_updates", `["message","channel_post"]`)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates request: %w", err)
	}
	resp, err := c.pollClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates: %w", err)
	}
	defer resp.Body.Close()

	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("telegram getUpdates decode: %w", err)
	}
	if !ar.OK {
		return nil, fmt.Errorf("telegram getUpdates rejected: %s", ar.Description)
	}

	var updates []wireUpdate
	if err := json.Unmarshal(ar.Result, &updates); err != nil {
		return nil, fmt.Errorf("telegram getUpdates result: %w", err)
	}
	return updates, nil
}

func (c *Client) toInbound(u wireUpdate) *models.InboundMessage {
	msg := u.Message
	if msg == nil {
		msg = u.ChannelPost
	}
	if msg == nil {
		return nil
	}
	received := time.Now()
	if msg.Date > 0 {
		received = time.Unix(msg.Date, 0)
	}
	return &models.InboundMessage{
		UpdateID:   u.UpdateID,
		ChatID:     strconv.FormatInt(msg.Chat.ID, 10),
		Text:       msg.Text,
		Caption:    msg.Caption,
		ReceivedAt: received,
	}
}

func (c *Client) advance(ctx context.Context, next int64) {
	if next <= c.offset {
		return
	}
	c.offset = next
	if c.offsets == nil {
		return
	}
	if err := c.offsets.Store(ctx, next); err != nil {
		c.logger.Warn("offset persist failed", xlogger.Error(err))
	}
}

// Close tears down the transport. Idempotent and best-effort.
func (c *Client) Close() error {
	c.connected = false
	c.httpClient.CloseIdleConnections()
	c.pollClient.CloseIdleConnections()
	return nil
}

// IsConnected indicates handshake status.
func (c *Client) IsConnected() bool { return c.connected }

// Username returns the bot username learned during the handshake.
func (c *Client) Username() string { return c.username }
