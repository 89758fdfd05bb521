// Package twilio handles both directions of the WhatsApp channel: parsing
// inbound webhook posts, rendering TwiML replies, and sending outbound
// messages through the REST API for flows that start on our side.
package twilio

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Inbound is one message lifted from a Twilio webhook post.
type Inbound struct {
	From string
	Body string
}

var ErrMissingSender = errors.New("inbound message has no sender")

// ParseInbound reads the form-encoded webhook payload. Twilio sends the
// WhatsApp sender as "whatsapp:+15551234567"; the prefix is kept so replies
// route back over the same channel.
func ParseInbound(r *http.Request) (Inbound, error) {
	if err := r.ParseForm(); err != nil {
		return Inbound{}, fmt.Errorf("parse webhook form: %w", err)
	}
	msg := Inbound{
		From: strings.TrimSpace(r.PostFormValue("From")),
		Body: strings.TrimSpace(r.PostFormValue("Body")),
	}
	if msg.From == "" {
		return Inbound{}, ErrMissingSender
	}
	return msg, nil
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// TwiML renders the reply envelope Twilio expects back from a webhook.
func TwiML(message string) ([]byte, error) {
	body, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		return nil, fmt.Errorf("render twiml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

type Config struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
	From       string
	Timeout    time.Duration
}

// Client sends proactive messages, used by the reminder sweep where no
// webhook is in flight to answer.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (c *Client) SendMessage(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("From", c.cfg.From)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf(
		"%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(c.cfg.AccountSID),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Error("twilio send rejected", "status", res.StatusCode, "body", strings.TrimSpace(string(respBody)))
		return fmt.Errorf("send message: status %d", res.StatusCode)
	}
	return nil
}
