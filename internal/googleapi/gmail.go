package googleapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

const defaultGmailBase = "https://gmail.googleapis.com/gmail/v1"

type Gmail struct {
	client
}

func NewGmail(cfg Config) *Gmail {
	return &Gmail{client: newClient(cfg, defaultGmailBase)}
}

// MessageSummary is the normalized shape handed back to synthesis. Gmail's
// list endpoint only returns ids; details come from per-message gets, and
// missing headers normalize to empty strings.
type MessageSummary struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Subject string `json:"subject"`
	From    string `json:"from"`
}

type SendResult struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

type messageList struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type messageDetail struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Payload struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
	} `json:"payload"`
}

func (g *Gmail) ListMessages(ctx context.Context, accessToken, query string) ([]MessageSummary, error) {
	if strings.TrimSpace(query) == "" {
		query = "is:unread"
	}
	var list messageList
	path := fmt.Sprintf("/users/me/messages?q=%s&maxResults=5", url.QueryEscape(query))
	if err := g.doJSON(ctx, "GET", path, accessToken, nil, &list); err != nil {
		return nil, err
	}

	summaries := make([]MessageSummary, 0, len(list.Messages))
	for _, item := range list.Messages {
		var detail messageDetail
		if err := g.doJSON(ctx, "GET", "/users/me/messages/"+url.PathEscape(item.ID), accessToken, nil, &detail); err != nil {
			return nil, err
		}
		summary := MessageSummary{ID: detail.ID, Snippet: detail.Snippet}
		for _, header := range detail.Payload.Headers {
			switch header.Name {
			case "Subject":
				summary.Subject = header.Value
			case "From":
				summary.From = header.Value
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (g *Gmail) SendMessage(ctx context.Context, accessToken, to, subject, body string) (SendResult, error) {
	raw := strings.Join([]string{
		"To: " + to,
		"Subject: " + subject,
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	payload := map[string]string{
		"raw": base64.RawURLEncoding.EncodeToString([]byte(raw)),
	}
	var result SendResult
	if err := g.doJSON(ctx, "POST", "/users/me/messages/send", accessToken, payload, &result); err != nil {
		return SendResult{}, err
	}
	return result, nil
}
