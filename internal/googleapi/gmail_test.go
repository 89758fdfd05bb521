package googleapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGmailListMessagesNormalizesHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			t.Fatalf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/users/me/messages/msg-1"):
			w.Write([]byte(`{"id":"msg-1","snippet":"see attached","payload":{"headers":[{"name":"Subject","value":"Q3 report"},{"name":"From","value":"jane@example.com"}]}}`))
		case strings.HasPrefix(r.URL.Path, "/users/me/messages/msg-2"):
			// No headers at all; fields normalize to empty strings.
			w.Write([]byte(`{"id":"msg-2","snippet":"hello","payload":{}}`))
		case strings.HasPrefix(r.URL.Path, "/users/me/messages"):
			if got := r.URL.Query().Get("q"); got != "is:unread" {
				t.Fatalf("expected default query is:unread, got %q", got)
			}
			w.Write([]byte(`{"messages":[{"id":"msg-1"},{"id":"msg-2"}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	gmail := NewGmail(Config{BaseURL: server.URL})
	messages, err := gmail.ListMessages(context.Background(), "token-1", "")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Subject != "Q3 report" || messages[0].From != "jane@example.com" {
		t.Fatalf("unexpected first message: %+v", messages[0])
	}
	if messages[1].Subject != "" || messages[1].From != "" {
		t.Fatalf("expected empty headers normalized, got %+v", messages[1])
	}
}

func TestGmailSendMessageEncodesRFC822(t *testing.T) {
	var raw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me/messages/send" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		raw = payload["raw"]
		w.Write([]byte(`{"id":"sent-1","threadId":"th-1"}`))
	}))
	defer server.Close()

	gmail := NewGmail(Config{BaseURL: server.URL})
	result, err := gmail.SendMessage(context.Background(), "token-1", "jane@example.com", "Q3 report", "Numbers attached.")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if result.ID != "sent-1" {
		t.Fatalf("unexpected send result: %+v", result)
	}

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("decode raw message: %v", err)
	}
	text := string(decoded)
	if !strings.Contains(text, "To: jane@example.com") || !strings.Contains(text, "Subject: Q3 report") {
		t.Fatalf("unexpected rfc822 message: %q", text)
	}
	if !strings.HasSuffix(text, "Numbers attached.") {
		t.Fatalf("expected body at end of message, got %q", text)
	}
}

func TestGmailRateLimitReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429}}`))
	}))
	defer server.Close()

	gmail := NewGmail(Config{BaseURL: server.URL})
	_, err := gmail.ListMessages(context.Background(), "token-1", "is:unread")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.ReasonCode() != "rate_limited" {
		t.Fatalf("expected rate_limited reason, got %s", apiErr.ReasonCode())
	}
}

func TestAPIErrorReasonCodes(t *testing.T) {
	cases := []struct {
		status int
		want   string
	}{
		{401, "auth_rejected"},
		{403, "auth_rejected"},
		{429, "rate_limited"},
		{500, "provider_unavailable"},
		{404, "provider_error"},
	}
	for _, tc := range cases {
		err := &APIError{StatusCode: tc.status}
		if got := err.ReasonCode(); got != tc.want {
			t.Errorf("status %d: expected %s, got %s", tc.status, tc.want, got)
		}
	}
}
