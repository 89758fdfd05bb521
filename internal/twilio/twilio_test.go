package twilio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseInbound(t *testing.T) {
	form := url.Values{}
	form.Set("From", "whatsapp:+15551234567")
	form.Set("Body", "  what's on my calendar?  ")
	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	msg, err := ParseInbound(req)
	if err != nil {
		t.Fatalf("ParseInbound: %v", err)
	}
	if msg.From != "whatsapp:+15551234567" {
		t.Errorf("From = %q", msg.From)
	}
	if msg.Body != "what's on my calendar?" {
		t.Errorf("Body = %q", msg.Body)
	}
}

func TestParseInboundMissingSender(t *testing.T) {
	form := url.Values{}
	form.Set("Body", "hello")
	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if _, err := ParseInbound(req); !errors.Is(err, ErrMissingSender) {
		t.Fatalf("err = %v, want ErrMissingSender", err)
	}
}

func TestTwiMLEscapesMarkup(t *testing.T) {
	out, err := TwiML(`You have 2 emails <unread> & one event`)
	if err != nil {
		t.Fatalf("TwiML: %v", err)
	}
	got := string(out)
	if !strings.HasPrefix(got, "<?xml") {
		t.Errorf("missing xml header: %q", got)
	}
	if !strings.Contains(got, "<Response><Message>") {
		t.Errorf("missing envelope: %q", got)
	}
	if !strings.Contains(got, "&lt;unread&gt; &amp; one event") {
		t.Errorf("markup not escaped: %q", got)
	}
}

func TestClientSendMessage(t *testing.T) {
	var gotPath, gotFrom, gotTo, gotBody string
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		r.ParseForm()
		gotFrom = r.PostFormValue("From")
		gotTo = r.PostFormValue("To")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123"}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		AccountSID: "AC42",
		AuthToken:  "secret",
		BaseURL:    server.URL,
		From:       "whatsapp:+15550000000",
	}, nil)

	err := client.SendMessage(context.Background(), "whatsapp:+15551234567", "⏰ Reminder: stand-up")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if gotPath != "/2010-04-01/Accounts/AC42/Messages.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotUser != "AC42" || gotPass != "secret" {
		t.Errorf("basic auth = %q:%q", gotUser, gotPass)
	}
	if gotFrom != "whatsapp:+15550000000" || gotTo != "whatsapp:+15551234567" {
		t.Errorf("from/to = %q/%q", gotFrom, gotTo)
	}
	if gotBody != "⏰ Reminder: stand-up" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestClientSendMessageRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":21211}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(Config{AccountSID: "AC42", AuthToken: "secret", BaseURL: server.URL}, nil)
	if err := client.SendMessage(context.Background(), "whatsapp:+1", "hi"); err == nil {
		t.Fatal("expected error on rejected send")
	}
}
