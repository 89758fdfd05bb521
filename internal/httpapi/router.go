package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dwizi/friday/internal/config"
	"github.com/dwizi/friday/internal/store"
	"github.com/dwizi/friday/internal/twilio"
)

// MessageHandler runs one conversational turn and returns the reply.
type MessageHandler interface {
	HandleMessage(ctx context.Context, channelAddress, body string) string
}

// CodeExchanger completes the OAuth consent flow for a user.
type CodeExchanger interface {
	Exchange(ctx context.Context, code, userID string) error
}

type Dependencies struct {
	Config    config.Config
	Store     *store.Store
	Assistant MessageHandler
	Exchanger CodeExchanger
	Logger    *slog.Logger
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/info", rt.handleInfo)
	mux.HandleFunc("/webhook/twilio", rt.handleTwilioWebhook)
	mux.HandleFunc("/oauth/google/callback", rt.handleOAuthCallback)
	return mux
}

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if err := r.deps.Store.Ping(req.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "friday",
		"environment": r.deps.Config.Environment,
		"public_url":  r.deps.Config.PublicURL,
	})
}

// handleTwilioWebhook answers every well-formed inbound message with TwiML.
// Twilio retries non-2xx responses, so conversational failures come back as
// a normal reply rather than an error status.
func (r *router) handleTwilioWebhook(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	inbound, err := twilio.ParseInbound(req)
	if err != nil {
		r.deps.Logger.Warn("rejected malformed webhook", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	reply := r.deps.Assistant.HandleMessage(req.Context(), inbound.From, inbound.Body)
	body, err := twilio.TwiML(reply)
	if err != nil {
		r.deps.Logger.Error("twiml render failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (r *router) handleOAuthCallback(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	query := req.URL.Query()
	if reason := strings.TrimSpace(query.Get("error")); reason != "" {
		r.deps.Logger.Warn("consent denied", "reason", reason)
		writeHTML(w, http.StatusOK, "Connection cancelled",
			"You declined the Google connection. Message me again whenever you want to retry.")
		return
	}

	code := strings.TrimSpace(query.Get("code"))
	userID := strings.TrimSpace(query.Get("state"))
	if code == "" || userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code and state are required"})
		return
	}

	if _, err := r.deps.Store.LookupUser(req.Context(), userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown state"})
			return
		}
		r.deps.Logger.Error("user lookup failed during callback", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	if err := r.deps.Exchanger.Exchange(req.Context(), code, userID); err != nil {
		r.deps.Logger.Error("code exchange failed", "user_id", userID, "error", err)
		writeHTML(w, http.StatusBadGateway, "Connection failed",
			"Google did not accept the authorization. Message me again to get a fresh link.")
		return
	}

	r.deps.Logger.Info("google account connected", "user_id", userID)
	writeHTML(w, http.StatusOK, "All set!",
		"Your Google account is connected. Head back to WhatsApp and ask me anything.")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeHTML(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(
		w,
		"<!doctype html><html><head><title>%s</title></head><body style=\"font-family:sans-serif;max-width:32rem;margin:4rem auto\"><h1>%s</h1><p>%s</p></body></html>",
		html.EscapeString(title), html.EscapeString(title), html.EscapeString(message),
	)
}
