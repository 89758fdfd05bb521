package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected default http addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("unexpected default model: %s", cfg.GeminiModel)
	}
	if cfg.HistoryTurns != 12 {
		t.Errorf("expected 12 history turns, got %d", cfg.HistoryTurns)
	}
	if cfg.ReminderCronSpec != "@every 1m" {
		t.Errorf("unexpected reminder cron spec: %s", cfg.ReminderCronSpec)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("FRIDAY_HTTP_ADDR", ":9191")
	t.Setenv("FRIDAY_HISTORY_TURNS", "4")
	t.Setenv("FRIDAY_GEMINI_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("FRIDAY_TWILIO_ACCOUNT_SID", " AC123 ")

	cfg := FromEnv()
	if cfg.HTTPAddr != ":9191" {
		t.Errorf("expected overridden addr, got %s", cfg.HTTPAddr)
	}
	if cfg.HistoryTurns != 4 {
		t.Errorf("expected 4 history turns, got %d", cfg.HistoryTurns)
	}
	if cfg.GeminiTimeoutSec != 60 {
		t.Errorf("expected fallback timeout on bad int, got %d", cfg.GeminiTimeoutSec)
	}
	if cfg.TwilioAccountSID != "AC123" {
		t.Errorf("expected trimmed sid, got %q", cfg.TwilioAccountSID)
	}
}
