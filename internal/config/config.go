package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	HTTPAddr    string
	PublicURL   string
	DataDir     string
	DBPath      string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleAuthBase     string
	GoogleTokenBase    string
	GmailAPIBase       string
	CalendarAPIBase    string
	TasksAPIBase       string

	GeminiAPIKey     string
	GeminiAPIBase    string
	GeminiModel      string
	GeminiTimeoutSec int

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioAPIBase    string
	TwilioFrom       string

	DirectiveFile    string
	HistoryTurns     int
	ReminderCronSpec string
	SweepBatchLimit  int
}

func FromEnv() Config {
	dataDir := stringOrDefault("FRIDAY_DATA_DIR", "/data")
	dbPath := stringOrDefault("FRIDAY_DB_PATH", filepath.Join(dataDir, "friday", "meta.sqlite"))

	return Config{
		Environment: stringOrDefault("FRIDAY_ENV", "development"),
		HTTPAddr:    stringOrDefault("FRIDAY_HTTP_ADDR", ":8080"),
		PublicURL:   stringOrDefault("FRIDAY_PUBLIC_URL", "http://localhost:8080"),
		DataDir:     dataDir,
		DBPath:      dbPath,

		GoogleClientID:     strings.TrimSpace(os.Getenv("FRIDAY_GOOGLE_CLIENT_ID")),
		GoogleClientSecret: os.Getenv("FRIDAY_GOOGLE_CLIENT_SECRET"),
		GoogleAuthBase:     stringOrDefault("FRIDAY_GOOGLE_AUTH_BASE", "https://accounts.google.com/o/oauth2/v2/auth"),
		GoogleTokenBase:    stringOrDefault("FRIDAY_GOOGLE_TOKEN_BASE", "https://oauth2.googleapis.com/token"),
		GmailAPIBase:       stringOrDefault("FRIDAY_GMAIL_API_BASE", "https://gmail.googleapis.com/gmail/v1"),
		CalendarAPIBase:    stringOrDefault("FRIDAY_CALENDAR_API_BASE", "https://www.googleapis.com/calendar/v3"),
		TasksAPIBase:       stringOrDefault("FRIDAY_TASKS_API_BASE", "https://tasks.googleapis.com/tasks/v1"),

		GeminiAPIKey:     strings.TrimSpace(os.Getenv("FRIDAY_GEMINI_API_KEY")),
		GeminiAPIBase:    stringOrDefault("FRIDAY_GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:      stringOrDefault("FRIDAY_GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTimeoutSec: intOrDefault("FRIDAY_GEMINI_TIMEOUT_SECONDS", 60),

		TwilioAccountSID: strings.TrimSpace(os.Getenv("FRIDAY_TWILIO_ACCOUNT_SID")),
		TwilioAuthToken:  os.Getenv("FRIDAY_TWILIO_AUTH_TOKEN"),
		TwilioAPIBase:    stringOrDefault("FRIDAY_TWILIO_API_BASE", "https://api.twilio.com"),
		TwilioFrom:       strings.TrimSpace(os.Getenv("FRIDAY_TWILIO_FROM")),

		DirectiveFile:    stringOrDefault("FRIDAY_DIRECTIVE_FILE", "/context/DIRECTIVE.md"),
		HistoryTurns:     intOrDefault("FRIDAY_HISTORY_TURNS", 12),
		ReminderCronSpec: stringOrDefault("FRIDAY_REMINDER_CRON", "@every 1m"),
		SweepBatchLimit:  intOrDefault("FRIDAY_SWEEP_BATCH_LIMIT", 50),
	}
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
