// Package app wires the whole assistant together and runs it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dwizi/friday/internal/actions"
	"github.com/dwizi/friday/internal/assistant"
	"github.com/dwizi/friday/internal/config"
	"github.com/dwizi/friday/internal/directive"
	"github.com/dwizi/friday/internal/googleapi"
	"github.com/dwizi/friday/internal/googleauth"
	"github.com/dwizi/friday/internal/httpapi"
	"github.com/dwizi/friday/internal/planner"
	"github.com/dwizi/friday/internal/store"
	"github.com/dwizi/friday/internal/sweeper"
	"github.com/dwizi/friday/internal/twilio"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *store.Store
	directive  *directive.Loader
	sweeper    *sweeper.Sweeper
	httpServer *http.Server
}

func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	sqlStore, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		sqlStore.Close()
		return nil, err
	}

	authorizer := googleauth.New(googleauth.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		AuthBase:     cfg.GoogleAuthBase,
		TokenBase:    cfg.GoogleTokenBase,
		RedirectURL:  cfg.PublicURL + "/oauth/google/callback",
	}, sqlStore, logger.With("component", "googleauth"))

	registry := actions.NewRegistry()
	registry.Register(actions.NewMailExecutor(googleapi.NewGmail(googleapi.Config{BaseURL: cfg.GmailAPIBase})))
	registry.Register(actions.NewCalendarExecutor(googleapi.NewCalendar(googleapi.Config{BaseURL: cfg.CalendarAPIBase})))
	registry.Register(actions.NewTasksExecutor(googleapi.NewTasks(googleapi.Config{BaseURL: cfg.TasksAPIBase})))
	registry.Register(actions.NewReminderExecutor(sqlStore))

	plannerClient := planner.NewGemini(planner.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiAPIBase,
		Model:   cfg.GeminiModel,
		Timeout: time.Duration(cfg.GeminiTimeoutSec) * time.Second,
	}, logger.With("component", "planner"))

	directiveLoader := directive.NewLoader(cfg.DirectiveFile, logger.With("component", "directive"))

	conversing := assistant.New(
		sqlStore,
		authorizer,
		plannerClient,
		registry,
		directiveLoader,
		cfg.HistoryTurns,
		logger.With("component", "assistant"),
	)

	twilioClient := twilio.NewClient(twilio.Config{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		BaseURL:    cfg.TwilioAPIBase,
		From:       cfg.TwilioFrom,
	}, logger.With("component", "twilio"))

	reminderSweeper := sweeper.New(
		sqlStore,
		twilioClient,
		cfg.ReminderCronSpec,
		cfg.SweepBatchLimit,
		logger.With("component", "sweeper"),
	)

	handler := httpapi.NewRouter(httpapi.Dependencies{
		Config:    cfg,
		Store:     sqlStore,
		Assistant: conversing,
		Exchanger: authorizer,
		Logger:    logger.With("component", "httpapi"),
	})

	return &Runtime{
		cfg:       cfg,
		logger:    logger,
		store:     sqlStore,
		directive: directiveLoader,
		sweeper:   reminderSweeper,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}
