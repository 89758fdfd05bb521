// Package sweeper delivers due reminders on a schedule. It is the one part
// of the system that initiates outbound messages rather than answering a
// webhook.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dwizi/friday/internal/store"
)

// Store is the reminder slice of persistence the sweep walks.
type Store interface {
	ListDueReminders(ctx context.Context, now time.Time, limit int) ([]store.DueReminder, error)
	MarkReminderSent(ctx context.Context, id string) (bool, error)
}

// Sender delivers one outbound message on the user's channel.
type Sender interface {
	SendMessage(ctx context.Context, to, body string) error
}

type Sweeper struct {
	store      Store
	sender     Sender
	cronSpec   string
	batchLimit int
	logger     *slog.Logger
	now        func() time.Time
}

func New(st Store, sender Sender, cronSpec string, batchLimit int, logger *slog.Logger) *Sweeper {
	if cronSpec == "" {
		cronSpec = "@every 1m"
	}
	if batchLimit < 1 {
		batchLimit = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:      st,
		sender:     sender,
		cronSpec:   cronSpec,
		batchLimit: batchLimit,
		logger:     logger,
		now:        time.Now,
	}
}

// Run blocks until ctx is done, sweeping on the configured schedule.
func (s *Sweeper) Run(ctx context.Context) error {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(s.cronSpec, func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule reminder sweep %q: %w", s.cronSpec, err)
	}
	scheduler.Start()
	s.logger.Info("reminder sweeper started", "spec", s.cronSpec)

	<-ctx.Done()
	stopped := scheduler.Stop()
	<-stopped.Done()
	s.logger.Info("reminder sweeper stopped")
	return nil
}

// Sweep delivers every due reminder once. A failed send leaves the reminder
// pending for the next pass; a lost race on the sent transition skips the
// send entirely. Each reminder fails independently.
func (s *Sweeper) Sweep(ctx context.Context) {
	due, err := s.store.ListDueReminders(ctx, s.now(), s.batchLimit)
	if err != nil {
		s.logger.Error("due reminder query failed", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	sent := 0
	for _, reminder := range due {
		body := "⏰ Reminder: " + reminder.Content
		if err := s.sender.SendMessage(ctx, reminder.ChannelAddress, body); err != nil {
			s.logger.Error("reminder delivery failed", "reminder_id", reminder.ID, "error", err)
			continue
		}
		marked, err := s.store.MarkReminderSent(ctx, reminder.ID)
		if err != nil {
			s.logger.Error("failed to mark reminder sent", "reminder_id", reminder.ID, "error", err)
			continue
		}
		if !marked {
			s.logger.Warn("reminder no longer pending after send", "reminder_id", reminder.ID)
			continue
		}
		sent++
	}
	s.logger.Info("reminder sweep complete", "due", len(due), "sent", sent)
}
