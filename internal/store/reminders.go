package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ReminderStatusPending   = "pending"
	ReminderStatusSent      = "sent"
	ReminderStatusCancelled = "cancelled"
)

type Reminder struct {
	ID        string
	UserID    string
	Content   string
	DueAt     time.Time
	Status    string
	CreatedAt time.Time
}

// DueReminder joins the reminder with the channel address the sweep
// delivers it to.
type DueReminder struct {
	Reminder
	ChannelAddress string
}

type CreateReminderInput struct {
	UserID  string
	Content string
	DueAt   time.Time
}

func (s *Store) CreateReminder(ctx context.Context, input CreateReminderInput) (Reminder, error) {
	userID := strings.TrimSpace(input.UserID)
	content := strings.TrimSpace(input.Content)
	if userID == "" || content == "" {
		return Reminder{}, fmt.Errorf("user id and content are required")
	}
	if input.DueAt.IsZero() {
		return Reminder{}, fmt.Errorf("due time is required")
	}

	reminder := Reminder{
		ID:        "rem-" + uuid.NewString(),
		UserID:    userID,
		Content:   content,
		DueAt:     input.DueAt.UTC(),
		Status:    ReminderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO reminders (id, user_id, content, due_at_unix, status, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reminder.ID,
		reminder.UserID,
		reminder.Content,
		reminder.DueAt.Unix(),
		reminder.Status,
		reminder.CreatedAt.Unix(),
	)
	if err != nil {
		return Reminder{}, fmt.Errorf("insert reminder: %w", err)
	}
	return reminder, nil
}

func (s *Store) ListDueReminders(ctx context.Context, now time.Time, limit int) ([]DueReminder, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT r.id, r.user_id, r.content, r.due_at_unix, r.status, r.created_at_unix, u.channel_address
		 FROM reminders r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.status = ? AND r.due_at_unix <= ?
		 ORDER BY r.due_at_unix ASC
		 LIMIT ?`,
		ReminderStatusPending,
		now.UTC().Unix(),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()

	var due []DueReminder
	for rows.Next() {
		var item DueReminder
		var dueAtUnix, createdAtUnix int64
		if err := rows.Scan(&item.ID, &item.UserID, &item.Content, &dueAtUnix, &item.Status, &createdAtUnix, &item.ChannelAddress); err != nil {
			return nil, fmt.Errorf("scan due reminder: %w", err)
		}
		item.DueAt = time.Unix(dueAtUnix, 0).UTC()
		item.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
		due = append(due, item)
	}
	return due, rows.Err()
}

// MarkReminderSent transitions a pending reminder to sent. The status guard
// makes the sweep idempotent when two sweep runs overlap.
func (s *Store) MarkReminderSent(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE reminders SET status = ? WHERE id = ? AND status = ?`,
		ReminderStatusSent,
		strings.TrimSpace(id),
		ReminderStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return rows > 0, nil
}

func (s *Store) CancelReminder(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE reminders SET status = ? WHERE id = ? AND status = ?`,
		ReminderStatusCancelled,
		strings.TrimSpace(id),
		ReminderStatusPending,
	)
	if err != nil {
		return fmt.Errorf("cancel reminder: %w", err)
	}
	return nil
}
