package actions

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dwizi/friday/internal/store"
)

type ReminderStore interface {
	CreateReminder(ctx context.Context, input store.CreateReminderInput) (store.Reminder, error)
}

// ReminderExecutor writes to the reminder store instead of an external
// provider; the batch sweep delivers the reminder when it comes due. It
// follows the same contract shape as the provider-backed executors.
type ReminderExecutor struct {
	reminders ReminderStore
}

func NewReminderExecutor(reminders ReminderStore) *ReminderExecutor {
	return &ReminderExecutor{reminders: reminders}
}

func (e *ReminderExecutor) Name() string { return "reminder_tool" }

func (e *ReminderExecutor) Description() string {
	return "Set a reminder that will be delivered back to the user over WhatsApp at the given time."
}

func (e *ReminderExecutor) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "OBJECT",
		"properties": {
			"content": {"type": "STRING", "description": "Reminder content"},
			"dueAt": {"type": "STRING", "description": "ISO instant to deliver the reminder"}
		},
		"required": ["content", "dueAt"]
	}`)
}

type reminderArgs struct {
	Content string `json:"content"`
	DueAt   string `json:"dueAt"`
}

func (e *ReminderExecutor) Execute(ctx context.Context, inv Invocation, args json.RawMessage) Result {
	var parsed reminderArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return failure(e.Name(), ReasonInvalidArguments)
	}
	if strings.TrimSpace(parsed.Content) == "" || strings.TrimSpace(parsed.DueAt) == "" {
		return failure(e.Name(), ReasonInvalidArguments)
	}
	dueAt, err := time.Parse(time.RFC3339, strings.TrimSpace(parsed.DueAt))
	if err != nil {
		return failure(e.Name(), ReasonInvalidArguments)
	}

	reminder, err := e.reminders.CreateReminder(ctx, store.CreateReminderInput{
		UserID:  inv.UserID,
		Content: parsed.Content,
		DueAt:   dueAt,
	})
	if err != nil {
		return failure(e.Name(), "storage_error")
	}
	return success(e.Name(), map[string]any{
		"reminderId": reminder.ID,
		"dueAt":      reminder.DueAt.Format(time.RFC3339),
		"message":    "Reminder saved.",
	})
}
