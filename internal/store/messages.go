package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

type Message struct {
	ID        string
	UserID    string
	Role      string
	Body      string
	CreatedAt time.Time
}

func (s *Store) AppendMessage(ctx context.Context, userID, role, body string) error {
	userID = strings.TrimSpace(userID)
	body = strings.TrimSpace(body)
	if userID == "" || body == "" {
		return fmt.Errorf("user id and body are required")
	}
	switch role {
	case MessageRoleUser, MessageRoleAssistant:
	default:
		return fmt.Errorf("unknown message role: %s", role)
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO messages (id, user_id, role, body, created_at_unix_nano)
		 VALUES (?, ?, ?, ?, ?)`,
		"msg-"+uuid.NewString(),
		userID,
		role,
		body,
		// Nanosecond precision keeps rapid same-second turns ordered.
		time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// RecentMessages returns the last `limit` messages for a user in
// chronological order. This is the bounded context window handed to the
// planner; older turns are simply not loaded.
func (s *Store) RecentMessages(ctx context.Context, userID string, limit int) ([]Message, error) {
	if limit < 1 {
		limit = 12
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, role, body, created_at_unix_nano FROM (
			SELECT id, user_id, role, body, created_at_unix_nano
			FROM messages WHERE user_id = ?
			ORDER BY created_at_unix_nano DESC
			LIMIT ?
		) ORDER BY created_at_unix_nano ASC`,
		strings.TrimSpace(userID),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		var createdAtUnix int64
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Role, &msg.Body, &createdAtUnix); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.CreatedAt = time.Unix(0, createdAtUnix).UTC()
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
