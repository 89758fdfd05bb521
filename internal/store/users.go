package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID             string
	ChannelAddress string
	DisplayName    string
	CreatedAt      time.Time
}

// FindOrCreateUser resolves a channel address to a user record, creating one
// on first contact. The UNIQUE constraint on channel_address plus the
// ON CONFLICT clause keep concurrent first contacts from racing into
// duplicate rows; the losing insert falls through to the re-read.
func (s *Store) FindOrCreateUser(ctx context.Context, channelAddress string) (User, bool, error) {
	channelAddress = strings.TrimSpace(channelAddress)
	if channelAddress == "" {
		return User{}, false, fmt.Errorf("channel address is required")
	}

	existing, err := s.LookupUserByAddress(ctx, channelAddress)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, false, err
	}

	id := "user-" + uuid.NewString()
	result, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (id, channel_address, created_at_unix)
		 VALUES (?, ?, ?)
		 ON CONFLICT(channel_address) DO NOTHING`,
		id,
		channelAddress,
		time.Now().UTC().Unix(),
	)
	if err != nil {
		return User{}, false, fmt.Errorf("insert user: %w", err)
	}

	created := false
	if rows, rowsErr := result.RowsAffected(); rowsErr == nil && rows > 0 {
		created = true
	}
	user, err := s.LookupUserByAddress(ctx, channelAddress)
	if err != nil {
		return User{}, false, err
	}
	return user, created, nil
}

func (s *Store) LookupUserByAddress(ctx context.Context, channelAddress string) (User, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, channel_address, COALESCE(display_name, ''), created_at_unix
		 FROM users WHERE channel_address = ?`,
		strings.TrimSpace(channelAddress),
	)
	return scanUser(row)
}

func (s *Store) LookupUser(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, channel_address, COALESCE(display_name, ''), created_at_unix
		 FROM users WHERE id = ?`,
		strings.TrimSpace(id),
	)
	return scanUser(row)
}

func (s *Store) UpdateUserDisplayName(ctx context.Context, id, displayName string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE users SET display_name = ? WHERE id = ?`,
		nullIfEmpty(strings.TrimSpace(displayName)),
		strings.TrimSpace(id),
	)
	if err != nil {
		return fmt.Errorf("update user display name: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (User, error) {
	var user User
	var createdAtUnix int64
	if err := row.Scan(&user.ID, &user.ChannelAddress, &user.DisplayName, &createdAtUnix); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
	return user, nil
}
