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

var ErrCredentialNotFound = errors.New("credential not found")

type Credential struct {
	ID           string
	UserID       string
	Provider     string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Scope        string
	UpdatedAt    time.Time
}

type UpsertCredentialInput struct {
	UserID       string
	Provider     string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Scope        string
}

// UpsertCredential inserts or replaces the single credential for a
// (user, provider) pair. An empty RefreshToken or Scope keeps the stored
// value, since the provider only reissues those on full re-consent.
func (s *Store) UpsertCredential(ctx context.Context, input UpsertCredentialInput) (Credential, error) {
	provider := strings.TrimSpace(input.Provider)
	if provider == "" {
		provider = "google"
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return Credential{}, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(input.AccessToken) == "" {
		return Credential{}, fmt.Errorf("access token is required")
	}

	nowUnix := time.Now().UTC().Unix()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO credentials (
			id, user_id, provider, access_token, refresh_token, expiry_unix, scope,
			created_at_unix, updated_at_unix
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token = '' THEN credentials.refresh_token ELSE excluded.refresh_token END,
			expiry_unix = excluded.expiry_unix,
			scope = CASE WHEN excluded.scope IS NULL THEN credentials.scope ELSE excluded.scope END,
			updated_at_unix = excluded.updated_at_unix`,
		"cred-"+uuid.NewString(),
		userID,
		provider,
		input.AccessToken,
		strings.TrimSpace(input.RefreshToken),
		input.Expiry.UTC().Unix(),
		nullIfEmpty(strings.TrimSpace(input.Scope)),
		nowUnix,
		nowUnix,
	)
	if err != nil {
		return Credential{}, fmt.Errorf("upsert credential: %w", err)
	}
	return s.LookupCredential(ctx, userID, provider)
}

func (s *Store) LookupCredential(ctx context.Context, userID, provider string) (Credential, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = "google"
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, user_id, provider, access_token, refresh_token, expiry_unix, COALESCE(scope, ''), updated_at_unix
		 FROM credentials WHERE user_id = ? AND provider = ?`,
		strings.TrimSpace(userID),
		provider,
	)

	var cred Credential
	var expiryUnix, updatedAtUnix int64
	err := row.Scan(
		&cred.ID,
		&cred.UserID,
		&cred.Provider,
		&cred.AccessToken,
		&cred.RefreshToken,
		&expiryUnix,
		&cred.Scope,
		&updatedAtUnix,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credential{}, ErrCredentialNotFound
		}
		return Credential{}, fmt.Errorf("scan credential: %w", err)
	}
	cred.Expiry = time.Unix(expiryUnix, 0).UTC()
	cred.UpdatedAt = time.Unix(updatedAtUnix, 0).UTC()
	return cred, nil
}
