package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dwizi/friday/internal/assisterr"
	"github.com/dwizi/friday/internal/store"
)

const (
	Provider = "google"

	// refreshBuffer renews a token this long before actual expiry so it
	// cannot expire mid-way through a downstream provider call.
	refreshBuffer = 5 * time.Minute
)

// Scopes requested on first contact include identity scopes so the account
// can be labeled; renewals only need the action scopes.
var (
	firstContactScopes = []string{
		"https://www.googleapis.com/auth/calendar",
		"https://www.googleapis.com/auth/gmail.modify",
		"https://www.googleapis.com/auth/tasks",
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	}
	renewalScopes = []string{
		"https://www.googleapis.com/auth/calendar",
		"https://www.googleapis.com/auth/gmail.modify",
		"https://www.googleapis.com/auth/tasks",
	}
)

type Store interface {
	LookupCredential(ctx context.Context, userID, provider string) (store.Credential, error)
	UpsertCredential(ctx context.Context, input store.UpsertCredentialInput) (store.Credential, error)
}

type Config struct {
	ClientID     string
	ClientSecret string
	AuthBase     string
	TokenBase    string
	RedirectURL  string
	Timeout      time.Duration
}

// Authorizer owns the delegated-credential lifecycle: issuing authorization
// links, exchanging callback codes, and keeping access tokens fresh.
type Authorizer struct {
	cfg        Config
	store      Store
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

func New(cfg Config, credStore Store, logger *slog.Logger) *Authorizer {
	if strings.TrimSpace(cfg.AuthBase) == "" {
		cfg.AuthBase = "https://accounts.google.com/o/oauth2/v2/auth"
	}
	if strings.TrimSpace(cfg.TokenBase) == "" {
		cfg.TokenBase = "https://oauth2.googleapis.com/token"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{
		cfg:        cfg,
		store:      credStore,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// AuthURL builds the provider consent link. The user id rides along as the
// opaque state parameter so the callback can attribute the exchanged tokens.
func (a *Authorizer) AuthURL(userID string, firstContact bool) string {
	scopes := renewalScopes
	if firstContact {
		scopes = firstContactScopes
	}
	query := url.Values{}
	query.Set("client_id", a.cfg.ClientID)
	query.Set("redirect_uri", a.cfg.RedirectURL)
	query.Set("response_type", "code")
	query.Set("scope", strings.Join(scopes, " "))
	query.Set("access_type", "offline")
	query.Set("prompt", "consent")
	query.Set("state", userID)
	return a.cfg.AuthBase + "?" + query.Encode()
}

// Token returns an access token valid for at least refreshBuffer.
// A missing credential or a failed refresh surfaces as
// assisterr.ErrAuthorizationRequired; the caller degrades to issuing a new
// authorization link instead of failing the turn.
func (a *Authorizer) Token(ctx context.Context, userID string) (string, error) {
	cred, err := a.store.LookupCredential(ctx, userID, Provider)
	if err != nil {
		if errors.Is(err, store.ErrCredentialNotFound) {
			return "", assisterr.ErrAuthorizationRequired
		}
		return "", fmt.Errorf("%w: lookup credential: %v", assisterr.ErrStorageUnavailable, err)
	}

	if a.now().UTC().Before(cred.Expiry.Add(-refreshBuffer)) {
		return cred.AccessToken, nil
	}

	a.logger.Info("access token near expiry, refreshing", "user_id", userID)
	refreshed, err := a.refresh(ctx, cred)
	if err != nil {
		a.logger.Warn("token refresh failed", "user_id", userID, "error", err)
		return "", assisterr.ErrAuthorizationRequired
	}
	return refreshed.AccessToken, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

func (a *Authorizer) refresh(ctx context.Context, cred store.Credential) (store.Credential, error) {
	form := url.Values{}
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)
	form.Set("refresh_token", cred.RefreshToken)
	form.Set("grant_type", "refresh_token")

	tokens, err := a.postTokenForm(ctx, form)
	if err != nil {
		return store.Credential{}, err
	}

	updated, err := a.store.UpsertCredential(ctx, store.UpsertCredentialInput{
		UserID:       cred.UserID,
		Provider:     cred.Provider,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken, // empty keeps the stored one
		Expiry:       a.now().UTC().Add(time.Duration(tokens.ExpiresIn) * time.Second),
		Scope:        tokens.Scope,
	})
	if err != nil {
		return store.Credential{}, fmt.Errorf("persist refreshed credential: %w", err)
	}
	return updated, nil
}

// Exchange trades an authorization code from the provider callback for a
// token pair and persists it against the user carried in state.
func (a *Authorizer) Exchange(ctx context.Context, code, userID string) error {
	form := url.Values{}
	form.Set("client_id", a.cfg.ClientID)
	form.Set("client_secret", a.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", a.cfg.RedirectURL)

	tokens, err := a.postTokenForm(ctx, form)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	if _, err := a.store.UpsertCredential(ctx, store.UpsertCredentialInput{
		UserID:       userID,
		Provider:     Provider,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Expiry:       a.now().UTC().Add(time.Duration(tokens.ExpiresIn) * time.Second),
		Scope:        tokens.Scope,
	}); err != nil {
		return fmt.Errorf("persist exchanged credential: %w", err)
	}
	return nil
}

func (a *Authorizer) postTokenForm(ctx context.Context, form url.Values) (tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.TokenBase, strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := a.httpClient.Do(req)
	if err != nil {
		return tokenResponse{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return tokenResponse{}, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return tokenResponse{}, fmt.Errorf("token endpoint returned status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var tokens tokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return tokenResponse{}, fmt.Errorf("decode token response: %w", err)
	}
	if tokens.Error != "" {
		return tokenResponse{}, fmt.Errorf("token endpoint error: %s: %s", tokens.Error, tokens.ErrorDesc)
	}
	if strings.TrimSpace(tokens.AccessToken) == "" {
		return tokenResponse{}, fmt.Errorf("token endpoint returned no access token")
	}
	return tokens, nil
}
