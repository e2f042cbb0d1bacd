package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/jun/gophdrive/gateway/internal/adapter"
	"github.com/jun/gophdrive/gateway/internal/secret"
)

// UserID is the key of the single credential this gateway manages.
const UserID = "user"

// RefreshWindow is how close to expiry a credential may get before it is refreshed.
const RefreshWindow = 60 * time.Second

// Scopes requested at consent time.
var Scopes = []string{
	drive.DriveScope,
	sheets.SpreadsheetsScope,
	docs.DocumentsScope,
}

// CredentialManager runs the OAuth2 authorization-code flow and hands out a
// fresh credential for the single signed-in user.
//
// Both the OAuth config and the credential are cached in atomic pointers.
// Concurrent callers may refresh the same credential at once; the last write
// to the store wins.
type CredentialManager struct {
	secrets     secret.Resolver
	secretName  string
	redirectURL string
	store       TokenStore

	config atomic.Pointer[oauth2.Config]
	cached atomic.Pointer[oauth2.Token]

	now func() time.Time
}

// NewCredentialManager creates a CredentialManager. The client-secret JSON is
// resolved lazily from secrets under secretName. A non-empty redirectURL
// overrides the redirect URI from the JSON.
func NewCredentialManager(secrets secret.Resolver, secretName, redirectURL string, store TokenStore) *CredentialManager {
	return &CredentialManager{
		secrets:     secrets,
		secretName:  secretName,
		redirectURL: redirectURL,
		store:       store,
		now:         time.Now,
	}
}

func (m *CredentialManager) oauthConfig(ctx context.Context) (*oauth2.Config, error) {
	if cfg := m.config.Load(); cfg != nil {
		return cfg, nil
	}
	raw, err := m.secrets.GetSecret(ctx, m.secretName)
	if err != nil {
		return nil, adapter.New(adapter.KindConfiguration, "load client secret", err)
	}
	cfg, err := google.ConfigFromJSON([]byte(raw), Scopes...)
	if err != nil {
		return nil, adapter.New(adapter.KindConfiguration, "parse client secret", err)
	}
	if m.redirectURL != "" {
		cfg.RedirectURL = m.redirectURL
	}
	m.config.Store(cfg)
	return cfg, nil
}

// AuthorizationURL returns the Google consent URL. Offline access and forced
// consent make Google issue a refresh token every time.
func (m *CredentialManager) AuthorizationURL(ctx context.Context, state string) (string, error) {
	cfg, err := m.oauthConfig(ctx)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// ExchangeCode trades an authorization code for a credential and stores it.
func (m *CredentialManager) ExchangeCode(ctx context.Context, code string) error {
	cfg, err := m.oauthConfig(ctx)
	if err != nil {
		return err
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return adapter.New(adapter.KindTokenExchange, "exchange code", err)
	}
	if tok.RefreshToken == "" {
		if prev, err := m.store.Load(ctx, UserID); err == nil {
			tok.RefreshToken = prev.RefreshToken
		}
	}
	if err := m.store.Save(ctx, UserID, tok); err != nil {
		return adapter.New(adapter.KindTokenExchange, "store credential", err)
	}
	m.cached.Store(nil)
	log.Printf("[auth] stored credential for %s", UserID)
	return nil
}

// Credential returns a credential valid for at least RefreshWindow,
// refreshing and persisting it when needed.
func (m *CredentialManager) Credential(ctx context.Context) (*oauth2.Token, error) {
	tok := m.cached.Load()
	if tok != nil && !m.needsRefresh(tok) {
		return tok, nil
	}
	if tok == nil {
		stored, err := m.store.Load(ctx, UserID)
		if errors.Is(err, ErrTokenNotFound) {
			return nil, adapter.New(adapter.KindUnauthenticated, "load credential", err)
		}
		if err != nil {
			return nil, fmt.Errorf("load credential: %w", err)
		}
		tok = stored
	}
	if m.needsRefresh(tok) {
		refreshed, err := m.refresh(ctx, tok)
		if err != nil {
			return nil, err
		}
		tok = refreshed
	}
	m.cached.Store(tok)
	return tok, nil
}

func (m *CredentialManager) needsRefresh(tok *oauth2.Token) bool {
	if tok.AccessToken == "" || tok.Expiry.IsZero() {
		return true
	}
	return tok.Expiry.Sub(m.now()) < RefreshWindow
}

func (m *CredentialManager) refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	if tok.RefreshToken == "" {
		return nil, adapter.New(adapter.KindUnauthenticated, "refresh credential", errors.New("no refresh token"))
	}
	cfg, err := m.oauthConfig(ctx)
	if err != nil {
		return nil, err
	}
	// An empty access token forces the source to hit the token endpoint.
	next, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: tok.RefreshToken}).Token()
	if err != nil {
		return nil, adapter.New(adapter.KindUnauthenticated, "refresh credential", err)
	}
	if next.RefreshToken == "" {
		next.RefreshToken = tok.RefreshToken
	}
	if err := m.store.Save(ctx, UserID, next); err != nil {
		return nil, fmt.Errorf("store refreshed credential: %w", err)
	}
	log.Printf("[auth] refreshed credential, expires %s", next.Expiry.Format(time.RFC3339))
	return next, nil
}

// IsAuthenticated reports whether a usable credential exists.
func (m *CredentialManager) IsAuthenticated(ctx context.Context) bool {
	_, err := m.Credential(ctx)
	return err == nil
}

// HTTPClient returns an http.Client that authorizes requests with the
// current credential.
func (m *CredentialManager) HTTPClient(ctx context.Context) (*http.Client, error) {
	tok, err := m.Credential(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)), nil
}

// Logout forgets the cached credential and config and deletes the stored
// credential. Calling it when signed out is a no-op.
func (m *CredentialManager) Logout(ctx context.Context) error {
	m.cached.Store(nil)
	m.config.Store(nil)
	if err := m.store.Delete(ctx, UserID); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	log.Printf("[auth] logged out %s", UserID)
	return nil
}
