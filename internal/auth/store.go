package auth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// ErrTokenNotFound is returned by a TokenStore when no credential is stored for a user.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore persists OAuth2 credentials keyed by user ID.
type TokenStore interface {
	Load(ctx context.Context, userID string) (*oauth2.Token, error)
	Save(ctx context.Context, userID string, token *oauth2.Token) error

	// Delete removes the credential. Deleting a missing entry is not an error.
	Delete(ctx context.Context, userID string) error
}
