package adapter

import (
	"context"
	"net/http"
)

// CredentialSource supplies an authorized HTTP client for Google API calls.
type CredentialSource interface {
	// HTTPClient returns a client carrying a fresh credential, or an
	// ErrUnauthenticated error when the user has not signed in.
	HTTPClient(ctx context.Context) (*http.Client, error)
}
