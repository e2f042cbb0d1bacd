// Package adaptertest holds helpers for testing gateways against fake
// Google endpoints.
package adaptertest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"google.golang.org/api/option"
)

// Credentials is a fixed adapter.CredentialSource.
type Credentials struct {
	Client *http.Client
	Err    error
}

func (c Credentials) HTTPClient(_ context.Context) (*http.Client, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Client, nil
}

// Server is a fake Google API endpoint that counts requests.
type Server struct {
	*httptest.Server
	hits atomic.Int32
}

// NewServer starts h and returns it with the client options that route a
// generated service to it.
func NewServer(t *testing.T, h http.HandlerFunc) (*Server, []option.ClientOption) {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(s.Close)
	return s, []option.ClientOption{option.WithEndpoint(s.URL + "/")}
}

// Hits returns the number of requests served.
func (s *Server) Hits() int {
	return int(s.hits.Load())
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a Google API error body.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]any{
		"error": map[string]any{"code": status, "message": message},
	})
}
