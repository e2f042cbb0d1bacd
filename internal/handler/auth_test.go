package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/jun/gophdrive/gateway/internal/adapter"
	"github.com/jun/gophdrive/gateway/internal/handler"
)

var testStateSecret = []byte("test-state-secret")

const testFrontend = "http://localhost:5173"

func newAuthHandler(a *fakeAuth) *handler.AuthHandler {
	return handler.NewAuthHandler(a, testStateSecret, testFrontend)
}

func TestAuthHandler_URL(t *testing.T) {
	a := &fakeAuth{url: "https://accounts.example.com/auth"}
	h := newAuthHandler(a)

	resp, _ := h.URL(context.Background(), makeRequest("GET", "/auth/url", ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	body := decode(t, resp)
	authURL, _ := body["authUrl"].(string)
	if !strings.HasPrefix(authURL, "https://accounts.example.com/auth?state=") {
		t.Errorf("unexpected authUrl %q", authURL)
	}
	if err := handler.VerifyState(testStateSecret, a.lastState); err != nil {
		t.Errorf("state should verify: %v", err)
	}
}

func TestAuthHandler_URL_ConfigurationError(t *testing.T) {
	a := &fakeAuth{urlErr: adapter.New(adapter.KindConfiguration, "load client secret", errors.New("no such file"))}
	resp, _ := newAuthHandler(a).URL(context.Background(), makeRequest("GET", "/auth/url", ""))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", resp.StatusCode)
	}
	if body := decode(t, resp); !strings.Contains(body["error"].(string), "no such file") {
		t.Errorf("expected error message, got %v", body)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	a := &fakeAuth{url: "https://accounts.example.com/auth"}
	resp, _ := newAuthHandler(a).Login(context.Background(), makeRequest("GET", "/auth/login", ""))
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("Expected 302, got %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Headers["Location"], "https://accounts.example.com/auth") {
		t.Errorf("unexpected Location %q", resp.Headers["Location"])
	}
}

func TestAuthHandler_Callback(t *testing.T) {
	validState, err := handler.NewState(testStateSecret)
	if err != nil {
		t.Fatal(err)
	}
	otherState, _ := handler.NewState([]byte("other-secret"))

	tests := []struct {
		name        string
		params      map[string]string
		exchangeErr error
		wantAuth    string
		wantReason  string
		wantCodes   int
	}{
		{"success", map[string]string{"code": "c1", "state": validState}, nil, "success", "", 1},
		{"provider error", map[string]string{"error": "access_denied", "state": validState}, nil, "error", "access_denied", 0},
		{"no code", map[string]string{"state": validState}, nil, "error", "no_code", 0},
		{"missing state", map[string]string{"code": "c1"}, nil, "error", "invalid_state", 0},
		{"forged state", map[string]string{"code": "c1", "state": otherState}, nil, "error", "invalid_state", 0},
		{"exchange fails", map[string]string{"code": "c1", "state": validState}, errors.New("invalid_grant"), "error", "token_exchange_failed", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeAuth{exchangeErr: tt.exchangeErr}
			req := makeRequest("GET", "/auth/callback", "")
			req.QueryStringParameters = tt.params

			resp, _ := newAuthHandler(a).Callback(context.Background(), req)
			if resp.StatusCode != http.StatusFound {
				t.Fatalf("Expected 302, got %d", resp.StatusCode)
			}
			loc, err := url.Parse(resp.Headers["Location"])
			if err != nil {
				t.Fatalf("bad Location: %v", err)
			}
			if got := loc.Scheme + "://" + loc.Host; got != testFrontend {
				t.Errorf("expected redirect to frontend, got %s", got)
			}
			q := loc.Query()
			if q.Get("auth") != tt.wantAuth || q.Get("reason") != tt.wantReason {
				t.Errorf("got auth=%q reason=%q, want auth=%q reason=%q", q.Get("auth"), q.Get("reason"), tt.wantAuth, tt.wantReason)
			}
			if len(a.exchanged) != tt.wantCodes {
				t.Errorf("expected %d exchanges, got %d", tt.wantCodes, len(a.exchanged))
			}
		})
	}
}

func TestAuthHandler_StatusAndLogout(t *testing.T) {
	a := &fakeAuth{authed: true}
	h := newAuthHandler(a)
	ctx := context.Background()

	body := decode(t, must(h.Status(ctx, makeRequest("GET", "/auth/status", ""))))
	if body["authenticated"] != true || body["message"] != "Authenticated with Google" {
		t.Errorf("unexpected status body %v", body)
	}

	resp, _ := h.Logout(ctx, makeRequest("POST", "/auth/logout", ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if decode(t, resp)["message"] != "Logged out successfully" {
		t.Errorf("unexpected logout body %s", resp.Body)
	}

	body = decode(t, must(h.Status(ctx, makeRequest("GET", "/auth/status", ""))))
	if body["authenticated"] != false || body["message"] != "Not authenticated" {
		t.Errorf("unexpected status body after logout %v", body)
	}
}
