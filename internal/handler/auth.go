package handler

import (
	"context"
	"log"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

// Authenticator is the part of the credential manager the auth endpoints use.
type Authenticator interface {
	AuthorizationURL(ctx context.Context, state string) (string, error)
	ExchangeCode(ctx context.Context, code string) error
	IsAuthenticated(ctx context.Context) bool
	Logout(ctx context.Context) error
}

// AuthHandler serves the OAuth consent flow.
type AuthHandler struct {
	auth        Authenticator
	stateSecret []byte
	frontendURL string
}

func NewAuthHandler(auth Authenticator, stateSecret []byte, frontendURL string) *AuthHandler {
	return &AuthHandler{auth: auth, stateSecret: stateSecret, frontendURL: frontendURL}
}

func (h *AuthHandler) authURL(ctx context.Context) (string, error) {
	state, err := NewState(h.stateSecret)
	if err != nil {
		return "", err
	}
	return h.auth.AuthorizationURL(ctx, state)
}

// URL returns the consent URL as {"authUrl": ...}.
func (h *AuthHandler) URL(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	u, err := h.authURL(ctx)
	if err != nil {
		return errorResponse("build auth url", err), nil
	}
	return jsonResponse(http.StatusOK, map[string]string{"authUrl": u}), nil
}

// Login redirects the browser straight to the consent screen.
func (h *AuthHandler) Login(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	u, err := h.authURL(ctx)
	if err != nil {
		return errorResponse("build auth url", err), nil
	}
	return redirect(u), nil
}

func (h *AuthHandler) frontendRedirect(reason string) events.APIGatewayProxyResponse {
	q := url.Values{}
	if reason == "" {
		q.Set("auth", "success")
	} else {
		q.Set("auth", "error")
		q.Set("reason", reason)
	}
	return redirect(h.frontendURL + "?" + q.Encode())
}

// Callback completes the flow and sends the browser back to the frontend
// with ?auth=success or ?auth=error&reason=...
func (h *AuthHandler) Callback(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := req.QueryStringParameters
	if e := params["error"]; e != "" {
		log.Printf("[auth] oauth error: %s", e)
		return h.frontendRedirect(e), nil
	}
	code := params["code"]
	if code == "" {
		return h.frontendRedirect("no_code"), nil
	}
	if err := VerifyState(h.stateSecret, params["state"]); err != nil {
		log.Printf("[auth] rejected callback: %v", err)
		return h.frontendRedirect("invalid_state"), nil
	}
	if err := h.auth.ExchangeCode(ctx, code); err != nil {
		log.Printf("[auth] token exchange failed: %v", err)
		return h.frontendRedirect("token_exchange_failed"), nil
	}
	return h.frontendRedirect(""), nil
}

func (h *AuthHandler) Status(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ok := h.auth.IsAuthenticated(ctx)
	msg := "Not authenticated"
	if ok {
		msg = "Authenticated with Google"
	}
	return jsonResponse(http.StatusOK, map[string]any{"authenticated": ok, "message": msg}), nil
}

func (h *AuthHandler) Logout(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if err := h.auth.Logout(ctx); err != nil {
		return errorResponse("logout", err), nil
	}
	return jsonResponse(http.StatusOK, map[string]string{"message": "Logged out successfully"}), nil
}
