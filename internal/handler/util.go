package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jun/gophdrive/gateway/internal/adapter"
)

// StatusFor maps an error kind to the HTTP status returned to clients.
func StatusFor(err error) int {
	switch adapter.KindOf(err) {
	case adapter.KindValidation:
		return http.StatusBadRequest
	case adapter.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("[handler] encode response: %v", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: `{"error":"failed to encode response"}`}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

// errorResponse logs err under op and renders {"error": message}.
func errorResponse(op string, err error) events.APIGatewayProxyResponse {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[handler] %s: %v", op, err)
	}
	return jsonResponse(status, map[string]string{"error": err.Error()})
}

func badRequest(msg string) events.APIGatewayProxyResponse {
	return jsonResponse(http.StatusBadRequest, map[string]string{"error": msg})
}

func redirect(location string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusFound,
		Headers:    map[string]string{"Location": location},
	}
}

// getHeader is a case-insensitive header lookup.
func getHeader(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// decodeBody unmarshals a JSON request body into v. An empty body leaves v untouched.
func decodeBody(req events.APIGatewayProxyRequest, v any) error {
	body, err := rawBody(req)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return adapter.Validationf("invalid JSON body: %v", err)
	}
	return nil
}

const stateTTL = 10 * time.Minute

// NewState returns a signed, short-lived value for the OAuth state parameter.
func NewState(secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}
	return signed, nil
}

// VerifyState checks that state was produced by NewState with secret and has not expired.
func VerifyState(secret []byte, state string) error {
	if state == "" {
		return errors.New("missing state")
	}
	_, err := jwt.ParseWithClaims(state, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("invalid state: %w", err)
	}
	return nil
}
