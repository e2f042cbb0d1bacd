// Package secret resolves named secrets (the OAuth client-secret JSON, the
// state signing key) from a file, environment variables or SSM Parameter Store.
package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ErrNotFound is returned when a secret has no value in the backend.
var ErrNotFound = errors.New("secret not found")

// SSMClient is the subset of *ssm.Client methods used by SSMResolver.
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Resolver retrieves secret values by name.
type Resolver interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// SSMResolver fetches secrets from AWS Systems Manager Parameter Store.
type SSMResolver struct {
	client SSMClient
}

func NewSSMResolver(client SSMClient) *SSMResolver {
	return &SSMResolver{client: client}
}

// GetSecret retrieves a SecureString parameter with decryption.
func (r *SSMResolver) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("ssm get parameter %q: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("ssm parameter %q: %w", name, ErrNotFound)
	}
	return *out.Parameter.Value, nil
}

// EnvResolver reads secrets from environment variables named after the last
// path segment of the parameter ("/gdrive-gateway/state-secret" -> STATE_SECRET).
type EnvResolver struct{}

func NewEnvResolver() *EnvResolver {
	return &EnvResolver{}
}

func (r *EnvResolver) GetSecret(_ context.Context, name string) (string, error) {
	envName := paramNameToEnvVar(name)
	val := os.Getenv(envName)
	if val == "" {
		return "", fmt.Errorf("environment variable %q (from %q): %w", envName, name, ErrNotFound)
	}
	return val, nil
}

// FileResolver treats the secret name as a file path and returns its content.
type FileResolver struct{}

func NewFileResolver() *FileResolver {
	return &FileResolver{}
}

func (r *FileResolver) GetSecret(_ context.Context, name string) (string, error) {
	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("secret file %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read secret file %q: %w", name, err)
	}
	return string(data), nil
}

// paramNameToEnvVar converts an SSM parameter name to an environment variable name.
// "/gdrive-gateway/google-client-secret" -> "GOOGLE_CLIENT_SECRET"
func paramNameToEnvVar(name string) string {
	parts := strings.Split(name, "/")
	last := parts[len(parts)-1]
	return strings.ToUpper(strings.ReplaceAll(last, "-", "_"))
}
