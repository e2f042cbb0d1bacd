// Package config loads gateway settings from an optional TOML file and the
// environment. Environment variables always win over the file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Token store backends.
const (
	TokenStoreFile     = "file"
	TokenStoreDynamoDB = "dynamodb"
	TokenStoreMemory   = "memory"
)

// Secret backends.
const (
	SecretsEnv = "env"
	SecretsSSM = "ssm"
)

// Config holds every setting the gateway reads at startup.
type Config struct {
	DevMode bool `toml:"dev_mode"`

	// CredentialsFile is the Google OAuth client-secret JSON. It is ignored
	// when CredentialsParam is set.
	CredentialsFile  string `toml:"credentials_file"`
	CredentialsParam string `toml:"credentials_param"`

	TokenStore string `toml:"token_store"`
	TokenDir   string `toml:"tokens_dir"`
	TokenTable string `toml:"user_tokens_table"`
	KMSKeyID   string `toml:"kms_key_id"`

	SecretsBackend   string `toml:"secrets_backend"`
	StateSecretParam string `toml:"state_secret_param"`

	RedirectURL    string   `toml:"redirect_uri"`
	FrontendURL    string   `toml:"frontend_url"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RootFolderID   string   `toml:"root_folder_id"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		CredentialsFile:  "credentials/credentials.json",
		TokenStore:       TokenStoreFile,
		TokenDir:         "credentials/tokens",
		TokenTable:       "UserTokens",
		KMSKeyID:         "alias/gdrive-gateway-token-key",
		SecretsBackend:   SecretsEnv,
		StateSecretParam: "/gdrive-gateway/state-secret",
		RedirectURL:      "http://localhost:8080/api/auth/callback",
		FrontendURL:      "http://localhost:5173",
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
	}
}

// Load reads path (skipped when empty) and then applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("GATEWAY_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DEV_MODE"); v != "" {
		c.DevMode = v == "true"
	}
	setString(&c.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	setString(&c.CredentialsParam, "GOOGLE_CREDENTIALS_PARAM")
	setString(&c.TokenStore, "TOKEN_STORE")
	setString(&c.TokenDir, "GOOGLE_TOKENS_DIR")
	setString(&c.TokenTable, "USER_TOKENS_TABLE")
	setString(&c.KMSKeyID, "KMS_KEY_ID")
	setString(&c.SecretsBackend, "SECRETS_BACKEND")
	setString(&c.StateSecretParam, "STATE_SECRET_PARAM")
	setString(&c.RedirectURL, "GOOGLE_REDIRECT_URI")
	setString(&c.FrontendURL, "FRONTEND_URL")
	setString(&c.RootFolderID, "GOOGLE_DRIVE_ROOT_FOLDER_ID")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
}

// Validate rejects unknown backend names.
func (c Config) Validate() error {
	switch c.TokenStore {
	case TokenStoreFile, TokenStoreDynamoDB, TokenStoreMemory:
	default:
		return fmt.Errorf("unknown token store %q", c.TokenStore)
	}
	switch c.SecretsBackend {
	case SecretsEnv, SecretsSSM:
	default:
		return fmt.Errorf("unknown secrets backend %q", c.SecretsBackend)
	}
	return nil
}

// NeedsAWS reports whether any configured backend talks to AWS. DEV_MODE
// swaps SSM and KMS for local stand-ins but DynamoDB is still used (LocalStack).
func (c Config) NeedsAWS() bool {
	if c.TokenStore == TokenStoreDynamoDB {
		return true
	}
	return !c.DevMode && c.SecretsBackend == SecretsSSM
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
