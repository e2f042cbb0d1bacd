package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/jun/gophdrive/gateway/internal/adapter/googledocs"
	"github.com/jun/gophdrive/gateway/internal/adapter/googledrive"
	"github.com/jun/gophdrive/gateway/internal/adapter/googlesheets"
	"github.com/jun/gophdrive/gateway/internal/auth"
	"github.com/jun/gophdrive/gateway/internal/config"
	"github.com/jun/gophdrive/gateway/internal/crypto"
	"github.com/jun/gophdrive/gateway/internal/handler"
	"github.com/jun/gophdrive/gateway/internal/secret"
	"github.com/jun/gophdrive/gateway/internal/tokenstore"
)

// NewApp wires the gateway from cfg.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	var awsCfg aws.Config
	if cfg.NeedsAWS() {
		var err error
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
		}
	}

	// ---------- Secret Resolver ----------
	var resolver secret.Resolver
	if cfg.SecretsBackend == config.SecretsSSM && !cfg.DevMode {
		resolver = secret.NewSSMResolver(ssm.NewFromConfig(awsCfg))
		log.Printf("[app] using SSM Parameter Store for secrets")
	} else {
		resolver = secret.NewEnvResolver()
	}

	clientSecrets, clientSecretName := secret.Resolver(secret.NewFileResolver()), cfg.CredentialsFile
	if cfg.CredentialsParam != "" {
		clientSecrets, clientSecretName = resolver, cfg.CredentialsParam
	}

	stateSecret, err := resolver.GetSecret(ctx, cfg.StateSecretParam)
	var stateKey []byte
	if err != nil {
		log.Printf("[app] WARNING: state secret unavailable (%v), using a per-process key", err)
		stateKey = make([]byte, 32)
		if _, err := rand.Read(stateKey); err != nil {
			return nil, fmt.Errorf("generate state key: %w", err)
		}
	} else {
		stateKey = []byte(stateSecret)
	}

	// ---------- Token Store ----------
	var store auth.TokenStore
	switch cfg.TokenStore {
	case config.TokenStoreDynamoDB:
		var enc crypto.Encryptor
		if cfg.DevMode {
			enc = crypto.NewMockEncryptor()
			log.Printf("[app] using MockEncryptor (DEV_MODE=true)")
		} else {
			enc = crypto.NewKMSService(kms.NewFromConfig(awsCfg), cfg.KMSKeyID)
		}
		store = tokenstore.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.TokenTable, enc)
		log.Printf("[app] storing credentials in DynamoDB table %s", cfg.TokenTable)
	case config.TokenStoreMemory:
		store = tokenstore.NewMemoryStore()
		log.Printf("[app] storing credentials in memory")
	default:
		store = tokenstore.NewFileStore(cfg.TokenDir)
		log.Printf("[app] storing credentials under %s", cfg.TokenDir)
	}

	creds := auth.NewCredentialManager(clientSecrets, clientSecretName, cfg.RedirectURL, store)

	return New(
		handler.NewAuthHandler(creds, stateKey, cfg.FrontendURL),
		handler.NewDriveHandler(googledrive.NewGateway(creds, cfg.RootFolderID)),
		handler.NewDocsHandler(googledocs.NewGateway(creds)),
		handler.NewSheetsHandler(googlesheets.NewGateway(creds)),
		cfg.AllowedOrigins,
	), nil
}
