package tokenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/oauth2"

	"github.com/jun/gophdrive/gateway/internal/auth"
	"github.com/jun/gophdrive/gateway/internal/crypto"
	"github.com/jun/gophdrive/gateway/internal/model"
)

// DynamoAPI is the subset of *dynamodb.Client methods used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoStore keeps one item per user in a DynamoDB table keyed by user_id.
// The refresh token is encrypted before it is written.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	encryptor crypto.Encryptor
}

var _ auth.TokenStore = (*DynamoStore)(nil)

func NewDynamoStore(client DynamoAPI, tableName string, encryptor crypto.Encryptor) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName, encryptor: encryptor}
}

func (s *DynamoStore) key(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id": &types.AttributeValueMemberS{Value: userID},
	}
}

func (s *DynamoStore) Load(ctx context.Context, userID string) (*oauth2.Token, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(userID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if out.Item == nil {
		return nil, auth.ErrTokenNotFound
	}

	var item model.UserToken
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user token: %w", err)
	}

	tok := &oauth2.Token{
		AccessToken: item.AccessToken,
		TokenType:   item.TokenType,
		Expiry:      item.Expiry,
	}
	if item.EncryptedRefreshToken != "" {
		rt, err := s.encryptor.Decrypt(ctx, item.EncryptedRefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
		}
		tok.RefreshToken = rt
	}
	return tok, nil
}

func (s *DynamoStore) Save(ctx context.Context, userID string, token *oauth2.Token) error {
	item := model.UserToken{
		UserID:      userID,
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Expiry:      token.Expiry,
		UpdatedAt:   time.Now(),
	}
	if token.RefreshToken != "" {
		enc, err := s.encryptor.Encrypt(ctx, token.RefreshToken)
		if err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		item.EncryptedRefreshToken = enc
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal user token: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to save token to DynamoDB: %w", err)
	}
	return nil
}

// Delete removes the item. DeleteItem on a missing key succeeds.
func (s *DynamoStore) Delete(ctx context.Context, userID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(userID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete token from DynamoDB: %w", err)
	}
	return nil
}
