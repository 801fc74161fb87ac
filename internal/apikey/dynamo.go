package apikey

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/microcash/transactions-api/internal/apperrors"
	"github.com/microcash/transactions-api/internal/domain"
)

// DynamoStore reads API keys from their DynamoDB table, keyed by the key
// value itself.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

type keyRecord struct {
	ID       int64  `dynamodbav:"id"`
	Key      string `dynamodbav:"key"`
	Name     string `dynamodbav:"name"`
	Document string `dynamodbav:"document"`
	Account  string `dynamodbav:"account"`
}

// NewDynamoStore wraps an existing DynamoDB client.
func NewDynamoStore(client *dynamodb.Client, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

func (s *DynamoStore) GetByKey(ctx context.Context, key string) (*domain.APIKey, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "GetItem operation failed", err)
	}

	if len(out.Item) == 0 {
		return nil, nil
	}

	var rec keyRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal api key: %w", err)
	}

	return &domain.APIKey{
		ID:       rec.ID,
		Key:      rec.Key,
		Name:     rec.Name,
		Document: rec.Document,
		Account:  rec.Account,
	}, nil
}
