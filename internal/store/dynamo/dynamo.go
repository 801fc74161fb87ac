// Package dynamo implements the transaction Store on DynamoDB. The table is
// keyed by txid, so the conditional put doubles as the uniqueness constraint
// that backstops identifier generation.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/microcash/transactions-api/internal/apperrors"
	"github.com/microcash/transactions-api/internal/domain"
)

// Config holds the DynamoDB connection settings.
type Config struct {
	Region string
	// Endpoint overrides the AWS endpoint, e.g. for a local DynamoDB.
	Endpoint string
}

// Store is a DynamoDB-backed transaction store.
type Store struct {
	client    *dynamodb.Client
	tableName string
}

// record is the table shape. Amounts travel as strings so the decimal scale
// survives the round trip.
type record struct {
	ID              int64     `dynamodbav:"id"`
	Txid            string    `dynamodbav:"txid"`
	E2eID           string    `dynamodbav:"e2eId,omitempty"`
	PayerName       string    `dynamodbav:"payerName,omitempty"`
	PayerDocument   string    `dynamodbav:"payerDocument,omitempty"`
	PayerBank       string    `dynamodbav:"payerBank,omitempty"`
	PayerBranch     string    `dynamodbav:"payerBranch,omitempty"`
	PayerAccount    string    `dynamodbav:"payerAccount,omitempty"`
	PayeeName       string    `dynamodbav:"payeeName,omitempty"`
	PayeeDocument   string    `dynamodbav:"payeeDocument,omitempty"`
	PayeeBank       string    `dynamodbav:"payeeBank,omitempty"`
	PayeeBranch     string    `dynamodbav:"payeeBranch,omitempty"`
	PayeeAccount    string    `dynamodbav:"payeeAccount,omitempty"`
	Amount          string    `dynamodbav:"amount"`
	TransactionDate time.Time `dynamodbav:"transactionDate"`
}

// NewClient builds a DynamoDB client for the given region, optionally
// pointed at a custom endpoint such as a local DynamoDB.
func NewClient(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	if cfg.Endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: cfg.Endpoint, SigningRegion: cfg.Region}, nil
			})
	}

	return dynamodb.NewFromConfig(awsCfg), nil
}

// New binds a Store to its table and verifies the table exists.
func New(ctx context.Context, client *dynamodb.Client, tableName string) (*Store, error) {
	s := &Store{
		client:    client,
		tableName: tableName,
	}

	if _, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	}); err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("table %s does not exist", s.tableName)
		}
		return nil, fmt.Errorf("error checking table: %w", err)
	}

	return s, nil
}

func (s *Store) GetAll(ctx context.Context) ([]domain.Transaction, error) {
	return s.scan(ctx)
}

func (s *Store) GetPage(ctx context.Context, page, pageSize int) ([]domain.Transaction, error) {
	// DynamoDB has no offset scans; tables here stay small enough that a
	// full scan plus a client-side slice matches the SQL Skip/Take the
	// read path is specified against.
	all, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return []domain.Transaction{}, nil
	}

	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *Store) GetByTxid(ctx context.Context, txid string) (*domain.Transaction, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"txid": &types.AttributeValueMemberS{Value: txid},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, unavailable("GetItem", err)
	}

	if len(out.Item) == 0 {
		return nil, nil
	}

	var rec record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return rec.toDomain()
}

func (s *Store) Insert(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if tx.ID == 0 {
		tx.ID = time.Now().UnixNano()
	}

	item, err := attributevalue.MarshalMap(toRecord(tx))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(txid)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, apperrors.New(apperrors.KindConflict, "a transaction with this txid already exists")
		}
		return nil, unavailable("PutItem", err)
	}

	return &tx, nil
}

func (s *Store) Update(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	item, err := attributevalue.MarshalMap(toRecord(tx))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(txid)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, apperrors.New(apperrors.KindNotFound, "transaction not found")
		}
		return nil, unavailable("PutItem", err)
	}

	return &tx, nil
}

func (s *Store) DeleteByTxid(ctx context.Context, txid string) (*domain.Transaction, error) {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"txid": &types.AttributeValueMemberS{Value: txid},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, unavailable("DeleteItem", err)
	}

	if len(out.Attributes) == 0 {
		return nil, apperrors.New(apperrors.KindNotFound, "transaction not found")
	}

	var rec record
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return rec.toDomain()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	total := 0
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
		Select:    types.SelectCount,
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, unavailable("Scan", err)
		}
		total += int(page.Count)
	}
	return total, nil
}

// scan reads the whole table and orders records by surrogate id, which is
// assigned monotonically at insert time.
func (s *Store) scan(ctx context.Context) ([]domain.Transaction, error) {
	var out []domain.Transaction

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, unavailable("Scan", err)
		}

		for _, item := range page.Items {
			var rec record
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
			}
			tx, err := rec.toDomain()
			if err != nil {
				return nil, err
			}
			out = append(out, *tx)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func toRecord(tx domain.Transaction) record {
	return record{
		ID:              tx.ID,
		Txid:            tx.Txid,
		E2eID:           tx.E2eID,
		PayerName:       tx.PayerName,
		PayerDocument:   tx.PayerDocument,
		PayerBank:       tx.PayerBank,
		PayerBranch:     tx.PayerBranch,
		PayerAccount:    tx.PayerAccount,
		PayeeName:       tx.PayeeName,
		PayeeDocument:   tx.PayeeDocument,
		PayeeBank:       tx.PayeeBank,
		PayeeBranch:     tx.PayeeBranch,
		PayeeAccount:    tx.PayeeAccount,
		Amount:          tx.Amount.String(),
		TransactionDate: tx.TransactionDate,
	}
}

func (r record) toDomain() (*domain.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", r.Amount, err)
	}

	return &domain.Transaction{
		ID:              r.ID,
		Txid:            r.Txid,
		E2eID:           r.E2eID,
		PayerName:       r.PayerName,
		PayerDocument:   r.PayerDocument,
		PayerBank:       r.PayerBank,
		PayerBranch:     r.PayerBranch,
		PayerAccount:    r.PayerAccount,
		PayeeName:       r.PayeeName,
		PayeeDocument:   r.PayeeDocument,
		PayeeBank:       r.PayeeBank,
		PayeeBranch:     r.PayeeBranch,
		PayeeAccount:    r.PayeeAccount,
		Amount:          amount,
		TransactionDate: r.TransactionDate,
	}, nil
}

func unavailable(op string, err error) error {
	return apperrors.Wrap(apperrors.KindUnavailable, op+" operation failed", err)
}
