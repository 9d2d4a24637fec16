package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seds-backend/application/ports"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ConfirmationStore keeps pending confirmations in a table keyed by
// confirmation_id, with expires_at as the table's TTL attribute. Every
// Lambda instance sees the same entries.
type ConfirmationStore struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewConfirmationStore creates a new ConfirmationStore
func NewConfirmationStore(client DynamoDBAPI, tableName string, logger *zap.Logger) *ConfirmationStore {
	return &ConfirmationStore{client: client, tableName: tableName, logger: logger}
}

var _ ports.ConfirmationStore = (*ConfirmationStore)(nil)

func (s *ConfirmationStore) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"confirmation_id": &types.AttributeValueMemberS{Value: id},
	}
}

// Put writes a new entry. Ids are never reused.
func (s *ConfirmationStore) Put(ctx context.Context, p ports.PendingConfirmation) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("confirmation_id"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build put: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.tableName),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("put confirmation", err)
	}
	return nil
}

// Claim deletes the entry with a condition on requester and expiry and
// returns the deleted attributes. Of two concurrent claims only one delete
// matches.
func (s *ConfirmationStore) Claim(ctx context.Context, id, requestedBy string, now time.Time) (*ports.PendingConfirmation, error) {
	cond := expression.And(
		expression.AttributeExists(expression.Name("confirmation_id")),
		expression.Name("requested_by").Equal(expression.Value(requestedBy)),
		expression.Name("expires_at").GreaterThanEqual(expression.Value(now.Unix())),
	)
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build claim: %w", err)
	}

	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       s.key(id),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllOld,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, s.claimFailure(ctx, id, requestedBy, now)
		}
		return nil, pkgerrors.NewDatabaseError("claim confirmation", err)
	}

	var p ports.PendingConfirmation
	if err := attributevalue.UnmarshalMap(out.Attributes, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal confirmation: %w", err)
	}
	return &p, nil
}

// claimFailure picks the error for a failed conditional delete. The read
// happens after the delete, so it only classifies the failure.
func (s *ConfirmationStore) claimFailure(ctx context.Context, id, requestedBy string, now time.Time) error {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil || len(out.Item) == 0 {
		return pkgerrors.ErrConfirmationNotFound
	}

	var p ports.PendingConfirmation
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil || p.Expired(now) {
		return pkgerrors.ErrConfirmationNotFound
	}
	if p.RequestedBy != requestedBy {
		s.logger.Warn("Confirmation claimed by another user",
			zap.String("confirmation_id", id),
			zap.String("requested_by", p.RequestedBy),
			zap.String("claimed_by", requestedBy),
		)
		return pkgerrors.ErrUserNotAuthorized
	}
	return pkgerrors.ErrConfirmationNotFound
}

// Delete drops an entry
func (s *ConfirmationStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(id),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("delete confirmation", err)
	}
	return nil
}
