package dynamodb

import (
	"context"
	"fmt"
	"strconv"

	"seds-backend/application/ports"
	"seds-backend/domain/core/entities"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// createAttempts bounds retries when two writers race for the same id.
const createAttempts = 3

// UserRepository stores users keyed by a numeric string userId
type UserRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *UserRepository {
	return &UserRepository{client: client, tableName: tableName, logger: logger}
}

var _ ports.UserRepository = (*UserRepository)(nil)

// Get loads a user by id
func (r *UserRepository) Get(ctx context.Context, userID string) (*entities.User, error) {
	var user entities.User
	found, err := getItem(ctx, r.client, r.tableName, stringKey("userId", userID), &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.ErrUserNotFound
	}
	return &user, nil
}

// GetByUsername finds a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, "username", username)
}

// GetBySub finds a user by identity provider subject
func (r *UserRepository) GetBySub(ctx context.Context, usernameSub string) (*entities.User, error) {
	return r.findOne(ctx, "usernameSub", usernameSub)
}

func (r *UserRepository) findOne(ctx context.Context, attr, value string) (*entities.User, error) {
	filter := expression.Name(attr).Equal(expression.Value(value))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan: %w", err)
	}

	var users []entities.User
	err = scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, &users)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, pkgerrors.ErrUserNotFound
	}
	return &users[0], nil
}

// List scans every user
func (r *UserRepository) List(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)}, &users)
	return users, err
}

// Create stores user under the highest existing id plus one. The put is
// conditional on the id being free and is retried when another writer wins.
func (r *UserRepository) Create(ctx context.Context, user entities.User) (*entities.User, error) {
	for attempt := 1; attempt <= createAttempts; attempt++ {
		next, err := r.nextUserID(ctx)
		if err != nil {
			return nil, err
		}
		user.UserID = strconv.Itoa(next)

		item, err := attributevalue.MarshalMap(user)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal user: %w", err)
		}

		expr, err := expression.NewBuilder().
			WithCondition(expression.AttributeNotExists(expression.Name("userId"))).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build condition: %w", err)
		}

		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(r.tableName),
			Item:                     item,
			ConditionExpression:      expr.Condition(),
			ExpressionAttributeNames: expr.Names(),
		})
		if err == nil {
			r.logger.Info("User stored",
				zap.String("user_id", user.UserID),
				zap.String("username", user.Username),
			)
			return &user, nil
		}
		if !isConditionFailed(err) {
			return nil, pkgerrors.NewDatabaseError("create user", err)
		}
		r.logger.Warn("User id taken, retrying",
			zap.String("user_id", user.UserID),
			zap.Int("attempt", attempt),
		)
	}
	return nil, pkgerrors.ErrConcurrentModification
}

func (r *UserRepository) nextUserID(ctx context.Context) (int, error) {
	proj := expression.NamesList(expression.Name("userId"))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build scan: %w", err)
	}

	var ids []struct {
		UserID string `dynamodbav:"userId"`
	}
	err = scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	}, &ids)
	if err != nil {
		return 0, err
	}

	next := 0
	for _, id := range ids {
		if n, err := strconv.Atoi(id.UserID); err == nil && n+1 > next {
			next = n + 1
		}
	}
	return next, nil
}

// SetActive flips the isActive flag of an existing user
func (r *UserRepository) SetActive(ctx context.Context, userID string, active bool) error {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name("isActive"), expression.Value(active))).
		WithCondition(expression.AttributeExists(expression.Name("userId"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       stringKey("userId", userID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return pkgerrors.ErrUserNotFound
		}
		return pkgerrors.NewDatabaseError("set user active", err)
	}
	return nil
}
