package dynamodb

import (
	"context"
	"fmt"

	"seds-backend/application/ports"
	"seds-backend/domain/core/entities"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// AnswerRepository stores answer records keyed by answer_entry, with a
// secondary index on state_form.
type AnswerRepository struct {
	client    DynamoDBAPI
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewAnswerRepository creates a new AnswerRepository
func NewAnswerRepository(client DynamoDBAPI, tableName, indexName string, logger *zap.Logger) *AnswerRepository {
	return &AnswerRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

var _ ports.AnswerRepository = (*AnswerRepository)(nil)

// ListByStateForm queries the state form index for every answer of a form
func (r *AnswerRepository) ListByStateForm(ctx context.Context, stateForm string) ([]entities.AnswerRecord, error) {
	keyCond := expression.Key("state_form").Equal(expression.Value(stateForm))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	answers := []entities.AnswerRecord{}
	err = queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, &answers)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Answers loaded",
		zap.String("state_form", stateForm),
		zap.Int("count", len(answers)),
	)
	return answers, nil
}

// Save writes rows and provenance of an existing record. A record that does
// not exist is never created and yields ErrAnswerNotFound.
func (r *AnswerRepository) Save(ctx context.Context, answer entities.AnswerRecord) error {
	update := expression.Set(expression.Name("rows"), expression.Value(answer.Rows)).
		Set(expression.Name("last_modified"), expression.Value(answer.LastModified)).
		Set(expression.Name("last_modified_by"), expression.Value(answer.LastModifiedBy))
	cond := expression.AttributeExists(expression.Name("answer_entry"))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       stringKey("answer_entry", answer.AnswerEntry),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return pkgerrors.ErrAnswerNotFound
		}
		return pkgerrors.NewDatabaseError("save answer", err)
	}

	r.logger.Debug("Answer saved", zap.String("answer_entry", answer.AnswerEntry))
	return nil
}

// StateFormsWithAnswers scans the table for the set of state forms that
// have at least one answer.
func (r *AnswerRepository) StateFormsWithAnswers(ctx context.Context) (map[string]struct{}, error) {
	proj := expression.NamesList(expression.Name("state_form"))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan: %w", err)
	}

	var keys []struct {
		StateForm string `dynamodbav:"state_form"`
	}
	err = scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	}, &keys)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k.StateForm] = struct{}{}
	}
	return set, nil
}
