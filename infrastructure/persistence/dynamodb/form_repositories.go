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

// QuestionRepository reads the form-questions table
type QuestionRepository struct {
	client    DynamoDBAPI
	tableName string
}

// NewQuestionRepository creates a new QuestionRepository
func NewQuestionRepository(client DynamoDBAPI, tableName string) *QuestionRepository {
	return &QuestionRepository{client: client, tableName: tableName}
}

var _ ports.QuestionRepository = (*QuestionRepository)(nil)

// ListByFormYear scans for the questions of one form and year
func (r *QuestionRepository) ListByFormYear(ctx context.Context, form string, year int) ([]entities.Question, error) {
	filter := expression.Name("form").Equal(expression.Value(form)).
		And(expression.Name("year").Equal(expression.Value(year)))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan: %w", err)
	}

	var questions []entities.Question
	err = scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, &questions)
	return questions, err
}

// StateFormRepository reads and updates the state-forms table
type StateFormRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewStateFormRepository creates a new StateFormRepository
func NewStateFormRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *StateFormRepository {
	return &StateFormRepository{client: client, tableName: tableName, logger: logger}
}

var _ ports.StateFormRepository = (*StateFormRepository)(nil)

// Get loads the status record of a state form
func (r *StateFormRepository) Get(ctx context.Context, stateForm string) (*entities.FormStatus, error) {
	var status entities.FormStatus
	found, err := getItem(ctx, r.client, r.tableName, stringKey("state_form", stateForm), &status)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.ErrFormNotFound
	}
	return &status, nil
}

// ListByQuarter scans for a state's forms in one quarter
func (r *StateFormRepository) ListByQuarter(ctx context.Context, state string, year, quarter int) ([]entities.FormStatus, error) {
	filter := expression.Name("state_id").Equal(expression.Value(state)).
		And(expression.Name("year").Equal(expression.Value(year))).
		And(expression.Name("quarter").Equal(expression.Value(quarter)))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan: %w", err)
	}

	var statuses []entities.FormStatus
	err = scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, &statuses)
	return statuses, err
}

// SaveStatus writes the status fields of an existing state form
func (r *StateFormRepository) SaveStatus(ctx context.Context, status entities.FormStatus) error {
	update := expression.Set(expression.Name("status"), expression.Value(status.Status)).
		Set(expression.Name("status_id"), expression.Value(status.StatusID)).
		Set(expression.Name("status_date"), expression.Value(status.StatusDate)).
		Set(expression.Name("status_modified_by"), expression.Value(status.StatusModifiedBy)).
		Set(expression.Name("last_modified"), expression.Value(status.LastModified)).
		Set(expression.Name("last_modified_by"), expression.Value(status.LastModifiedBy)).
		Set(expression.Name("state_comments"), expression.Value(status.StateComments)).
		Set(expression.Name("not_applicable"), expression.Value(status.NotApplicable))
	cond := expression.AttributeExists(expression.Name("state_form"))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       stringKey("state_form", status.StateForm),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return pkgerrors.ErrFormNotFound
		}
		return pkgerrors.NewDatabaseError("save form status", err)
	}

	r.logger.Debug("Form status saved",
		zap.String("state_form", status.StateForm),
		zap.Int("status_id", status.StatusID),
	)
	return nil
}

// ScanAll reads every state form
func (r *StateFormRepository) ScanAll(ctx context.Context) ([]entities.FormStatus, error) {
	var statuses []entities.FormStatus
	err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)}, &statuses)
	return statuses, err
}

// FormTypeRepository reads the forms catalogue
type FormTypeRepository struct {
	client    DynamoDBAPI
	tableName string
}

// NewFormTypeRepository creates a new FormTypeRepository
func NewFormTypeRepository(client DynamoDBAPI, tableName string) *FormTypeRepository {
	return &FormTypeRepository{client: client, tableName: tableName}
}

var _ ports.FormTypeRepository = (*FormTypeRepository)(nil)

// List scans the catalogue
func (r *FormTypeRepository) List(ctx context.Context) ([]entities.FormType, error) {
	var forms []entities.FormType
	err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)}, &forms)
	return forms, err
}

// FormTemplateRepository reads the form-templates table, keyed by year
type FormTemplateRepository struct {
	client    DynamoDBAPI
	tableName string
}

// NewFormTemplateRepository creates a new FormTemplateRepository
func NewFormTemplateRepository(client DynamoDBAPI, tableName string) *FormTemplateRepository {
	return &FormTemplateRepository{client: client, tableName: tableName}
}

var _ ports.FormTemplateRepository = (*FormTemplateRepository)(nil)

// GetByYear queries the templates of a year
func (r *FormTemplateRepository) GetByYear(ctx context.Context, year int) ([]entities.FormTemplate, error) {
	keyCond := expression.Key("year").Equal(expression.Value(year))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	templates := []entities.FormTemplate{}
	err = queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, &templates)
	return templates, err
}
