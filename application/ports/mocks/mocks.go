// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"

	"seds-backend/domain/core/entities"
	"seds-backend/domain/events"

	"github.com/stretchr/testify/mock"
)

type AnswerRepository struct {
	mock.Mock
}

func (m *AnswerRepository) ListByStateForm(ctx context.Context, stateForm string) ([]entities.AnswerRecord, error) {
	args := m.Called(ctx, stateForm)
	answers, _ := args.Get(0).([]entities.AnswerRecord)
	return answers, args.Error(1)
}

func (m *AnswerRepository) Save(ctx context.Context, answer entities.AnswerRecord) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *AnswerRepository) StateFormsWithAnswers(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	set, _ := args.Get(0).(map[string]struct{})
	return set, args.Error(1)
}

type QuestionRepository struct {
	mock.Mock
}

func (m *QuestionRepository) ListByFormYear(ctx context.Context, form string, year int) ([]entities.Question, error) {
	args := m.Called(ctx, form, year)
	questions, _ := args.Get(0).([]entities.Question)
	return questions, args.Error(1)
}

type StateFormRepository struct {
	mock.Mock
}

func (m *StateFormRepository) Get(ctx context.Context, stateForm string) (*entities.FormStatus, error) {
	args := m.Called(ctx, stateForm)
	status, _ := args.Get(0).(*entities.FormStatus)
	return status, args.Error(1)
}

func (m *StateFormRepository) ListByQuarter(ctx context.Context, state string, year, quarter int) ([]entities.FormStatus, error) {
	args := m.Called(ctx, state, year, quarter)
	statuses, _ := args.Get(0).([]entities.FormStatus)
	return statuses, args.Error(1)
}

func (m *StateFormRepository) SaveStatus(ctx context.Context, status entities.FormStatus) error {
	args := m.Called(ctx, status)
	return args.Error(0)
}

func (m *StateFormRepository) ScanAll(ctx context.Context) ([]entities.FormStatus, error) {
	args := m.Called(ctx)
	statuses, _ := args.Get(0).([]entities.FormStatus)
	return statuses, args.Error(1)
}

type FormTypeRepository struct {
	mock.Mock
}

func (m *FormTypeRepository) List(ctx context.Context) ([]entities.FormType, error) {
	args := m.Called(ctx)
	forms, _ := args.Get(0).([]entities.FormType)
	return forms, args.Error(1)
}

type FormTemplateRepository struct {
	mock.Mock
}

func (m *FormTemplateRepository) GetByYear(ctx context.Context, year int) ([]entities.FormTemplate, error) {
	args := m.Called(ctx, year)
	templates, _ := args.Get(0).([]entities.FormTemplate)
	return templates, args.Error(1)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Get(ctx context.Context, userID string) (*entities.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*entities.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*entities.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetBySub(ctx context.Context, usernameSub string) (*entities.User, error) {
	args := m.Called(ctx, usernameSub)
	user, _ := args.Get(0).(*entities.User)
	return user, args.Error(1)
}

func (m *UserRepository) List(ctx context.Context) ([]entities.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]entities.User)
	return users, args.Error(1)
}

func (m *UserRepository) Create(ctx context.Context, user entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*entities.User)
	return created, args.Error(1)
}

func (m *UserRepository) SetActive(ctx context.Context, userID string, active bool) error {
	args := m.Called(ctx, userID, active)
	return args.Error(0)
}

type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

type MetricsRecorder struct {
	mock.Mock
}

func (m *MetricsRecorder) RecordBusinessMetric(ctx context.Context, name string, value float64, dimensions map[string]string) {
	m.Called(ctx, name, value, dimensions)
}
