package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"seds-backend/application/commands"
	"seds-backend/application/commands/bus"
	"seds-backend/application/ports/mocks"
	"seds-backend/domain/config"
	"seds-backend/domain/core/entities"
	"seds-backend/infrastructure/persistence/memory"
	"seds-backend/pkg/auth"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []bus.Command
}

func (s *recordingSender) Send(ctx context.Context, cmd bus.Command) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, cmd)
	return "done", nil
}

type fixedConfirmer struct {
	answer bool
	err    error
}

func (f fixedConfirmer) Confirm(ctx context.Context, req ConfirmationRequest) (ConfirmationResponse, error) {
	return ConfirmationResponse{Confirmed: f.answer}, f.err
}

var (
	admin      = auth.UserContext{UserID: "sub-admin", Username: "admin", Roles: []string{"admin"}}
	otherAdmin = auth.UserContext{UserID: "sub-other", Username: "other", Roles: []string{"admin"}}
)

func newConfirmationService(sender CommandSender) (*ConfirmationService, *memory.ConfirmationStore) {
	store := memory.NewConfirmationStore()
	svc := NewConfirmationService(store, sender, time.Minute, zap.NewNop()).
		Handle(commands.ActionSetUserActive, JSONDecoder[commands.SetUserActiveCommand]())
	return svc, store
}

func TestConfirmationConfirmed(t *testing.T) {
	sender := &recordingSender{}
	svc, store := newConfirmationService(sender)
	cmd := commands.SetUserActiveCommand{UserID: "7", Active: false, Actor: admin}

	req, err := svc.Request(context.Background(), admin.UserID, commands.ActionSetUserActive, "Are you sure you want to deactivate user jdoe?", cmd)
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, 1, store.Len())

	result, err := svc.Resolve(context.Background(), admin, ConfirmationResponse{ID: req.ID, Confirmed: true})

	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, []bus.Command{cmd}, sender.sent)
	assert.Equal(t, 0, store.Len())

	_, err = svc.Resolve(context.Background(), admin, ConfirmationResponse{ID: req.ID, Confirmed: true})
	assert.ErrorIs(t, err, pkgerrors.ErrConfirmationNotFound)
}

func TestConfirmationSurvivesNewInstance(t *testing.T) {
	sender := &recordingSender{}
	first, store := newConfirmationService(sender)
	second := NewConfirmationService(store, sender, time.Minute, zap.NewNop()).
		Handle(commands.ActionSetUserActive, JSONDecoder[commands.SetUserActiveCommand]())

	req, err := first.Request(context.Background(), admin.UserID, commands.ActionSetUserActive, "Activate?", commands.SetUserActiveCommand{UserID: "7", Active: true, Actor: admin})
	require.NoError(t, err)

	_, err = second.Resolve(context.Background(), admin, ConfirmationResponse{ID: req.ID, Confirmed: true})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, commands.SetUserActiveCommand{UserID: "7", Active: true, Actor: admin}, sender.sent[0])
}

func TestConfirmationResolvesOnce(t *testing.T) {
	sender := &recordingSender{}
	svc, _ := newConfirmationService(sender)
	req, err := svc.Request(context.Background(), admin.UserID, commands.ActionSetUserActive, "?", commands.SetUserActiveCommand{UserID: "7"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Resolve(context.Background(), admin, ConfirmationResponse{ID: req.ID, Confirmed: true})
		}()
	}
	wg.Wait()

	assert.Len(t, sender.sent, 1)
}

func TestConfirmationDeclined(t *testing.T) {
	sender := &recordingSender{}
	svc, store := newConfirmationService(sender)

	req, err := svc.Request(context.Background(), admin.UserID, commands.ActionSetUserActive, "Activate?", commands.SetUserActiveCommand{UserID: "7", Active: true})
	require.NoError(t, err)

	result, err := svc.Resolve(context.Background(), admin, ConfirmationResponse{ID: req.ID, Confirmed: false})

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, sender.sent)
	assert.Equal(t, 0, store.Len())
}

func TestConfirmationRejections(t *testing.T) {
	t.Run("invalid command", func(t *testing.T) {
		svc, store := newConfirmationService(&recordingSender{})
		_, err := svc.Request(context.Background(), admin.UserID, commands.ActionSetUserActive, "?", commands.SetUserActiveCommand{})
		assert.Error(t, err)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("unregistered action", func(t *testing.T) {
		svc, store := newConfirmationService(&recordingSender{})
		_, err := svc.Request(context.Background(), admin.UserID, "delete_everything", "?", commands.SetUserActiveCommand{UserID: "7"})
		assert.Error(t, err)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("other user", func(t *testing.T) {
		sender := &recordingSender{}
		svc, store := newConfirmationService(sender)
		req, err := svc.Request(context.Background(), admin.UserID, commands.ActionSetUserActive, "?", commands.SetUserActiveCommand{UserID: "7"})
		require.NoError(t, err)

		_, err = svc.Resolve(context.Background(), otherAdmin, ConfirmationResponse{ID: req.ID, Confirmed: true})
		assert.ErrorIs(t, err, pkgerrors.ErrUserNotAuthorized)
		assert.Empty(t, sender.sent)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("expired", func(t *testing.T) {
		sender := &recordingSender{}
		svc, _ := newConfirmationService(sender)
		now := time.Date(2021, 4, 1, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return now }
		req, err := svc.Request(context.Background(), admin.UserID, commands.ActionSetUserActive, "?", commands.SetUserActiveCommand{UserID: "7"})
		require.NoError(t, err)

		now = now.Add(2 * time.Minute)
		_, err = svc.Resolve(context.Background(), admin, ConfirmationResponse{ID: req.ID, Confirmed: true})
		assert.ErrorIs(t, err, pkgerrors.ErrConfirmationNotFound)
		assert.Empty(t, sender.sent)
	})
}

func TestConfirmationRun(t *testing.T) {
	sender := &recordingSender{}
	svc, store := newConfirmationService(sender)

	result, err := svc.Run(context.Background(), fixedConfirmer{answer: true}, admin, commands.ActionSetUserActive, "?", commands.SetUserActiveCommand{UserID: "7"})
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Len(t, sender.sent, 1)

	_, err = svc.Run(context.Background(), fixedConfirmer{err: errors.New("stdin closed")}, admin, commands.ActionSetUserActive, "?", commands.SetUserActiveCommand{UserID: "7"})
	assert.Error(t, err)
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, 0, store.Len())
}

func TestMissingAnswersScan(t *testing.T) {
	forms := &mocks.StateFormRepository{}
	answers := &mocks.AnswerRepository{}
	forms.On("ScanAll", mock.Anything).Return([]entities.FormStatus{
		{StateForm: "MD-2021-1-21E", CreatedBy: "seed"},
		{StateForm: "AL-2021-1-64.ECI", CreatedBy: "seed"},
		{StateForm: "AL-2021-1-21E", CreatedBy: "jdoe"},
		{StateForm: "AL-2021-1-64.21E", CreatedBy: "seed"},
	}, nil)
	answers.On("StateFormsWithAnswers", mock.Anything).Return(map[string]struct{}{"AL-2021-1-21E": {}}, nil)

	scanner := NewMissingAnswersScanner(forms, answers, config.Static{}, zap.NewNop())
	report, err := scanner.Scan(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, []string{
		"AL-2021-1-64.21E, seed",
		"AL-2021-1-64.ECI, seed",
		"MD-2021-1-21E, seed",
	}, report.Missing)
	assert.Equal(t, []string{
		"AL-2021-1-64.21E, seed",
		"MD-2021-1-21E, seed",
	}, report.MissingNonECI)
}

func TestMissingAnswersScanError(t *testing.T) {
	forms := &mocks.StateFormRepository{}
	forms.On("ScanAll", mock.Anything).Return(nil, errors.New("throttled"))

	scanner := NewMissingAnswersScanner(forms, &mocks.AnswerRepository{}, config.Static{}, zap.NewNop())
	_, err := scanner.Scan(context.Background())

	assert.ErrorContains(t, err, "throttled")
}
