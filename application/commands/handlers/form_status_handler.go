package handlers

import (
	"context"
	"fmt"
	"time"

	"seds-backend/application/commands"
	"seds-backend/application/ports"
	"seds-backend/application/sagas"
	"seds-backend/application/store"
	"seds-backend/domain/config"
	"seds-backend/domain/core/entities"
	"seds-backend/domain/core/valueobjects"
	"seds-backend/domain/events"
	"seds-backend/pkg/auth"
	pkgerrors "seds-backend/pkg/errors"
	"seds-backend/pkg/utils"

	"go.uber.org/zap"
)

// ErrFormNotCertified is returned when uncertifying a form that is not certified.
var ErrFormNotCertified = pkgerrors.NewDomainError(
	pkgerrors.DomainBusinessRuleError,
	"FORM_NOT_CERTIFIED",
	"Only a certified form can be uncertified",
)

// FormStatusHandler handles the certification workflow and the other edits
// of a form's status record.
type FormStatusHandler struct {
	forms     ports.StateFormRepository
	publisher ports.EventPublisher
	metrics   ports.MetricsRecorder
	rules     config.Source
	logger    *zap.Logger
	now       func() time.Time

	notifyRetries    int
	notifyRetryDelay time.Duration
}

// NewFormStatusHandler creates a new form status handler
func NewFormStatusHandler(
	forms ports.StateFormRepository,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	rules config.Source,
	logger *zap.Logger,
) *FormStatusHandler {
	return &FormStatusHandler{
		forms:            forms,
		publisher:        publisher,
		metrics:          metrics,
		rules:            rules,
		logger:           logger,
		now:              time.Now,
		notifyRetries:    3,
		notifyRetryDelay: 200 * time.Millisecond,
	}
}

// load returns a store holding the current status of the state form after
// checking the actor may edit it.
func (h *FormStatusHandler) load(ctx context.Context, stateForm string, actor auth.UserContext) (*store.Store, entities.FormStatus, error) {
	sf, err := valueobjects.ParseStateForm(stateForm)
	if err != nil {
		return nil, entities.FormStatus{}, err
	}
	if !actor.CanEditState(sf.State()) {
		return nil, entities.FormStatus{}, pkgerrors.ErrUserNotAuthorized
	}

	status, err := h.forms.Get(ctx, stateForm)
	if err != nil {
		return nil, entities.FormStatus{}, fmt.Errorf("failed to get form status: %w", err)
	}

	s := store.New(h.rules.Current())
	s.Dispatch(store.LoadForm{StatusData: *status})
	return s, *status, nil
}

func (h *FormStatusHandler) save(ctx context.Context, status entities.FormStatus) error {
	if err := h.forms.SaveStatus(ctx, status); err != nil {
		return fmt.Errorf("failed to save form status: %w", err)
	}
	return nil
}

// Certify certifies the form provisionally or as final.
func (h *FormStatusHandler) Certify(ctx context.Context, cmd commands.CertifyFormCommand) (*entities.FormStatus, error) {
	s, _, err := h.load(ctx, cmd.StateForm, cmd.Actor)
	if err != nil {
		return nil, err
	}

	now := h.now()
	var action store.Action = store.CertifyProvisional{UserName: cmd.Actor.DisplayName(), At: now}
	if cmd.Final {
		action = store.CertifyFinal{UserName: cmd.Actor.DisplayName(), At: now}
	}
	status := s.Dispatch(action).StatusData

	if err := h.save(ctx, status); err != nil {
		return nil, err
	}

	publish(ctx, h.publisher, h.logger, events.NewFormCertified(cmd.StateForm, status.Status, status.StatusID, cmd.Final, cmd.Actor.DisplayName(), now))
	countMetric(ctx, h.metrics, "FormCertified", map[string]string{"Status": status.Status})
	return &status, nil
}

// Uncertify returns the form to In Progress. When notifications are enabled
// the business users are notified, and the status change is rolled back if
// the notification cannot be published.
func (h *FormStatusHandler) Uncertify(ctx context.Context, cmd commands.UncertifyFormCommand) (*entities.FormStatus, error) {
	s, previous, err := h.load(ctx, cmd.StateForm, cmd.Actor)
	if err != nil {
		return nil, err
	}
	if !previous.IsCertified() {
		return nil, ErrFormNotCertified
	}

	now := h.now()
	status := s.Dispatch(store.Uncertify{UserName: cmd.Actor.DisplayName(), At: now}).StatusData

	if !h.rules.Current().EnableUncertifyNotification || h.publisher == nil {
		if err := h.save(ctx, status); err != nil {
			return nil, err
		}
		return &status, nil
	}

	var role string
	if len(cmd.Actor.Roles) > 0 {
		role = cmd.Actor.Roles[0]
	}
	notice := events.NewFormUncertified(cmd.StateForm, cmd.Actor.DisplayName(), previous.State, role, cmd.Actor.Email, now)

	saga := sagas.NewSaga("uncertify-form", h.logger).
		AddStep(sagas.SagaStep{
			Name:       "save-status",
			Execute:    func(ctx context.Context) error { return h.save(ctx, status) },
			Compensate: func(ctx context.Context) error { return h.save(ctx, previous) },
		}).
		AddStep(sagas.SagaStep{
			Name:       "notify-business-users",
			Execute:    func(ctx context.Context) error { return h.publisher.Publish(ctx, notice) },
			MaxRetries: h.notifyRetries,
			RetryDelay: h.notifyRetryDelay,
		})

	if err := saga.Execute(ctx); err != nil {
		return nil, err
	}

	countMetric(ctx, h.metrics, "FormUncertified", map[string]string{"State": previous.State})
	return &status, nil
}

// UpdateSummaryNotes replaces the state comments of an uncertified form.
func (h *FormStatusHandler) UpdateSummaryNotes(ctx context.Context, cmd commands.UpdateSummaryNotesCommand) (*entities.FormStatus, error) {
	return h.editUncertified(ctx, cmd.StateForm, cmd.Actor, "state_comments", store.UpdateSummaryNotes{Comments: cmd.Comments})
}

// SetNotApplicable sets the not-applicable flag of an uncertified form.
func (h *FormStatusHandler) SetNotApplicable(ctx context.Context, cmd commands.SetNotApplicableCommand) (*entities.FormStatus, error) {
	return h.editUncertified(ctx, cmd.StateForm, cmd.Actor, "not_applicable", store.UpdateFormStatus{NotApplicable: cmd.NotApplicable})
}

func (h *FormStatusHandler) editUncertified(ctx context.Context, stateForm string, actor auth.UserContext, field string, action store.Action) (*entities.FormStatus, error) {
	s, previous, err := h.load(ctx, stateForm, actor)
	if err != nil {
		return nil, err
	}
	if previous.IsCertified() {
		return nil, pkgerrors.ErrFormCertified
	}

	now := h.now()
	status := s.Dispatch(action).StatusData
	status.LastModifiedBy = actor.DisplayName()
	status.LastModified = utils.FormatDate(now)

	if err := h.save(ctx, status); err != nil {
		return nil, err
	}

	publish(ctx, h.publisher, h.logger, events.NewFormStatusChanged(stateForm, field, actor.DisplayName(), now))
	return &status, nil
}
