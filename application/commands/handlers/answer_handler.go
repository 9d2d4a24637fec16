// Package handlers implements the command handlers registered on the command bus.
package handlers

import (
	"context"
	"fmt"
	"time"

	"seds-backend/application/commands"
	"seds-backend/application/ports"
	"seds-backend/application/store"
	"seds-backend/domain/config"
	"seds-backend/domain/core/grid"
	"seds-backend/domain/core/totals"
	"seds-backend/domain/core/validators"
	"seds-backend/domain/core/valueobjects"
	"seds-backend/domain/events"
	pkgerrors "seds-backend/pkg/errors"

	"go.uber.org/zap"
)

// SaveAnswerHandler commits edited grids
type SaveAnswerHandler struct {
	answers   ports.AnswerRepository
	forms     ports.StateFormRepository
	publisher ports.EventPublisher
	metrics   ports.MetricsRecorder
	rules     config.Source
	validator *validators.AnswerValidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewSaveAnswerHandler creates a new save answer handler
func NewSaveAnswerHandler(
	answers ports.AnswerRepository,
	forms ports.StateFormRepository,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	rules config.Source,
	logger *zap.Logger,
) *SaveAnswerHandler {
	return &SaveAnswerHandler{
		answers:   answers,
		forms:     forms,
		publisher: publisher,
		metrics:   metrics,
		rules:     rules,
		validator: validators.NewAnswerValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Handle loads the form into a fresh store, commits the edit through it and
// persists the replaced record.
func (h *SaveAnswerHandler) Handle(ctx context.Context, cmd commands.SaveAnswerCommand) (*commands.SaveAnswerResult, error) {
	entry, err := valueobjects.ParseAnswerEntry(cmd.AnswerEntry)
	if err != nil {
		return nil, err
	}
	if !cmd.Actor.CanEditState(entry.StateForm().State()) {
		return nil, pkgerrors.ErrUserNotAuthorized
	}

	status, err := h.forms.Get(ctx, cmd.StateForm)
	if err != nil {
		return nil, fmt.Errorf("failed to get form status: %w", err)
	}
	if status.IsCertified() {
		return nil, pkgerrors.ErrFormCertified
	}

	answers, err := h.answers.ListByStateForm(ctx, cmd.StateForm)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	rules := h.rules.Current()
	s := store.New(rules)
	s.Dispatch(store.NewLoadForm(nil, answers, *status))

	record, found := s.Answer(cmd.AnswerEntry)
	if !found || !s.CanCommit(cmd.AnswerEntry) {
		h.logger.Debug("Answer not committed",
			zap.String("answer_entry", cmd.AnswerEntry),
			zap.Bool("found", found),
		)
		return &commands.SaveAnswerResult{Committed: false}, nil
	}

	if err := h.validator.ValidateGridEdit(record, cmd.Values); err != nil {
		return nil, err
	}

	now := h.now()
	updated, committed := s.Commit(cmd.AnswerEntry, grid.NewMatrix(cmd.Values), cmd.Actor.DisplayName(), now)
	if !committed {
		return &commands.SaveAnswerResult{Committed: false}, nil
	}

	if err := h.answers.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	publish(ctx, h.publisher, h.logger, events.NewAnswerUpdated(cmd.StateForm, cmd.AnswerEntry, cmd.Actor.DisplayName(), now))
	countMetric(ctx, h.metrics, "AnswerCommitted", map[string]string{
		"State": entry.StateForm().State(),
		"Form":  entry.StateForm().Form(),
	})

	result := totals.Compute(updated.Matrix(), totals.Options{
		Synthesized: rules.IsSynthesized(updated.QuestionOrdinal()),
	})
	return &commands.SaveAnswerResult{
		Committed: true,
		Answer:    &updated,
		Totals:    &result,
	}, nil
}

func publish(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, event events.DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.String("aggregate_id", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}

func countMetric(ctx context.Context, metrics ports.MetricsRecorder, name string, dims map[string]string) {
	if metrics == nil {
		return
	}
	metrics.RecordBusinessMetric(ctx, name, 1, dims)
}
