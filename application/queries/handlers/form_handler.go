// Package handlers implements the query handlers registered on the query bus.
package handlers

import (
	"context"
	"fmt"

	"seds-backend/application/ports"
	"seds-backend/application/queries"
	"seds-backend/application/store"
	"seds-backend/domain/config"
	"seds-backend/domain/core/entities"
	"seds-backend/domain/core/valueobjects"
	pkgerrors "seds-backend/pkg/errors"

	"go.uber.org/zap"
)

// FormQueryHandler serves forms and their grids
type FormQueryHandler struct {
	answers   ports.AnswerRepository
	questions ports.QuestionRepository
	forms     ports.StateFormRepository
	rules     config.Source
	logger    *zap.Logger
}

// NewFormQueryHandler creates a new form query handler
func NewFormQueryHandler(
	answers ports.AnswerRepository,
	questions ports.QuestionRepository,
	forms ports.StateFormRepository,
	rules config.Source,
	logger *zap.Logger,
) *FormQueryHandler {
	return &FormQueryHandler{
		answers:   answers,
		questions: questions,
		forms:     forms,
		rules:     rules,
		logger:    logger,
	}
}

// GetForm loads questions, answers and status of a state form into a store
// and returns its state.
func (h *FormQueryHandler) GetForm(ctx context.Context, query queries.GetFormQuery) (*store.State, error) {
	if !query.Actor.CanEditState(query.State) {
		return nil, pkgerrors.ErrUserNotAuthorized
	}

	stateForm := query.StateForm()
	status, err := h.forms.Get(ctx, stateForm)
	if err != nil {
		return nil, fmt.Errorf("failed to get form status: %w", err)
	}

	questions, err := h.questions.ListByFormYear(ctx, query.Form, query.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	answers, err := h.answers.ListByStateForm(ctx, stateForm)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	s := store.New(h.rules.Current())
	state := s.Dispatch(store.NewLoadForm(questions, answers, *status))

	h.logger.Debug("Form loaded",
		zap.String("state_form", stateForm),
		zap.Int("questions", len(state.Questions)),
		zap.Int("answers", len(state.Answers)),
	)
	return &state, nil
}

// ListStateForms lists the forms of a state for a quarter.
func (h *FormQueryHandler) ListStateForms(ctx context.Context, query queries.ListStateFormsQuery) ([]entities.FormStatus, error) {
	if !query.Actor.CanEditState(query.State) {
		return nil, pkgerrors.ErrUserNotAuthorized
	}

	statuses, err := h.forms.ListByQuarter(ctx, query.State, query.Year, query.Quarter)
	if err != nil {
		return nil, fmt.Errorf("failed to list state forms: %w", err)
	}
	if statuses == nil {
		statuses = []entities.FormStatus{}
	}
	return statuses, nil
}

// GetGrid renders the stored grid of an answer entry with its totals.
// Synthesized, display-only and certified grids are read-only.
func (h *FormQueryHandler) GetGrid(ctx context.Context, query queries.GetGridQuery) (*queries.GridView, error) {
	entry, err := valueobjects.ParseAnswerEntry(query.AnswerEntry)
	if err != nil {
		return nil, err
	}
	sf := entry.StateForm()
	if !query.Actor.CanEditState(sf.State()) {
		return nil, pkgerrors.ErrUserNotAuthorized
	}

	status, err := h.forms.Get(ctx, sf.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get form status: %w", err)
	}

	answers, err := h.answers.ListByStateForm(ctx, sf.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	rules := h.rules.Current()
	s := store.New(rules)
	s.Dispatch(store.NewLoadForm(nil, answers, *status))

	record, ok := s.Answer(query.AnswerEntry)
	if !ok {
		return nil, pkgerrors.ErrAnswerNotFound
	}

	synthesized := rules.IsSynthesized(record.QuestionOrdinal())
	view := queries.BuildGridView(record.Rows, queries.ViewOptions{
		Precision:   rules.PrecisionFor(sf.Form()),
		Synthesized: synthesized,
	})
	view.AnswerEntry = record.AnswerEntry
	view.Question = record.Question
	view.ReadOnly = synthesized || !s.CanCommit(record.AnswerEntry) || status.IsCertified()

	questions, err := h.questions.ListByFormYear(ctx, sf.Form(), sf.Year())
	if err != nil {
		h.logger.Warn("Failed to load question labels", zap.String("form", sf.Form()), zap.Error(err))
		return &view, nil
	}
	for _, q := range questions {
		if q.Question != record.Question {
			continue
		}
		// only grid question types render; the synthesized ordinal always does
		if !synthesized && !rules.IsGridType(q.Type) {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("question %s of type %q has no grid", q.Question, q.Type))
		}
		view.Label = q.RenderLabel(rules.LabelVariableToken, rules.AgeRangeLabel(record.RangeID))
		break
	}
	return &view, nil
}

// RenderGrid renders caller-supplied rows.
func (h *FormQueryHandler) RenderGrid(ctx context.Context, query queries.RenderGridQuery) (*queries.GridView, error) {
	view := queries.BuildGridView(query.Rows, queries.ViewOptions{
		Precision:    query.Precision,
		Synthesized:  query.Synthesized,
		ColumnTotals: query.Totals,
		RowTotals:    query.RowTotals,
	})
	return &view, nil
}
