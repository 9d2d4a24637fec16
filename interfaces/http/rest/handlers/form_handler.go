package handlers

import (
	"net/http"

	"seds-backend/application/commands"
	"seds-backend/application/commands/bus"
	"seds-backend/application/queries"
	querybus "seds-backend/application/queries/bus"
	"seds-backend/pkg/auth"
	"seds-backend/pkg/common"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FormHandler serves one state form: load, grid views, answer commits and
// the status transitions.
type FormHandler struct {
	base
}

// NewFormHandler creates a new form handler
func NewFormHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *FormHandler {
	return &FormHandler{base: newBase(commandBus, queryBus, errorHandler, logger)}
}

// SaveAnswerRequest carries the edited data cells of a grid
type SaveAnswerRequest struct {
	Values [][]float64 `json:"values"`
}

// CertifyRequest selects provisional or final certification
type CertifyRequest struct {
	Final bool `json:"final"`
}

// SummaryNotesRequest replaces the state comments
type SummaryNotesRequest struct {
	Comments string `json:"state_comments"`
}

// NotApplicableRequest toggles the not-applicable flag
type NotApplicableRequest struct {
	NotApplicable bool `json:"not_applicable"`
}

// GetForm handles GET /forms/{state}/{year}/{quarter}/{form}
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sf, err := stateFormParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetFormQuery{
		State:   sf.State(),
		Year:    sf.Year(),
		Quarter: sf.Quarter(),
		Form:    sf.Form(),
		Actor:   actor,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// ListStateForms handles GET /states/{state}/{year}/{quarter}
func (h *FormHandler) ListStateForms(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	year, quarter, err := yearQuarterParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListStateFormsQuery{
		State:   chi.URLParam(r, "state"),
		Year:    year,
		Quarter: quarter,
		Actor:   actor,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetGrid handles GET /forms/{state}/{year}/{quarter}/{form}/grids/{answerEntry}
func (h *FormHandler) GetGrid(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sf, err := stateFormParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entry := chi.URLParam(r, "answerEntry")
	if err := commands.EntryBelongsTo(entry, sf.String()); err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetGridQuery{AnswerEntry: entry, Actor: actor})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// SaveAnswer handles PUT /forms/{state}/{year}/{quarter}/{form}/answers/{answerEntry}
func (h *FormHandler) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sf, err := stateFormParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req SaveAnswerRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.SaveAnswerCommand{
		StateForm:   sf.String(),
		AnswerEntry: chi.URLParam(r, "answerEntry"),
		Values:      req.Values,
		Actor:       actor,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Certify handles POST /forms/{state}/{year}/{quarter}/{form}/certify
func (h *FormHandler) Certify(w http.ResponseWriter, r *http.Request) {
	var req CertifyRequest
	h.sendStatusCommand(w, r, &req, func(stateForm string, actor auth.UserContext) bus.Command {
		return commands.CertifyFormCommand{StateForm: stateForm, Final: req.Final, Actor: actor}
	})
}

// Uncertify handles POST /forms/{state}/{year}/{quarter}/{form}/uncertify
func (h *FormHandler) Uncertify(w http.ResponseWriter, r *http.Request) {
	h.sendStatusCommand(w, r, nil, func(stateForm string, actor auth.UserContext) bus.Command {
		return commands.UncertifyFormCommand{StateForm: stateForm, Actor: actor}
	})
}

// UpdateSummaryNotes handles PUT /forms/{state}/{year}/{quarter}/{form}/notes
func (h *FormHandler) UpdateSummaryNotes(w http.ResponseWriter, r *http.Request) {
	var req SummaryNotesRequest
	h.sendStatusCommand(w, r, &req, func(stateForm string, actor auth.UserContext) bus.Command {
		return commands.UpdateSummaryNotesCommand{StateForm: stateForm, Comments: req.Comments, Actor: actor}
	})
}

// SetNotApplicable handles PUT /forms/{state}/{year}/{quarter}/{form}/not-applicable
func (h *FormHandler) SetNotApplicable(w http.ResponseWriter, r *http.Request) {
	var req NotApplicableRequest
	h.sendStatusCommand(w, r, &req, func(stateForm string, actor auth.UserContext) bus.Command {
		return commands.SetNotApplicableCommand{StateForm: stateForm, NotApplicable: req.NotApplicable, Actor: actor}
	})
}

// sendStatusCommand decodes body (when non-nil) and sends the command build returns.
func (h *FormHandler) sendStatusCommand(w http.ResponseWriter, r *http.Request, body interface{}, build func(string, auth.UserContext) bus.Command) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	sf, err := stateFormParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if body != nil && !h.decode(w, r, body) {
		return
	}

	result, err := h.commandBus.Send(r.Context(), build(sf.String(), actor))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
