package handlers

import (
	"fmt"
	"net/http"

	"seds-backend/application/commands"
	"seds-backend/application/commands/bus"
	"seds-backend/application/queries"
	querybus "seds-backend/application/queries/bus"
	"seds-backend/application/services"
	"seds-backend/domain/core/entities"
	"seds-backend/pkg/common"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler serves user administration and the confirmation exchange
type UserHandler struct {
	base
	confirmations *services.ConfirmationService
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	confirmations *services.ConfirmationService,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *UserHandler {
	return &UserHandler{
		base:          newBase(commandBus, queryBus, errorHandler, logger),
		confirmations: confirmations,
	}
}

// ActivationRequest asks to activate or deactivate a user
type ActivationRequest struct {
	Active bool `json:"isActive"`
}

// ListUsers handles GET /users?page=&page_size=
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListUsersQuery{Actor: actor})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	users, _ := result.([]entities.User)
	if users == nil {
		users = []entities.User{}
	}

	page, pagination := common.Paginate(users, common.ExtractPageParams(r))
	common.RespondWithMeta(w, http.StatusOK, page, &common.MetaInfo{
		RequestID:  common.ExtractRequestID(r),
		Pagination: pagination,
	})
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var cmd commands.CreateUserCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	cmd.Actor = actor

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("User %s Added!", cmd.Username),
		"user":    result,
	})
}

// GetUser handles GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetUserQuery{UserID: chi.URLParam(r, "id"), Actor: actor})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetUserBySub handles POST /users/by-sub with body {"usernameSub": "..."}
func (h *UserHandler) GetUserBySub(w http.ResponseWriter, r *http.Request) {
	var query queries.GetUserBySubQuery
	if !h.decode(w, r, &query) {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// RequestActivation handles POST /users/{id}/activation. The change is parked
// until the caller confirms it through ResolveConfirmation.
func (h *UserHandler) RequestActivation(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req ActivationRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID := chi.URLParam(r, "id")
	verb := "deactivate"
	if req.Active {
		verb = "activate"
	}

	confirmation, err := h.confirmations.Request(r.Context(), actor.UserID, commands.ActionSetUserActive,
		fmt.Sprintf("Are you sure you want to %s user %s?", verb, userID),
		commands.SetUserActiveCommand{UserID: userID, Active: req.Active, Actor: actor},
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusAccepted, confirmation)
}

// ResolveConfirmation handles POST /confirmations/{id} with body {"confirmed": bool}
func (h *UserHandler) ResolveConfirmation(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var resp services.ConfirmationResponse
	if !h.decode(w, r, &resp) {
		return
	}
	resp.ID = chi.URLParam(r, "id")

	result, err := h.confirmations.Resolve(r.Context(), actor, resp)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"confirmed": resp.Confirmed,
		"result":    result,
	})
}
