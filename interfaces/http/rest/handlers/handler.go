// Package handlers adapts HTTP requests to commands and queries.
package handlers

import (
	"net/http"
	"strconv"

	"seds-backend/application/commands/bus"
	querybus "seds-backend/application/queries/bus"
	"seds-backend/domain/core/valueobjects"
	"seds-backend/pkg/auth"
	"seds-backend/pkg/common"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; a full form grid is well under it.
const maxBodyBytes = 1 << 20

// base carries what every handler needs
type base struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

func newBase(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) base {
	return base{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// actor returns the authenticated caller or writes a 401.
func (b base) actor(w http.ResponseWriter, r *http.Request) (auth.UserContext, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		b.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return auth.UserContext{}, false
	}
	return *user, true
}

// decode parses a JSON body or writes a 400.
func (b base) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.ParseJSONBody(r, v, maxBodyBytes); err != nil {
		b.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	b.errors.Handle(w, r, err)
}

// stateFormParam builds the state form key from the {state}/{year}/{quarter}/{form} route.
func stateFormParam(r *http.Request) (valueobjects.StateForm, error) {
	year, quarter, err := yearQuarterParams(r)
	if err != nil {
		return valueobjects.StateForm{}, err
	}
	return valueobjects.NewStateForm(chi.URLParam(r, "state"), year, quarter, chi.URLParam(r, "form"))
}

func yearQuarterParams(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return 0, 0, pkgerrors.NewValidationError("year must be a number")
	}
	quarter, err := strconv.Atoi(chi.URLParam(r, "quarter"))
	if err != nil {
		return 0, 0, pkgerrors.NewValidationError("quarter must be a number")
	}
	return year, quarter, nil
}
