// Package v1 serves the legacy read endpoints with their original,
// un-enveloped response bodies.
package v1

import (
	"encoding/json"
	"net/http"
	"strconv"

	"seds-backend/application/queries"
	querybus "seds-backend/application/queries/bus"
	"seds-backend/pkg/auth"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/gorilla/mux"
)

type handler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
}

// NewRouter creates the v1 API router. Authentication happens before it.
func NewRouter(queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler) *mux.Router {
	h := &handler{queryBus: queryBus, errors: errorHandler}

	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/forms/{state}/{year:[0-9]{4}}/{quarter:[1-4]}/{form}", h.getForm).Methods("GET")
	v1.HandleFunc("/states/{state}/{year:[0-9]{4}}/{quarter:[1-4]}", h.listStateForms).Methods("GET")
	v1.HandleFunc("/form-types", h.listFormTypes).Methods("GET")
	v1.HandleFunc("/health", healthCheck).Methods("GET")

	v1.Use(versionHeaders)

	return router
}

func (h *handler) getForm(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	vars := mux.Vars(r)
	year, _ := strconv.Atoi(vars["year"])
	quarter, _ := strconv.Atoi(vars["quarter"])

	h.ask(w, r, queries.GetFormQuery{
		State:   vars["state"],
		Year:    year,
		Quarter: quarter,
		Form:    vars["form"],
		Actor:   *user,
	})
}

func (h *handler) listStateForms(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError("authentication required"))
		return
	}

	vars := mux.Vars(r)
	year, _ := strconv.Atoi(vars["year"])
	quarter, _ := strconv.Atoi(vars["quarter"])

	h.ask(w, r, queries.ListStateFormsQuery{
		State:   vars["state"],
		Year:    year,
		Quarter: quarter,
		Actor:   *user,
	})
}

func (h *handler) listFormTypes(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ListFormTypesQuery{})
}

func (h *handler) ask(w http.ResponseWriter, r *http.Request, query querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// versionHeaders adds API version headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.Header().Set("X-API-Deprecated", "true")
		next.ServeHTTP(w, r)
	})
}

// healthCheck provides a health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"v1"}`))
}
