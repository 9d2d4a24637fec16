package handlers

import (
	"net/http"

	"seds-backend/application/queries"
	querybus "seds-backend/application/queries/bus"
	"seds-backend/pkg/common"
	pkgerrors "seds-backend/pkg/errors"

	"go.uber.org/zap"
)

// CatalogHandler serves the form catalogue, templates and ad-hoc grid rendering
type CatalogHandler struct {
	base
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{base: newBase(nil, queryBus, errorHandler, logger)}
}

// ListFormTypes handles GET /form-types
func (h *CatalogHandler) ListFormTypes(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListFormTypesQuery{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetFormTemplates handles POST /form-templates with body {"year": 2021}
func (h *CatalogHandler) GetFormTemplates(w http.ResponseWriter, r *http.Request) {
	var query queries.GetFormTemplateQuery
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

// RenderGrid handles POST /grids/render
func (h *CatalogHandler) RenderGrid(w http.ResponseWriter, r *http.Request) {
	var query queries.RenderGridQuery
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
