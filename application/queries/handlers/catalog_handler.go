package handlers

import (
	"context"
	"fmt"
	"sort"

	"seds-backend/application/ports"
	"seds-backend/application/queries"
	"seds-backend/domain/core/entities"
	pkgerrors "seds-backend/pkg/errors"
)

// CatalogQueryHandler serves the forms catalogue and templates
type CatalogQueryHandler struct {
	formTypes ports.FormTypeRepository
	templates ports.FormTemplateRepository
}

// NewCatalogQueryHandler creates a new catalogue query handler
func NewCatalogQueryHandler(formTypes ports.FormTypeRepository, templates ports.FormTemplateRepository) *CatalogQueryHandler {
	return &CatalogQueryHandler{formTypes: formTypes, templates: templates}
}

// ListFormTypes returns the forms ordered by sort order, then form code.
func (h *CatalogQueryHandler) ListFormTypes(ctx context.Context, _ queries.ListFormTypesQuery) ([]entities.FormType, error) {
	forms, err := h.formTypes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list form types: %w", err)
	}

	sorted := append([]entities.FormType{}, forms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SortOrder != sorted[j].SortOrder {
			return sorted[i].SortOrder < sorted[j].SortOrder
		}
		return sorted[i].Form < sorted[j].Form
	})
	return sorted, nil
}

// GetFormTemplate returns the templates of a year.
func (h *CatalogQueryHandler) GetFormTemplate(ctx context.Context, query queries.GetFormTemplateQuery) ([]entities.FormTemplate, error) {
	templates, err := h.templates.GetByYear(ctx, query.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to get form template: %w", err)
	}
	if len(templates) == 0 {
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainNotFoundError,
			pkgerrors.ErrFormTemplateNotFound.Code,
			fmt.Sprintf("Could not find form template for year: %d", query.Year),
		)
	}
	return templates, nil
}
