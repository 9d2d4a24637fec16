// Package queries defines the read operations of the reporting service.
package queries

import (
	"strconv"

	"seds-backend/domain/core/grid"
	"seds-backend/domain/core/valueobjects"
	"seds-backend/pkg/auth"
	"seds-backend/pkg/utils"
)

// GetFormQuery loads one state form for editing.
type GetFormQuery struct {
	State   string           `validate:"required,len=2"`
	Year    int              `validate:"required,gte=2000,lte=2100"`
	Quarter int              `validate:"required,gte=1,lte=4"`
	Form    string           `validate:"required"`
	Actor   auth.UserContext `validate:"-"`
}

// Validate implements bus.Query
func (q GetFormQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// StateForm returns the state form key the query addresses.
func (q GetFormQuery) StateForm() string {
	sf, err := valueobjects.NewStateForm(q.State, q.Year, q.Quarter, q.Form)
	if err != nil {
		return ""
	}
	return sf.String()
}

// ListStateFormsQuery lists the forms of a state for one quarter.
type ListStateFormsQuery struct {
	State   string           `validate:"required,len=2"`
	Year    int              `validate:"required,gte=2000,lte=2100"`
	Quarter int              `validate:"required,gte=1,lte=4"`
	Actor   auth.UserContext `validate:"-"`
}

// Validate implements bus.Query
func (q ListStateFormsQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetGridQuery renders the stored grid of one answer entry.
type GetGridQuery struct {
	AnswerEntry string           `validate:"required"`
	Actor       auth.UserContext `validate:"-"`
}

// Validate implements bus.Query
func (q GetGridQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return err
	}
	_, err := valueobjects.ParseAnswerEntry(q.AnswerEntry)
	return err
}

// RenderGridQuery renders caller-supplied rows, optionally with external
// totals for a synthesized grid.
type RenderGridQuery struct {
	Rows        []grid.Row `json:"rows" validate:"required,min=1"`
	Precision   int        `json:"precision" validate:"gte=0,lte=10"`
	Synthesized bool       `json:"synthesized"`
	Totals      []float64  `json:"totals"`
	RowTotals   []float64  `json:"rowTotals"`
}

// Validate implements bus.Query
func (q RenderGridQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ListFormTypesQuery lists the forms catalogue.
type ListFormTypesQuery struct{}

// Validate implements bus.Query
func (ListFormTypesQuery) Validate() error { return nil }

// CacheKey implements bus.Cacheable
func (ListFormTypesQuery) CacheKey() string { return "all" }

// GetFormTemplateQuery returns the form templates of a year.
type GetFormTemplateQuery struct {
	Year int `json:"year" validate:"required,gte=2000,lte=2100"`
}

// Validate implements bus.Query
func (q GetFormTemplateQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// CacheKey implements bus.Cacheable
func (q GetFormTemplateQuery) CacheKey() string { return strconv.Itoa(q.Year) }

// ListUsersQuery lists every user. Administrators only.
type ListUsersQuery struct {
	Actor auth.UserContext `validate:"-"`
}

// Validate implements bus.Query
func (ListUsersQuery) Validate() error { return nil }

// GetUserQuery returns one user by id.
type GetUserQuery struct {
	UserID string           `validate:"required"`
	Actor  auth.UserContext `validate:"-"`
}

// Validate implements bus.Query
func (q GetUserQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetUserBySubQuery resolves the identity provider subject to a user.
type GetUserBySubQuery struct {
	UsernameSub string `json:"usernameSub" validate:"required"`
}

// Validate implements bus.Query
func (q GetUserBySubQuery) Validate() error {
	return utils.ValidateStruct(q)
}
