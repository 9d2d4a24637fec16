package validators

import (
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"strings"

	"seds-backend/domain/core/entities"
	"seds-backend/domain/core/grid"
	"seds-backend/pkg/errors"
)

// AnswerValidator validates grid edits and user records
type AnswerValidator struct {
	maxCellValue  float64
	usernameRegex *regexp.Regexp
}

// NewAnswerValidator creates a new validator with default rules
func NewAnswerValidator() *AnswerValidator {
	return &AnswerValidator{
		maxCellValue:  1e12,
		usernameRegex: regexp.MustCompile(`^[A-Za-z0-9._@-]{1,128}$`),
	}
}

// ValidateGridEdit checks that values have exactly the shape of the stored
// grid and that every value is a finite number in range.
func (v *AnswerValidator) ValidateGridEdit(record entities.AnswerRecord, values [][]float64) error {
	validationErrors := errors.NewValidationErrors()
	current := record.Matrix()

	if len(values) != current.NumRows() {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"GRID_SHAPE_MISMATCH",
			fmt.Sprintf("expected %d rows, got %d", current.NumRows(), len(values)),
		).WithDetail("field", "values").WithDetail("answer_entry", record.AnswerEntry)
	}

	for i, row := range values {
		rowIndex := i + grid.FirstIndex
		if len(row) != current.RowLen(rowIndex) {
			validationErrors.Add("values", fmt.Sprintf("row %d has %d columns, expected %d", rowIndex, len(row), current.RowLen(rowIndex)))
			continue
		}
		for j, value := range row {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				validationErrors.Add("values", fmt.Sprintf("cell (%d,%d) is not a finite number", rowIndex, j+grid.FirstIndex))
				continue
			}
			if math.Abs(value) > v.maxCellValue {
				validationErrors.Add("values", fmt.Sprintf("cell (%d,%d) exceeds %.0f", rowIndex, j+grid.FirstIndex, v.maxCellValue))
			}
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}

// ValidateUser validates a user about to be created
func (v *AnswerValidator) ValidateUser(user entities.User) error {
	validationErrors := errors.NewValidationErrors()

	if !v.usernameRegex.MatchString(strings.TrimSpace(user.Username)) {
		validationErrors.Add("username", "Please enter a username")
	}

	if user.Email != "" {
		if _, err := mail.ParseAddress(user.Email); err != nil {
			validationErrors.Add("email", "email is not a valid address")
		}
	}

	if user.Role != "" && !entities.IsValidRole(user.Role) {
		validationErrors.AddError(errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_ROLE",
			"role must be admin, business or state",
		).WithDetail("field", "role").WithDetail("value", user.Role))
	}

	for _, s := range user.States {
		if len(strings.TrimSpace(s)) != 2 {
			validationErrors.Add("states", fmt.Sprintf("%q is not a two letter state code", s))
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}
