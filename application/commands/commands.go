// Package commands defines the write operations of the reporting service.
package commands

import (
	"fmt"

	"seds-backend/application/commands/bus"
	"seds-backend/domain/core/entities"
	"seds-backend/domain/core/totals"
	"seds-backend/domain/core/valueobjects"
	"seds-backend/pkg/auth"
	pkgerrors "seds-backend/pkg/errors"
	"seds-backend/pkg/utils"
)

// SaveAnswerCommand commits an edited grid for one answer entry.
type SaveAnswerCommand struct {
	StateForm   string           `json:"state_form" validate:"required"`
	AnswerEntry string           `json:"answer_entry" validate:"required"`
	Values      [][]float64      `json:"values" validate:"required"`
	Actor       auth.UserContext `json:"-"`
}

// Validate checks the command and that the entry belongs to the state form.
func (c SaveAnswerCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	return EntryBelongsTo(c.AnswerEntry, c.StateForm)
}

// EntryBelongsTo checks that answerEntry parses and addresses stateForm.
func EntryBelongsTo(answerEntry, stateForm string) error {
	entry, err := valueobjects.ParseAnswerEntry(answerEntry)
	if err != nil {
		return err
	}
	if entry.StateForm().String() != stateForm {
		return pkgerrors.NewValidationError(fmt.Sprintf("answer entry %s does not belong to %s", answerEntry, stateForm))
	}
	return nil
}

// SaveAnswerResult reports whether the edit was written back. Display-only
// and unknown entries are not committed and are not an error.
type SaveAnswerResult struct {
	Committed bool                   `json:"committed"`
	Answer    *entities.AnswerRecord `json:"answer,omitempty"`
	Totals    *totals.Result         `json:"totals,omitempty"`
}

// CertifyFormCommand certifies a state form, provisionally or as final.
type CertifyFormCommand struct {
	StateForm string           `json:"state_form" validate:"required"`
	Final     bool             `json:"final"`
	Actor     auth.UserContext `json:"-"`
}

// Validate implements bus.Command
func (c CertifyFormCommand) Validate() error {
	return validateStateForm(c, c.StateForm)
}

// UncertifyFormCommand returns a certified form to In Progress.
type UncertifyFormCommand struct {
	StateForm string           `json:"state_form" validate:"required"`
	Actor     auth.UserContext `json:"-"`
}

// Validate implements bus.Command
func (c UncertifyFormCommand) Validate() error {
	return validateStateForm(c, c.StateForm)
}

// UpdateSummaryNotesCommand replaces the state comments of a form.
type UpdateSummaryNotesCommand struct {
	StateForm string           `json:"state_form" validate:"required"`
	Comments  string           `json:"state_comments" validate:"max=10000"`
	Actor     auth.UserContext `json:"-"`
}

// Validate implements bus.Command
func (c UpdateSummaryNotesCommand) Validate() error {
	return validateStateForm(c, c.StateForm)
}

// SetNotApplicableCommand marks a form as not applicable to the state.
type SetNotApplicableCommand struct {
	StateForm     string           `json:"state_form" validate:"required"`
	NotApplicable bool             `json:"not_applicable"`
	Actor         auth.UserContext `json:"-"`
}

// Validate implements bus.Command
func (c SetNotApplicableCommand) Validate() error {
	return validateStateForm(c, c.StateForm)
}

// CreateUserCommand adds a user. Only administrators may run it.
type CreateUserCommand struct {
	Username    string           `json:"username"`
	UsernameSub string           `json:"usernameSub"`
	Email       string           `json:"email"`
	FirstName   string           `json:"firstName" validate:"max=100"`
	LastName    string           `json:"lastName" validate:"max=100"`
	Role        string           `json:"role" validate:"omitempty,oneof=admin business state"`
	States      []string         `json:"states" validate:"max=60,dive,len=2"`
	Actor       auth.UserContext `json:"-"`
}

// Validate implements bus.Command. The username check happens in the
// handler so its message matches the user validator's.
func (c CreateUserCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// User builds the user record the command describes.
func (c CreateUserCommand) User() entities.User {
	states := c.States
	if states == nil {
		states = []string{}
	}
	return entities.User{
		Username:    c.Username,
		UsernameSub: c.UsernameSub,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Role:        c.Role,
		States:      states,
		IsActive:    true,
	}
}

// SetUserActiveCommand activates or deactivates a user. The HTTP surface
// only sends it after the confirmation exchange succeeds.
type SetUserActiveCommand struct {
	UserID string           `json:"userId" validate:"required"`
	Active bool             `json:"isActive"`
	Actor  auth.UserContext `json:"-"`
}

// ActionSetUserActive names SetUserActiveCommand in the confirmation exchange
const ActionSetUserActive = "set_user_active"

// Validate implements bus.Command
func (c SetUserActiveCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// WithActor returns a copy of c issued by actor
func (c SetUserActiveCommand) WithActor(actor auth.UserContext) bus.Command {
	c.Actor = actor
	return c
}

func validateStateForm(cmd interface{}, stateForm string) error {
	if err := utils.ValidateStruct(cmd); err != nil {
		return err
	}
	if _, err := valueobjects.ParseStateForm(stateForm); err != nil {
		return err
	}
	return nil
}
