package store

import (
	"encoding/json"
	"fmt"
	"time"

	"seds-backend/domain/core/entities"
	"seds-backend/domain/core/grid"
	pkgerrors "seds-backend/pkg/errors"
	"seds-backend/pkg/utils"
)

// ActionType names an action on the wire.
type ActionType string

const (
	ActionLoadForm           ActionType = "LOAD_SINGLE_FORM"
	ActionUpdateAnswer       ActionType = "UPDATE_ANSWER"
	ActionUpdateFormStatus   ActionType = "UPDATE_FORM_STATUS"
	ActionCertifyFinal       ActionType = "CERTIFY_AND_SUBMIT_FINAL"
	ActionCertifyProvisional ActionType = "CERTIFY_AND_SUBMIT_PROVISIONAL"
	ActionUncertify          ActionType = "UNCERTIFY"
	ActionUpdateSummaryNotes ActionType = "SUMMARY_NOTES_SUCCESS"
)

// Action is one of the typed store actions below.
type Action interface {
	Type() ActionType
}

// LoadForm replaces the whole state with a freshly loaded form.
type LoadForm struct {
	Questions  []entities.Question     `json:"questions"`
	Answers    []entities.AnswerRecord `json:"answers"`
	StatusData entities.FormStatus     `json:"statusData"`
	Tabs       []string                `json:"tabs"`
}

// UpdateAnswer replaces the rows of the record with a matching AnswerEntry.
type UpdateAnswer struct {
	AnswerEntry string     `json:"answer_entry" validate:"required"`
	Rows        []grid.Row `json:"rows" validate:"required,min=1"`
	ModifiedBy  string     `json:"last_modified_by"`
	ModifiedAt  string     `json:"last_modified"`
}

// UpdateFormStatus sets the not-applicable flag of the open form.
type UpdateFormStatus struct {
	NotApplicable bool `json:"activeStatus"`
}

// CertifyFinal marks the form as finally certified.
type CertifyFinal struct {
	UserName string    `json:"userName" validate:"required"`
	At       time.Time `json:"at"`
}

// CertifyProvisional marks the form as provisionally certified.
type CertifyProvisional struct {
	UserName string    `json:"userName" validate:"required"`
	At       time.Time `json:"at"`
}

// Uncertify returns the form to In Progress.
type Uncertify struct {
	UserName string    `json:"userName" validate:"required"`
	At       time.Time `json:"at"`
}

// UpdateSummaryNotes replaces the state's summary comments.
type UpdateSummaryNotes struct {
	Comments string `json:"tempStateComments" validate:"max=10000"`
}

func (LoadForm) Type() ActionType           { return ActionLoadForm }
func (UpdateAnswer) Type() ActionType       { return ActionUpdateAnswer }
func (UpdateFormStatus) Type() ActionType   { return ActionUpdateFormStatus }
func (CertifyFinal) Type() ActionType       { return ActionCertifyFinal }
func (CertifyProvisional) Type() ActionType { return ActionCertifyProvisional }
func (Uncertify) Type() ActionType          { return ActionUncertify }
func (UpdateSummaryNotes) Type() ActionType { return ActionUpdateSummaryNotes }

type envelope struct {
	Type    ActionType      `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeAction turns an untyped {"type": ..., "payload": {...}} document into
// a typed action. Unknown types, malformed payloads and payloads failing
// validation are rejected here.
func DecodeAction(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, pkgerrors.NewValidationError("action is not valid JSON").WithCause(err)
	}
	if err := utils.ValidateStruct(env); err != nil {
		return nil, err
	}

	var action Action
	switch env.Type {
	case ActionLoadForm:
		action = &LoadForm{}
	case ActionUpdateAnswer:
		action = &UpdateAnswer{}
	case ActionUpdateFormStatus:
		action = &UpdateFormStatus{}
	case ActionCertifyFinal:
		action = &CertifyFinal{}
	case ActionCertifyProvisional:
		action = &CertifyProvisional{}
	case ActionUncertify:
		action = &Uncertify{}
	case ActionUpdateSummaryNotes:
		action = &UpdateSummaryNotes{}
	default:
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown action type %q", env.Type))
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, action); err != nil {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("invalid %s payload", env.Type)).WithCause(err)
		}
	}
	if err := utils.ValidateStruct(action); err != nil {
		return nil, err
	}

	return deref(action), nil
}

// deref returns the value form of a decoded action so that callers can
// type-switch on value types only.
func deref(a Action) Action {
	switch t := a.(type) {
	case *LoadForm:
		return *t
	case *UpdateAnswer:
		return *t
	case *UpdateFormStatus:
		return *t
	case *CertifyFinal:
		return *t
	case *CertifyProvisional:
		return *t
	case *Uncertify:
		return *t
	case *UpdateSummaryNotes:
		return *t
	default:
		return a
	}
}
