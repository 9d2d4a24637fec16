package events

import (
	"time"

	"github.com/google/uuid"
)

// SourceSEDS is the EventBridge source of every event this service publishes.
const SourceSEDS = "seds.backend"

// Event types published to the event bus.
const (
	TypeAnswerUpdated     = "answer.updated"
	TypeFormCertified     = "form.certified"
	TypeFormUncertified   = "form.uncertified"
	TypeFormStatusChanged = "form.status_changed"
	TypeUserCreated       = "user.created"
	TypeUserActivation    = "user.activation_changed"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		EventID:     uuid.New().String(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// Answer Events

// AnswerUpdated is raised when an answer grid is committed
type AnswerUpdated struct {
	BaseEvent
	StateForm   string `json:"state_form"`
	AnswerEntry string `json:"answer_entry"`
	ModifiedBy  string `json:"modified_by"`
}

// NewAnswerUpdated creates an AnswerUpdated event
func NewAnswerUpdated(stateForm, answerEntry, modifiedBy string, timestamp time.Time) AnswerUpdated {
	return AnswerUpdated{
		BaseEvent:   newBase(answerEntry, TypeAnswerUpdated, timestamp),
		StateForm:   stateForm,
		AnswerEntry: answerEntry,
		ModifiedBy:  modifiedBy,
	}
}

// Form Events

// FormCertified is raised when a state certifies a form
type FormCertified struct {
	BaseEvent
	StateForm string `json:"state_form"`
	Status    string `json:"status"`
	StatusID  int    `json:"status_id"`
	Final     bool   `json:"final"`
	UserName  string `json:"username"`
}

// NewFormCertified creates a FormCertified event
func NewFormCertified(stateForm, status string, statusID int, final bool, userName string, timestamp time.Time) FormCertified {
	return FormCertified{
		BaseEvent: newBase(stateForm, TypeFormCertified, timestamp),
		StateForm: stateForm,
		Status:    status,
		StatusID:  statusID,
		Final:     final,
		UserName:  userName,
	}
}

// FormUncertified is raised when a state takes back a certification.
// Business users are notified from it, so it carries who did it.
type FormUncertified struct {
	BaseEvent
	StateForm string `json:"state_form"`
	UserName  string `json:"username"`
	State     string `json:"state"`
	Role      string `json:"role"`
	Email     string `json:"email"`
}

// NewFormUncertified creates a FormUncertified event
func NewFormUncertified(stateForm, userName, state, role, email string, timestamp time.Time) FormUncertified {
	return FormUncertified{
		BaseEvent: newBase(stateForm, TypeFormUncertified, timestamp),
		StateForm: stateForm,
		UserName:  userName,
		State:     state,
		Role:      role,
		Email:     email,
	}
}

// FormStatusChanged is raised for status edits other than certification,
// such as summary notes or the not-applicable flag.
type FormStatusChanged struct {
	BaseEvent
	StateForm string `json:"state_form"`
	Field     string `json:"field"`
	UserName  string `json:"username"`
}

// NewFormStatusChanged creates a FormStatusChanged event
func NewFormStatusChanged(stateForm, field, userName string, timestamp time.Time) FormStatusChanged {
	return FormStatusChanged{
		BaseEvent: newBase(stateForm, TypeFormStatusChanged, timestamp),
		StateForm: stateForm,
		Field:     field,
		UserName:  userName,
	}
}

// User Events

// UserCreated is raised when an admin creates a user
type UserCreated struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// NewUserCreated creates a UserCreated event
func NewUserCreated(userID, username, role string, timestamp time.Time) UserCreated {
	return UserCreated{
		BaseEvent: newBase(userID, TypeUserCreated, timestamp),
		UserID:    userID,
		Username:  username,
		Role:      role,
	}
}

// UserActivationChanged is raised when an admin activates or deactivates a user
type UserActivationChanged struct {
	BaseEvent
	UserID    string `json:"user_id"`
	IsActive  bool   `json:"is_active"`
	ChangedBy string `json:"changed_by"`
}

// NewUserActivationChanged creates a UserActivationChanged event
func NewUserActivationChanged(userID string, isActive bool, changedBy string, timestamp time.Time) UserActivationChanged {
	return UserActivationChanged{
		BaseEvent: newBase(userID, TypeUserActivation, timestamp),
		UserID:    userID,
		IsActive:  isActive,
		ChangedBy: changedBy,
	}
}
