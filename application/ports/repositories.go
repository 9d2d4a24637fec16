package ports

import (
	"context"
	"time"

	"seds-backend/domain/core/entities"
	"seds-backend/domain/events"
)

// AnswerRepository defines the interface for answer persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type AnswerRepository interface {
	// ListByStateForm retrieves every answer record of a state form
	ListByStateForm(ctx context.Context, stateForm string) ([]entities.AnswerRecord, error)

	// Save writes the rows and provenance of an existing record. It never creates one.
	Save(ctx context.Context, answer entities.AnswerRecord) error

	// StateFormsWithAnswers returns the set of state forms that have at least one answer
	StateFormsWithAnswers(ctx context.Context) (map[string]struct{}, error)
}

// QuestionRepository defines the interface for question lookup
type QuestionRepository interface {
	// ListByFormYear retrieves the questions of a form for a year
	ListByFormYear(ctx context.Context, form string, year int) ([]entities.Question, error)
}

// StateFormRepository defines the interface for form status persistence
type StateFormRepository interface {
	// Get retrieves the status record of a state form
	Get(ctx context.Context, stateForm string) (*entities.FormStatus, error)

	// ListByQuarter retrieves the status records of a state's forms for a quarter
	ListByQuarter(ctx context.Context, state string, year, quarter int) ([]entities.FormStatus, error)

	// SaveStatus writes the status fields of a state form
	SaveStatus(ctx context.Context, status entities.FormStatus) error

	// ScanAll retrieves every state form
	ScanAll(ctx context.Context) ([]entities.FormStatus, error)
}

// FormTypeRepository defines the interface for the forms catalogue
type FormTypeRepository interface {
	List(ctx context.Context) ([]entities.FormType, error)
}

// FormTemplateRepository defines the interface for form templates
type FormTemplateRepository interface {
	// GetByYear returns the templates of a year; an empty result is not an error
	GetByYear(ctx context.Context, year int) ([]entities.FormTemplate, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Get(ctx context.Context, userID string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetBySub(ctx context.Context, usernameSub string) (*entities.User, error)
	List(ctx context.Context) ([]entities.User, error)

	// Create stores a new user under the next free numeric id and returns it
	Create(ctx context.Context, user entities.User) (*entities.User, error)

	SetActive(ctx context.Context, userID string, active bool) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// PendingConfirmation is a command parked until the user who requested it
// confirms or declines it. Payload is the command encoded as JSON.
type PendingConfirmation struct {
	ID          string `dynamodbav:"confirmation_id"`
	Action      string `dynamodbav:"action"`
	Message     string `dynamodbav:"message"`
	RequestedBy string `dynamodbav:"requested_by"`
	Payload     string `dynamodbav:"payload"`
	// ExpiresAt is in unix seconds and doubles as the table's TTL attribute
	ExpiresAt int64 `dynamodbav:"expires_at"`
}

// Expired reports whether p has expired at now
func (p PendingConfirmation) Expired(now time.Time) bool {
	return now.After(time.Unix(p.ExpiresAt, 0))
}

// ConfirmationStore holds pending confirmations where every instance of the
// service can reach them.
type ConfirmationStore interface {
	// Put stores a new pending confirmation
	Put(ctx context.Context, p PendingConfirmation) error

	// Claim removes and returns the entry in one atomic step, so an entry is
	// claimed at most once. Missing or expired entries return
	// ErrConfirmationNotFound. An entry requested by someone else returns
	// ErrUserNotAuthorized and stays in place.
	Claim(ctx context.Context, id, requestedBy string, now time.Time) (*PendingConfirmation, error)

	// Delete drops an entry without claiming it
	Delete(ctx context.Context, id string) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// MetricsRecorder records business metrics such as commits and certifications
type MetricsRecorder interface {
	RecordBusinessMetric(ctx context.Context, name string, value float64, dimensions map[string]string)
}
