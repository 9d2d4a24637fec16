package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"seds-backend/application/commands"
	"seds-backend/application/ports"
	"seds-backend/domain/core/entities"
	"seds-backend/domain/core/validators"
	"seds-backend/domain/events"
	pkgerrors "seds-backend/pkg/errors"

	"go.uber.org/zap"
)

// UserHandler handles user administration commands
type UserHandler struct {
	users     ports.UserRepository
	publisher ports.EventPublisher
	validator *validators.AnswerValidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserHandler creates a new user handler
func NewUserHandler(users ports.UserRepository, publisher ports.EventPublisher, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		publisher: publisher,
		validator: validators.NewAnswerValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Create adds a user unless the username is taken.
func (h *UserHandler) Create(ctx context.Context, cmd commands.CreateUserCommand) (*entities.User, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, pkgerrors.ErrUserNotAuthorized
	}

	user := cmd.User()
	user.Username = strings.TrimSpace(user.Username)
	if err := h.validator.ValidateUser(user); err != nil {
		return nil, err
	}

	existing, err := h.users.GetByUsername(ctx, user.Username)
	switch {
	case err == nil && existing != nil:
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainConflictError,
			pkgerrors.ErrUserAlreadyExists.Code,
			fmt.Sprintf("User %s already exists", user.Username),
		)
	case err != nil && !pkgerrors.IsNotFound(err):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	now := h.now()
	user.DateJoined = now.UTC().Format(time.RFC3339)
	user.LastSynced = user.DateJoined

	created, err := h.users.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	h.logger.Info("User created",
		zap.String("user_id", created.UserID),
		zap.String("username", created.Username),
		zap.String("created_by", cmd.Actor.DisplayName()),
	)
	publish(ctx, h.publisher, h.logger, events.NewUserCreated(created.UserID, created.Username, created.Role, now))
	return created, nil
}

// SetActive activates or deactivates a user.
func (h *UserHandler) SetActive(ctx context.Context, cmd commands.SetUserActiveCommand) (*entities.User, error) {
	if !cmd.Actor.IsAdmin() {
		return nil, pkgerrors.ErrUserNotAuthorized
	}

	user, err := h.users.Get(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := h.users.SetActive(ctx, cmd.UserID, cmd.Active); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	user.IsActive = cmd.Active

	publish(ctx, h.publisher, h.logger, events.NewUserActivationChanged(cmd.UserID, cmd.Active, cmd.Actor.DisplayName(), h.now()))
	return user, nil
}
