package handlers

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"seds-backend/application/ports"
	"seds-backend/application/queries"
	"seds-backend/domain/core/entities"
	pkgerrors "seds-backend/pkg/errors"
)

// UserQueryHandler serves user lookups
type UserQueryHandler struct {
	users ports.UserRepository
}

// NewUserQueryHandler creates a new user query handler
func NewUserQueryHandler(users ports.UserRepository) *UserQueryHandler {
	return &UserQueryHandler{users: users}
}

// ListUsers returns every user ordered by numeric id.
func (h *UserQueryHandler) ListUsers(ctx context.Context, query queries.ListUsersQuery) ([]entities.User, error) {
	if !query.Actor.IsAdmin() {
		return nil, pkgerrors.ErrUserNotAuthorized
	}

	users, err := h.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	sorted := append([]entities.User{}, users...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, errA := strconv.Atoi(sorted[i].UserID)
		b, errB := strconv.Atoi(sorted[j].UserID)
		if errA != nil || errB != nil {
			return sorted[i].UserID < sorted[j].UserID
		}
		return a < b
	})
	return sorted, nil
}

// GetUser returns one user. Users may read their own record; administrators
// may read any.
func (h *UserQueryHandler) GetUser(ctx context.Context, query queries.GetUserQuery) (*entities.User, error) {
	user, err := h.users.Get(ctx, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !query.Actor.IsAdmin() && user.UsernameSub != query.Actor.UserID {
		return nil, pkgerrors.ErrUserNotAuthorized
	}
	return user, nil
}

// GetUserBySub resolves an identity provider subject.
func (h *UserQueryHandler) GetUserBySub(ctx context.Context, query queries.GetUserBySubQuery) (*entities.User, error) {
	user, err := h.users.GetBySub(ctx, query.UsernameSub)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
