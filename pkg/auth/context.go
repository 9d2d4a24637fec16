package auth

import (
	"context"
	"errors"
	"slices"
	"strings"
)

// Roles known to the reporting system.
const (
	RoleAdmin    = "admin"
	RoleBusiness = "business"
	RoleState    = "state"
)

// UserContext is the authenticated caller. It is passed explicitly to
// commands rather than read from ambient state.
type UserContext struct {
	UserID   string
	Username string
	Email    string
	Roles    []string
	States   []string
}

// HasRole reports whether the user carries any of the given roles.
func (u UserContext) HasRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(u.Roles, r) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user is an administrator.
func (u UserContext) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// CanEditState reports whether the user may change forms of the given state.
// Admin and business users reach every state; state users only their own.
func (u UserContext) CanEditState(state string) bool {
	if u.HasRole(RoleAdmin, RoleBusiness) {
		return true
	}
	if !u.HasRole(RoleState) {
		return false
	}
	for _, s := range u.States {
		if strings.EqualFold(s, state) {
			return true
		}
	}
	return false
}

// DisplayName is the name recorded in provenance fields.
func (u UserContext) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.UserID
}

type contextKey string

// UserContextKey is the request context key holding *UserContext.
const UserContextKey contextKey = "user"

// ErrNoUser is returned when the context carries no authenticated user.
var ErrNoUser = errors.New("user not found in context")

// GetUserFromContext extracts user from context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(UserContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, ErrNoUser
	}
	return user, nil
}

// SetUserInContext adds user to context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
