package entities

import "strings"

// Roles
const (
	RoleAdmin    = "admin"
	RoleBusiness = "business"
	RoleState    = "state"
)

// User is an application user. States scopes state users to the states they
// may edit.
type User struct {
	UserID      string   `json:"userId" dynamodbav:"userId"`
	Username    string   `json:"username" dynamodbav:"username"`
	UsernameSub string   `json:"usernameSub,omitempty" dynamodbav:"usernameSub,omitempty"`
	Email       string   `json:"email,omitempty" dynamodbav:"email,omitempty"`
	FirstName   string   `json:"firstName,omitempty" dynamodbav:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty" dynamodbav:"lastName,omitempty"`
	Role        string   `json:"role,omitempty" dynamodbav:"role,omitempty"`
	States      []string `json:"states" dynamodbav:"states"`
	IsActive    bool     `json:"isActive" dynamodbav:"isActive"`
	DateJoined  string   `json:"dateJoined,omitempty" dynamodbav:"dateJoined,omitempty"`
	LastLogin   string   `json:"lastLogin,omitempty" dynamodbav:"lastLogin,omitempty"`
	LastSynced  string   `json:"lastSynced,omitempty" dynamodbav:"lastSynced,omitempty"`
}

// IsValidRole reports whether role is one the application knows.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleBusiness, RoleState:
		return true
	default:
		return false
	}
}

// CanEditState reports whether the user may edit forms of a state.
// Admins may edit every state.
func (u User) CanEditState(state string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	if u.Role != RoleState {
		return false
	}
	for _, s := range u.States {
		if strings.EqualFold(s, state) {
			return true
		}
	}
	return false
}
