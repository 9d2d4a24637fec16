// Package middleware holds the HTTP middleware of the REST API.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"seds-backend/pkg/auth"
	"seds-backend/pkg/common"

	"go.uber.org/zap"
)

// Headers set by the Lambda entrypoint from the API Gateway JWT authorizer
// context. They are only trusted when the authenticator runs behind the gateway.
const (
	HeaderGatewayAuthorized = "X-API-Gateway-Authorized"
	HeaderUserID            = "X-User-ID"
	HeaderUsername          = "X-Username"
	HeaderUserEmail         = "X-User-Email"
	HeaderUserRoles         = "X-User-Roles"
	HeaderUserStates        = "X-User-States"
)

// Authenticator resolves the caller of each request and applies rate limits.
type Authenticator struct {
	validator    *auth.JWTValidator
	ipLimiter    auth.RateLimiter
	userLimiter  auth.RateLimiter
	trustGateway bool
	logger       *zap.Logger
}

// NewAuthenticator creates the authentication middleware. With trustGateway
// set, requests pre-authorized by API Gateway skip token validation.
func NewAuthenticator(validator *auth.JWTValidator, ipLimiter, userLimiter auth.RateLimiter, trustGateway bool, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		validator:    validator,
		ipLimiter:    ipLimiter,
		userLimiter:  userLimiter,
		trustGateway: trustGateway,
		logger:       logger,
	}
}

// Middleware authenticates the request and stores the caller in the context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)

		if !a.allow(w, r, a.ipLimiter, clientIP, "Rate limit exceeded") {
			return
		}

		var user *auth.UserContext
		if a.trustGateway && r.Header.Get(HeaderGatewayAuthorized) == "true" {
			user = userFromGatewayHeaders(r)
			if user == nil {
				respondUnauthorized(w, "Missing user context from API Gateway")
				return
			}
		} else if a.validator == nil {
			respondUnauthorized(w, "Request not authorized by API Gateway")
			return
		} else {
			token := extractToken(r)
			if token == "" {
				respondUnauthorized(w, "Missing authentication token")
				return
			}

			claims, err := a.validator.ValidateToken(token)
			if err != nil {
				a.logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("ip", clientIP),
					zap.String("path", r.URL.Path),
				)

				switch {
				case errors.Is(err, auth.ErrExpiredToken):
					respondUnauthorized(w, "Token has expired")
				case errors.Is(err, auth.ErrInvalidSignature):
					respondUnauthorized(w, "Invalid token signature")
				default:
					respondUnauthorized(w, "Invalid token")
				}
				return
			}
			user = claims.UserContext()
		}

		if !a.allow(w, r, a.userLimiter, user.UserID, "User rate limit exceeded") {
			return
		}

		ctx := auth.SetUserInContext(r.Context(), user)
		ctx = common.WithUserID(ctx, user.UserID)

		a.logger.Debug("Request authenticated",
			zap.String("user_id", user.UserID),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) allow(w http.ResponseWriter, r *http.Request, limiter auth.RateLimiter, key, message string) bool {
	if limiter == nil {
		return true
	}

	allowed, err := limiter.Allow(r.Context(), key)
	if err != nil {
		a.logger.Error("Rate limiter error", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, common.CodeInternal, "Internal server error")
		return false
	}
	if !allowed {
		common.RespondError(w, http.StatusTooManyRequests, common.CodeTooManyRequests, message)
		return false
	}
	return true
}

func userFromGatewayHeaders(r *http.Request) *auth.UserContext {
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		return nil
	}

	return &auth.UserContext{
		UserID:   userID,
		Username: r.Header.Get(HeaderUsername),
		Email:    r.Header.Get(HeaderUserEmail),
		Roles:    splitList(r.Header.Get(HeaderUserRoles)),
		States:   splitList(r.Header.Get(HeaderUserStates)),
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// RequireRole creates middleware that requires any of the given roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.GetUserFromContext(r.Context())
			if err != nil {
				respondUnauthorized(w, "Unauthorized")
				return
			}

			if !user.HasRole(roles...) {
				common.RespondError(w, http.StatusForbidden, common.CodeForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads a bearer token from the Authorization header or the auth_token cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	common.RespondError(w, http.StatusUnauthorized, common.CodeUnauthorized, message)
}
