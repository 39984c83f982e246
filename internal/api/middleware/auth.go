package middleware

import (
	"context"
	"errors"
	"net/http"

	"taskzone/internal/common"
	"taskzone/internal/common/security"
	"taskzone/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserIDCtxKey   contextKey = "userID"
	UserRoleCtxKey contextKey = "userRole"
)

// Authenticator requires a verified bearer token and stashes the principal
// into the request context. Missing tokens answer 401, bad ones 403,
// matching the API contract.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context()) // Extracts token from Authorization header

		if err != nil {
			if errors.Is(err, jwtauth.ErrNoTokenFound) || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "No token provided.")
			} else {
				common.RespondWithError(w, http.StatusForbidden, "Invalid token.")
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "No token provided.")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusForbidden, "Invalid token claims: "+err.Error())
			return
		}
		userRole, err := security.GetUserRoleFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusForbidden, "Invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		ctx = context.WithValue(ctx, UserRoleCtxKey, model.NormalizeRole(userRole))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly gates a route to principals carrying the admin role.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleCtxKey).(string)
		if !ok || role != model.RoleAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Forbidden: You do not have permission to perform this action.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetPrincipalFromContext rebuilds the acting principal from the values the
// Authenticator stored.
func GetPrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	if !ok || userID == "" {
		return model.Principal{}, false
	}
	role, _ := ctx.Value(UserRoleCtxKey).(string)
	return model.Principal{UserID: userID, Role: model.NormalizeRole(role)}, true
}
