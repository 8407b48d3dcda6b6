package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

var userIDKey = contextKey{}

func ContextWithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the id injected by the auth middleware,
// or false when the request was not authenticated.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}

// BearerToken extracts the token from an Authorization header,
// empty string when absent.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}
