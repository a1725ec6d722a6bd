package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/billbatista/expensebook/session"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// AccountChecker confirms that a token's user still exists.
type AccountChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// AuthMiddleware puts the user ID of a valid bearer token in the request context.
// Requests without a valid token pass through unauthenticated.
func AuthMiddleware(verifier session.Verifier, accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				slog.InfoContext(r.Context(), "rejected bearer token", "reason", err)
				next.ServeHTTP(w, r)
				return
			}

			exists, err := accounts.Exists(r.Context(), userID)
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to look up token user", "error", err)
				WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !exists {
				slog.InfoContext(r.Context(), "token for unknown user", "user_id", userID)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth answers 401 unless AuthMiddleware authenticated the request.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r.Context()) {
			WriteError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// IsAuthenticated checks if user is authenticated
func IsAuthenticated(ctx context.Context) bool {
	_, ok := GetUserID(ctx)
	return ok
}

// WriteError writes the {"error": msg} body every failed request gets.
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
