package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"rickmorty-api/internal/contextutil"
)

// Middleware rejects requests without a valid access token and puts the
// caller into the request context.
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := contextutil.LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeUnauthorized(w, "Authentication credentials were not provided.")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || token == "" {
			writeUnauthorized(w, "Invalid authorization header.")
			return
		}

		claims, err := j.Parse(token, TokenAccess)
		if err != nil {
			logger.DebugContext(r.Context(), "rejected bearer token", "error", err)
			if errors.Is(err, ErrExpiredToken) {
				writeUnauthorized(w, "Token has expired.")
			} else {
				writeUnauthorized(w, "Given token not valid for any token type.")
			}
			return
		}

		ctx := contextutil.WithUser(r.Context(), contextutil.User{ID: claims.UserID, Username: claims.Username})
		ctx = contextutil.WithLogger(ctx, logger.With("user_id", claims.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
