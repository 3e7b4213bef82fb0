package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/emotify/accounts/internal/server/auth"
)

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFromContext returns the token claims attached by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// RequireAuth verifies the Bearer token on the request and attaches its
// claims to the request context. Requests without a token get 401, requests
// with a bad or expired token get 403.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Access denied. No token provided."})
			return
		}
		claims, err := auth.ParseToken(token, h.secretKey)
		if err != nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "Invalid or expired token"})
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LogRequests logs method, path, status and duration for every request.
func (h *Handler) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
