package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/smartbill/smartbill/internal/auth"
	"github.com/smartbill/smartbill/internal/metrics"
	"github.com/smartbill/smartbill/internal/model"
	"github.com/smartbill/smartbill/internal/repository"
)

// UserStore resolves a verified token's user_id claim to a live user
// record. Satisfied by *repository.Repository.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthCache caches resolved identities keyed by a hash of the bearer
// token, saving the user lookup on repeat requests. Satisfied by
// *cache.Cache. May be nil, in which case every request hits the store.
type AuthCache interface {
	GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error)
	SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Tokens  *auth.TokenService
	Users   UserStore
	Cache   AuthCache
	Metrics metrics.Recorder
}

// Auth returns a middleware that authenticates API requests.
// It extracts the bearer token from the Authorization header, verifies
// its signature and expiry, resolves the user_id claim to a live user
// record, and injects the identity into the request context. The gate
// runs before any handler touches subscription rows, and every failure
// produces the same generic 401.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncAuthFailure("missing_token")
				writeAuthError(w)
				return
			}

			// Signature and expiry are checked on every request even
			// when the identity is cached; only the user lookup is
			// skippable.
			claims, err := cfg.Tokens.Verify(token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("detail", err.Error()),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncAuthFailure("invalid_token")
				writeAuthError(w)
				return
			}

			cacheKey := auth.QuickHash(token)
			if cfg.Cache != nil {
				authCtx, _ := cfg.Cache.GetAuthContext(r.Context(), cacheKey)
				if authCtx != nil && authCtx.UserID == claims.UserID {
					recorder.IncAuthSuccess(true)
					ctx := auth.ContextWithAuth(r.Context(), authCtx)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			user, err := cfg.Users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				// A store failure is not an authentication verdict.
				// Answering 401 here would make clients discard a token
				// that is still valid, so it surfaces as a server error.
				if !errors.Is(err, repository.ErrUserNotFound) {
					cfg.Logger.Error("database error during auth",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					recorder.IncAuthFailure("store_error")
					writeServerError(w)
					return
				}
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "unknown_user"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				recorder.IncAuthFailure("unknown_user")
				writeAuthError(w)
				return
			}

			authCtx := &model.AuthContext{
				UserID: user.ID,
				Email:  user.Email,
			}

			if cfg.Cache != nil {
				_ = cfg.Cache.SetAuthContext(r.Context(), cacheKey, authCtx)
			}

			recorder.IncAuthSuccess(false)
			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the bearer token from the Authorization
// header. The strings "null" and "undefined" count as absent: browser
// clients serialize a missing localStorage token to exactly those.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "null" || token == "undefined" {
		return ""
	}
	return token
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing credentials"}}`))
}

// writeServerError writes a generic 500 response for failures that are
// not a verdict on the caller's credentials.
func writeServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"An internal error occurred"}}`))
}
