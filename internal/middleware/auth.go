// Package middleware provides HTTP middleware components.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/carnet/carnet/internal/auth"
	"github.com/carnet/carnet/internal/metrics"
	"github.com/carnet/carnet/internal/model"
	"github.com/carnet/carnet/internal/repository"
)

// UserSource resolves verified token subjects to persisted users.
type UserSource interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// UserCache is an optional read-through cache in front of UserSource.
type UserCache interface {
	GetUser(ctx context.Context, userID int64) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier *auth.TokenIssuer
	Users    UserSource
	Cache    UserCache // optional; nil disables caching
	Metrics  metrics.Recorder
}

// Auth returns a middleware that resolves the bearer token to a user.
// Verification is pure computation; only the user lookup touches the store.
// Every failure mode gets the same 401 body so a bad token and a vanished
// user are indistinguishable from outside, but the log reason tells them
// apart for diagnostics.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				recorder.IncAuthFailure("missing_token")
				writeAuthError(w)
				return
			}

			result := cfg.Verifier.Verify(token, time.Now().UTC())
			if result.Status != auth.TokenValid {
				logAuthFailure(cfg.Logger, r, result.Status.String())
				recorder.IncAuthFailure(result.Status.String())
				writeAuthError(w)
				return
			}

			user, cacheHit := lookupCachedUser(r.Context(), cfg.Cache, result.UserID)
			if user == nil {
				var err error
				user, err = cfg.Users.GetUserByID(r.Context(), result.UserID)
				if err != nil {
					if errors.Is(err, repository.ErrUserNotFound) {
						// Token outlived its user; externally identical to a bad token.
						logAuthFailure(cfg.Logger, r, "user_not_found")
						recorder.IncAuthFailure("user_not_found")
						writeAuthError(w)
						return
					}
					cfg.Logger.Error("store error during auth",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeServerError(w)
					return
				}

				if cfg.Cache != nil {
					_ = cfg.Cache.SetUser(r.Context(), user)
				}
			}

			recorder.IncAuthSuccess(cacheHit)
			cfg.Logger.Debug("request authenticated",
				slog.Int64("user_id", user.ID),
				slog.Bool("cache_hit", cacheHit),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// lookupCachedUser consults the cache if one is configured.
func lookupCachedUser(ctx context.Context, cache UserCache, userID int64) (*model.User, bool) {
	if cache == nil {
		return nil, false
	}
	user, err := cache.GetUser(ctx, userID)
	if err != nil || user == nil {
		return nil, false
	}
	return user, true
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// The body is identical for every auth failure mode.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"authentication required","code":"UNAUTHORIZED"}`))
}

// writeServerError writes a generic 500 response without internal detail.
func writeServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"an internal error occurred","code":"INTERNAL_ERROR"}`))
}
