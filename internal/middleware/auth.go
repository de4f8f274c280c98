package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leadgate/leadgate/internal/auth"
	"github.com/leadgate/leadgate/internal/cache"
	"github.com/leadgate/leadgate/internal/model"
)

const (
	// minAuthDuration is the minimum time spent on failed auth to
	// blunt credential probing.
	minAuthDuration = 200 * time.Millisecond

	// APIKeyHeader carries the private account key on owner routes and
	// the public project key on the ingestion route.
	APIKeyHeader = "X-API-Key"
)

// AuthConfig holds dependencies for the auth middlewares.
type AuthConfig struct {
	Logger   *slog.Logger
	Resolver *auth.Resolver
	// Cache is optional; when nil every request resolves against the
	// store.
	Cache *cache.Cache
}

// OwnerAuth authenticates owner-tier requests: a bearer identity token
// (checked first) or the private account key. Missing credentials are
// a 403, present-but-unmatched credentials a 401, mirroring the wire
// contract of the management endpoints.
func OwnerAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := auth.Credentials{
				BearerToken: extractBearerToken(r),
				APIKey:      r.Header.Get(APIKeyHeader),
			}

			cacheKey := ownerCacheKey(creds)

			tenant, ok := cachedTenant(r, cfg, cacheKey)
			if !ok {
				start := time.Now()
				var err error
				tenant, err = cfg.Resolver.ResolveOwner(r.Context(), creds)
				if err != nil {
					holdAuthFloor(start)
					writeOwnerAuthError(w, r, cfg.Logger, err)
					return
				}
				storeTenant(r, cfg, cacheKey, tenant)
			}

			ctx := auth.ContextWithTenant(r.Context(), tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProjectAuth authenticates the lead-ingestion route via the public
// project key. A missing key is a 400, anything unmatched a 401.
func ProjectAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := auth.Credentials{APIKey: r.Header.Get(APIKeyHeader)}

			cacheKey := ""
			if creds.APIKey != "" {
				cacheKey = auth.QuickHash("project:" + creds.APIKey)
			}

			tenant, ok := cachedTenant(r, cfg, cacheKey)
			if !ok {
				start := time.Now()
				var err error
				tenant, err = cfg.Resolver.ResolveProject(r.Context(), creds)
				if err != nil {
					holdAuthFloor(start)
					writeProjectAuthError(w, r, cfg.Logger, err)
					return
				}
				storeTenant(r, cfg, cacheKey, tenant)
			}

			ctx := auth.ContextWithTenant(r.Context(), tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func cachedTenant(r *http.Request, cfg AuthConfig, cacheKey string) (*model.TenantContext, bool) {
	if cfg.Cache == nil || cacheKey == "" {
		return nil, false
	}
	tenant, _ := cfg.Cache.GetTenant(r.Context(), cacheKey)
	if tenant == nil {
		return nil, false
	}
	return tenant, true
}

func storeTenant(r *http.Request, cfg AuthConfig, cacheKey string, tenant *model.TenantContext) {
	if cfg.Cache == nil || cacheKey == "" {
		return
	}
	_ = cfg.Cache.SetTenant(r.Context(), cacheKey, tenant)
}

func ownerCacheKey(creds auth.Credentials) string {
	switch {
	case creds.BearerToken != "":
		return auth.QuickHash("token:" + creds.BearerToken)
	case creds.APIKey != "":
		return auth.QuickHash("owner:" + creds.APIKey)
	}
	return ""
}

// holdAuthFloor pads failed auth attempts to a constant minimum so
// response time does not reveal which check rejected the credential.
func holdAuthFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < minAuthDuration {
		time.Sleep(minAuthDuration - elapsed)
	}
}

func writeOwnerAuthError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		status, code = http.StatusForbidden, "MISSING_CREDENTIALS"
	case errors.Is(err, auth.ErrInvalidToken):
		status, code = http.StatusUnauthorized, "INVALID_TOKEN"
	case errors.Is(err, auth.ErrAccountNotFound):
		status, code = http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, auth.ErrInvalidKey):
		status, code = http.StatusUnauthorized, "INVALID_KEY"
	default:
		logger.Error("auth resolution error",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		status, code = http.StatusInternalServerError, "INTERNAL_ERROR"
	}

	logAuthFailure(r, logger, code)
	writeAuthJSON(w, status, code)
}

func writeProjectAuthError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		status, code = http.StatusBadRequest, "MISSING_KEY"
	case errors.Is(err, auth.ErrInvalidKey):
		status, code = http.StatusUnauthorized, "INVALID_KEY"
	default:
		logger.Error("auth resolution error",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		status, code = http.StatusInternalServerError, "INTERNAL_ERROR"
	}

	logAuthFailure(r, logger, code)
	writeAuthJSON(w, status, code)
}

func logAuthFailure(r *http.Request, logger *slog.Logger, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", strings.ToLower(reason)),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

func writeAuthJSON(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":"Authentication failed","code":%q}`, code)
}

// extractBearerToken pulls the identity token from the Authorization
// header, if any.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
