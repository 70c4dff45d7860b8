package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/idbuilder/worker/internal/apperr"
	"github.com/idbuilder/worker/internal/authtoken"
	"github.com/idbuilder/worker/internal/domain"
	"github.com/idbuilder/worker/internal/httpserver"
)

type callerKey struct{}

// caller is the authenticated identity stashed in the request context by
// RequireAdmin/RequireToken, consumed by handlers that need the token's
// bound key to run authtoken.Authorize against a specific config.
type caller struct {
	tokenType domain.TokenType
	key       string
}

func withCaller(ctx context.Context, c caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func callerFromContext(ctx context.Context) (caller, bool) {
	c, ok := ctx.Value(callerKey{}).(caller)
	return c, ok
}

// bearerToken extracts the raw token from "Authorization: Bearer <token>",
// case-insensitive on the "bearer " prefix.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

// RequireAdmin rejects any request whose bearer token does not validate as
// the admin secret. Used for config CRUD and the token-management routes.
func RequireAdmin(tokens *authtoken.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpserver.RespondAppError(w, apperr.Unauthorized())
				return
			}
			tokenType, valid := tokens.Validate(token)
			if !valid || tokenType != domain.TokenTypeAdmin {
				httpserver.RespondAppError(w, apperr.Unauthorized())
				return
			}
			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller{tokenType: tokenType, key: ""})))
		})
	}
}

// RequireToken accepts either the admin secret or any valid key token, and
// stashes the caller's type/key in context. Per-config authorization (is
// this key allowed to touch this particular config) happens in the handler
// via authtoken.Authorize, since it depends on the target config's
// KeyTokenEnable flag, which isn't known until the config is loaded.
func RequireToken(tokens *authtoken.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpserver.RespondAppError(w, apperr.Unauthorized())
				return
			}
			tokenType, valid := tokens.Validate(token)
			if !valid {
				httpserver.RespondAppError(w, apperr.Unauthorized())
				return
			}
			key := ""
			if tokenType == domain.TokenTypeKey {
				key, _ = tokens.GetTokenKey(token)
			}
			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller{tokenType: tokenType, key: key})))
		})
	}
}

// authorizeConfig applies the policy between the caller stashed in
// ctx and the target config, returning apperr.Forbidden() on denial.
func authorizeConfig(ctx context.Context, configName string, keyTokenEnable bool) error {
	c, ok := callerFromContext(ctx)
	if !ok {
		return apperr.Unauthorized()
	}
	if !authtoken.Authorize(c.tokenType, c.key, configName, keyTokenEnable) {
		return apperr.Forbidden()
	}
	return nil
}
