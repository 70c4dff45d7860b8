package api

import (
	"net/http"

	"github.com/idbuilder/worker/internal/domain"
	"github.com/idbuilder/worker/internal/httpserver"
)

// tokenResponse mirrors the reference's TokenResponse DTO.
type tokenResponse struct {
	Token     string `json:"token"`
	Key       string `json:"key"`
	TokenType string `json:"token_type"`
	ExpiresAt string `json:"expires_at"`
}

func toTokenResponse(info domain.TokenInfo) tokenResponse {
	return tokenResponse{
		Token:     info.Token,
		Key:       info.Key,
		TokenType: string(info.TokenType),
		ExpiresAt: info.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// handleGetToken handles GET /v1/auth/token?key=, returning the existing
// token for key or minting one if none exists yet.
func (a *API) handleGetToken(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		httpserver.RespondBadRequest(w, "key is required")
		return
	}
	info := a.Tokens.GetOrCreateToken(key)
	httpserver.Respond(w, http.StatusOK, toTokenResponse(info))
}

// handleResetToken handles GET /v1/auth/tokenreset?key=, rotating the
// token bound to key and invalidating the previous value.
func (a *API) handleResetToken(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		httpserver.RespondBadRequest(w, "key is required")
		return
	}
	info := a.Tokens.ResetToken(key)
	httpserver.Respond(w, http.StatusOK, toTokenResponse(info))
}

// verifyResponse reports whether the presented admin token is valid; the
// handler only runs at all once RequireAdmin has already accepted it, so a
// response is only ever reached on success.
type verifyResponse struct {
	Valid     bool   `json:"valid"`
	TokenType string `json:"token_type"`
}

// handleVerify handles GET /v1/auth/verify.
func (a *API) handleVerify(w http.ResponseWriter, r *http.Request) {
	httpserver.Respond(w, http.StatusOK, verifyResponse{Valid: true, TokenType: string(domain.TokenTypeAdmin)})
}
