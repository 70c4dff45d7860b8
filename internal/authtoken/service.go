package authtoken

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/idbuilder/worker/internal/domain"
)

// tokenBytes is the raw entropy behind every minted key token: 48 random
// bytes, URL-safe base64 encoded without padding, which always yields
// exactly 64 characters.
const tokenBytes = 48

// Config is the subset of the auth section of the application config the
// token service needs.
type Config struct {
	AdminToken         string
	KeyTokenExpiration time.Duration
}

// Service implements the two-tier token model: a single admin secret
// compared in constant time, and per-key tokens minted, looked up, reset,
// and revoked through the in-memory store.
type Service struct {
	adminToken string
	expiration time.Duration
	store      *store
}

func NewService(cfg Config) *Service {
	return &Service{
		adminToken: cfg.AdminToken,
		expiration: cfg.KeyTokenExpiration,
		store:      newStore(),
	}
}

func (s *Service) isAdminToken(token string) bool {
	// Constant-time compare: token length differences already leak nothing
	// useful, but a naive == would short-circuit on the first differing
	// byte, and this comparison runs on every authenticated request.
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) == 1
}

// Validate returns the token's type if it is the admin secret or a live key
// token, or ok=false otherwise.
func (s *Service) Validate(token string) (domain.TokenType, bool) {
	if s.isAdminToken(token) {
		return domain.TokenTypeAdmin, true
	}
	if info, ok := s.store.get(token); ok && info.IsValid() {
		return info.TokenType, true
	}
	return "", false
}

// GetTokenInfo returns the full record for a token, synthesizing the admin
// token's pseudo-record (it is never stored) the way the reference does.
func (s *Service) GetTokenInfo(token string) (domain.TokenInfo, bool) {
	if s.isAdminToken(token) {
		return domain.TokenInfo{
			Token:       token,
			TokenType:   domain.TokenTypeAdmin,
			Description: "Admin token",
			CreatedAt:   time.Unix(0, 0).UTC(),
			ExpiresAt:   time.Unix(1<<62, 0).UTC(),
			Permissions: []string{"*"},
		}, true
	}
	info, ok := s.store.get(token)
	if !ok || !info.IsValid() {
		return domain.TokenInfo{}, false
	}
	return info, true
}

// GetTokenKey returns the key name a token is associated with, or ok=false
// for the admin token, an invalid token, or an expired one.
func (s *Service) GetTokenKey(token string) (string, bool) {
	if s.isAdminToken(token) {
		return "", false
	}
	info, ok := s.store.get(token)
	if !ok || !info.IsValid() {
		return "", false
	}
	return info.Key, true
}

// GetTokenByKey returns the live token info for a key name, if any.
func (s *Service) GetTokenByKey(key string) (domain.TokenInfo, bool) {
	info, ok := s.store.getByKey(key)
	if !ok || !info.IsValid() {
		return domain.TokenInfo{}, false
	}
	return info, true
}

// GetOrCreateToken returns the existing live token for key, minting one if
// none exists or the prior one expired.
func (s *Service) GetOrCreateToken(key string) domain.TokenInfo {
	if info, ok := s.GetTokenByKey(key); ok {
		return info
	}
	return s.createTokenForKey(key)
}

// ResetToken discards any existing token for key and mints a fresh one.
func (s *Service) ResetToken(key string) domain.TokenInfo {
	s.store.removeByKey(key)
	return s.createTokenForKey(key)
}

func (s *Service) createTokenForKey(key string) domain.TokenInfo {
	now := time.Now()
	info := domain.TokenInfo{
		Token:       generateToken(),
		Key:         key,
		TokenType:   domain.TokenTypeKey,
		Description: fmt.Sprintf("Token for key: %s", key),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.expiration),
		Permissions: []string{key},
	}
	s.store.insert(info)
	return info
}

// GenerateKeyToken mints a token with caller-supplied metadata, replacing
// any existing token for the same key. Kept alongside GetOrCreateToken/
// ResetToken for callers (e.g. a future admin API) that need to set a
// custom description, expiration, or permission list.
func (s *Service) GenerateKeyToken(key, description string, expiresIn time.Duration, permissions []string) domain.TokenInfo {
	s.store.removeByKey(key)

	expiration := s.expiration
	if expiresIn > 0 {
		expiration = expiresIn
	}

	now := time.Now()
	info := domain.TokenInfo{
		Token:       generateToken(),
		Key:         key,
		TokenType:   domain.TokenTypeKey,
		Description: description,
		CreatedAt:   now,
		ExpiresAt:   now.Add(expiration),
		Permissions: permissions,
	}
	s.store.insert(info)
	return info
}

// Revoke deletes a key token. The admin token can never be revoked.
func (s *Service) Revoke(token string) bool {
	if s.isAdminToken(token) {
		return false
	}
	return s.store.remove(token)
}

// Cleanup evicts every expired token from the store.
func (s *Service) Cleanup() {
	s.store.cleanupExpired()
}

func generateToken() string {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is
		// unavailable, which is unrecoverable for a process that must mint
		// secrets; panicking mirrors the reference's rng.fill, which cannot
		// fail at all.
		panic(fmt.Sprintf("authtoken: reading random bytes: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
