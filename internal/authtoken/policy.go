package authtoken

import "github.com/idbuilder/worker/internal/domain"

// Authorize implements the per-config authorization policy:
//   - the admin token always passes.
//   - a key token passes if keyTokenEnable is false and the token's key is
//     either the global key or the config's own name (global-token mode).
//   - a key token passes if keyTokenEnable is true and the token's key
//     exactly matches the config's own name (dedicated per-config token).
func Authorize(tokenType domain.TokenType, tokenKey, configName string, keyTokenEnable bool) bool {
	if tokenType == domain.TokenTypeAdmin {
		return true
	}
	if keyTokenEnable {
		return tokenKey == configName
	}
	return tokenKey == domain.GlobalTokenKey || tokenKey == configName
}
