// Package authtoken implements the two-tier authentication model: a single
// configured admin secret compared in constant time, and per-key random
// tokens minted on demand, dual-indexed for O(1) lookup by either the token
// string or its owning key name.
package authtoken

import (
	"sync"

	"github.com/idbuilder/worker/internal/domain"
)

// store is the in-memory token table, indexed both by token string and by
// key name so get_token_by_key doesn't require a linear scan.
type store struct {
	mu         sync.RWMutex
	byToken    map[string]domain.TokenInfo
	tokenByKey map[string]string
}

func newStore() *store {
	return &store{
		byToken:    make(map[string]domain.TokenInfo),
		tokenByKey: make(map[string]string),
	}
}

func (s *store) insert(info domain.TokenInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[info.Token] = info
	s.tokenByKey[info.Key] = info.Token
}

func (s *store) get(token string) (domain.TokenInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.byToken[token]
	return info, ok
}

func (s *store) getByKey(key string) (domain.TokenInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokenByKey[key]
	if !ok {
		return domain.TokenInfo{}, false
	}
	info, ok := s.byToken[token]
	return info, ok
}

func (s *store) remove(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.byToken[token]
	if !ok {
		return false
	}
	delete(s.byToken, token)
	delete(s.tokenByKey, info.Key)
	return true
}

func (s *store) removeByKey(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokenByKey[key]
	if !ok {
		return false
	}
	delete(s.tokenByKey, key)
	delete(s.byToken, token)
	return true
}

// cleanupExpired evicts every token whose expiry has passed.
func (s *store) cleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, info := range s.byToken {
		if info.IsValid() {
			continue
		}
		delete(s.byToken, token)
		delete(s.tokenByKey, info.Key)
	}
}
