package authtoken

import (
	"testing"
	"time"

	"github.com/idbuilder/worker/internal/domain"
)

func newTestService() *Service {
	return NewService(Config{AdminToken: "test_admin_token", KeyTokenExpiration: time.Hour})
}

func TestValidateAdminToken(t *testing.T) {
	s := newTestService()
	tt, ok := s.Validate("test_admin_token")
	if !ok || tt != domain.TokenTypeAdmin {
		t.Fatalf("Validate(admin) = (%v, %v), want (Admin, true)", tt, ok)
	}
}

func TestValidateInvalidToken(t *testing.T) {
	s := newTestService()
	if _, ok := s.Validate("invalid_token"); ok {
		t.Fatalf("Validate(invalid) = ok, want not ok")
	}
}

func TestGenerateAndValidateKeyToken(t *testing.T) {
	s := newTestService()
	info := s.GenerateKeyToken("order-id", "Test token", 0, []string{"increment"})

	if len(info.Token) != 64 {
		t.Fatalf("token length = %d, want 64", len(info.Token))
	}
	if info.Key != "order-id" {
		t.Fatalf("Key = %q, want order-id", info.Key)
	}
	tt, ok := s.Validate(info.Token)
	if !ok || tt != domain.TokenTypeKey {
		t.Fatalf("Validate(key) = (%v, %v), want (Key, true)", tt, ok)
	}
}

func TestTokenLength(t *testing.T) {
	if got := len(generateToken()); got != 64 {
		t.Fatalf("generateToken length = %d, want 64", got)
	}
}

func TestGetOrCreateToken(t *testing.T) {
	s := newTestService()

	info1 := s.GetOrCreateToken("my-key")
	if info1.Key != "my-key" || len(info1.Token) != 64 {
		t.Fatalf("first GetOrCreateToken = %+v", info1)
	}

	info2 := s.GetOrCreateToken("my-key")
	if info1.Token != info2.Token {
		t.Fatalf("second GetOrCreateToken returned a different token")
	}

	info3 := s.GetOrCreateToken("other-key")
	if info1.Token == info3.Token {
		t.Fatalf("different keys produced the same token")
	}
}

func TestResetToken(t *testing.T) {
	s := newTestService()

	info1 := s.GetOrCreateToken("reset-key")
	original := info1.Token

	info2 := s.ResetToken("reset-key")
	if info2.Token == original {
		t.Fatalf("ResetToken returned the same token")
	}
	if info2.Key != "reset-key" {
		t.Fatalf("ResetToken Key = %q, want reset-key", info2.Key)
	}

	if _, ok := s.Validate(original); ok {
		t.Fatalf("old token still validates after reset")
	}
	tt, ok := s.Validate(info2.Token)
	if !ok || tt != domain.TokenTypeKey {
		t.Fatalf("new token does not validate after reset")
	}
}

func TestGetTokenByKey(t *testing.T) {
	s := newTestService()

	if _, ok := s.GetTokenByKey("nonexistent"); ok {
		t.Fatalf("GetTokenByKey(nonexistent) = ok, want not ok")
	}

	info := s.GetOrCreateToken("lookup-key")
	found, ok := s.GetTokenByKey("lookup-key")
	if !ok || found.Token != info.Token {
		t.Fatalf("GetTokenByKey = %+v, want %+v", found, info)
	}
}

func TestRevokeToken(t *testing.T) {
	s := newTestService()

	info := s.GenerateKeyToken("revoke-key", "Test", 0, nil)

	if _, ok := s.Validate(info.Token); !ok {
		t.Fatalf("token should validate before revoke")
	}
	if !s.Revoke(info.Token) {
		t.Fatalf("Revoke = false, want true")
	}
	if _, ok := s.Validate(info.Token); ok {
		t.Fatalf("token should not validate after revoke")
	}
	if _, ok := s.GetTokenByKey("revoke-key"); ok {
		t.Fatalf("GetTokenByKey should fail after revoke")
	}
}

func TestCannotRevokeAdminToken(t *testing.T) {
	s := newTestService()
	if s.Revoke("test_admin_token") {
		t.Fatalf("Revoke(admin) = true, want false")
	}
	if _, ok := s.Validate("test_admin_token"); !ok {
		t.Fatalf("admin token should still validate")
	}
}

func TestExpiredToken(t *testing.T) {
	s := newTestService()

	info := s.GenerateKeyToken("expired-key", "Expiring", time.Nanosecond, nil)
	time.Sleep(10 * time.Millisecond)

	if _, ok := s.Validate(info.Token); ok {
		t.Fatalf("expired token should not validate")
	}
	if _, ok := s.GetTokenByKey("expired-key"); ok {
		t.Fatalf("GetTokenByKey should not return an expired token")
	}
}

func TestIsReservedKeyName(t *testing.T) {
	reserved := []string{"__global__", "__reserved", "reserved__", "__"}
	for _, name := range reserved {
		if !domain.IsReservedName(name) {
			t.Errorf("IsReservedName(%q) = false, want true", name)
		}
	}

	ok := []string{"normal-key", "my_key", "key_with_underscores", "_single", "single_", ""}
	for _, name := range ok {
		if domain.IsReservedName(name) {
			t.Errorf("IsReservedName(%q) = true, want false", name)
		}
	}
}

func TestGetTokenKey(t *testing.T) {
	s := newTestService()

	if _, ok := s.GetTokenKey("test_admin_token"); ok {
		t.Fatalf("GetTokenKey(admin) = ok, want not ok")
	}
	if _, ok := s.GetTokenKey("invalid_token"); ok {
		t.Fatalf("GetTokenKey(invalid) = ok, want not ok")
	}

	info := s.GetOrCreateToken("my-key")
	key, ok := s.GetTokenKey(info.Token)
	if !ok || key != "my-key" {
		t.Fatalf("GetTokenKey = (%q, %v), want (my-key, true)", key, ok)
	}

	global := s.GetOrCreateToken(domain.GlobalTokenKey)
	key, ok = s.GetTokenKey(global.Token)
	if !ok || key != domain.GlobalTokenKey {
		t.Fatalf("GetTokenKey(global) = (%q, %v), want (%q, true)", key, ok, domain.GlobalTokenKey)
	}
}

func TestAuthorizePolicy(t *testing.T) {
	cases := []struct {
		name           string
		tokenType      domain.TokenType
		tokenKey       string
		configName     string
		keyTokenEnable bool
		want           bool
	}{
		{"admin always passes", domain.TokenTypeAdmin, "anything", "cfg", true, true},
		{"global token, disabled per-config tokens", domain.TokenTypeKey, domain.GlobalTokenKey, "cfg", false, true},
		{"matching key, disabled per-config tokens", domain.TokenTypeKey, "cfg", "cfg", false, true},
		{"global token rejected when per-config tokens enabled", domain.TokenTypeKey, domain.GlobalTokenKey, "cfg", true, false},
		{"dedicated key accepted when per-config tokens enabled", domain.TokenTypeKey, "cfg", "cfg", true, true},
		{"mismatched key rejected", domain.TokenTypeKey, "other", "cfg", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Authorize(tc.tokenType, tc.tokenKey, tc.configName, tc.keyTokenEnable); got != tc.want {
				t.Errorf("Authorize(%v, %q, %q, %v) = %v, want %v", tc.tokenType, tc.tokenKey, tc.configName, tc.keyTokenEnable, got, tc.want)
			}
		})
	}
}
