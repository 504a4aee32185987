package auth

import (
	"testing"
	"time"

	"github.com/cybershield/threat-exchange/internal/domain"
)

func TestGenerateAndParseToken(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Minute)

	token, exp, err := manager.GenerateToken("user-1", domain.RoleDataProvider)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Errorf("expiry %v is not in the future", exp)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", claims.UserID)
	}
	if claims.Role != domain.RoleDataProvider {
		t.Errorf("role = %q, want %q", claims.Role, domain.RoleDataProvider)
	}
	if claims.ID == "" {
		t.Error("token id must be set, the logout denylist keys on it")
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Minute)

	first, _, err := manager.GenerateToken("user-1", domain.RoleDataProvider)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := manager.GenerateToken("user-1", domain.RoleDataProvider)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := manager.ParseToken(first)
	b, _ := manager.ParseToken(second)
	if a.ID == b.ID {
		t.Error("two tokens for the same user must carry distinct ids")
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	issuer := NewTokenManager("issuer-secret", time.Minute)
	verifier := NewTokenManager("other-secret", time.Minute)

	token, _, err := issuer.GenerateToken("user-1", domain.RoleDataProvider)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Error("a token signed with a different secret must not validate")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	manager := NewTokenManager("test-secret", -time.Minute)
	// NewTokenManager floors non-positive TTLs, so craft the expiry directly.
	manager.ttl = -time.Minute

	token, _, err := manager.GenerateToken("user-1", domain.RoleDataProvider)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := manager.ParseToken(token); err == nil {
		t.Error("an expired token must not validate")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must differ from the plaintext")
	}
	if err := ComparePassword(hash, "hunter22"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
}
