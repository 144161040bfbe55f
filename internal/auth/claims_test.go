package auth

import (
	"testing"
	"time"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	user := &User{
		ID:       "0d9c2f6e-3a41-4b1f-9a77-2f4c8d1e5b30",
		Username: "observer",
		Role:     RoleAnalyst,
	}
	secret := "test-secret-key-for-jwt-signing"

	token, err := GenerateAccessToken(user, secret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if token == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}

	claims, err := ParseToken(token, secret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.Subject != user.ID {
		t.Errorf("Subject = %q, want %q", claims.Subject, user.ID)
	}

	if claims.Role != RoleAnalyst {
		t.Errorf("Role = %q, want %q", claims.Role, RoleAnalyst)
	}

	if claims.Username != "observer" {
		t.Errorf("Username = %q, want %q", claims.Username, "observer")
	}

	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	user := &User{ID: "usr-001", Role: RoleProvider}

	token, err := GenerateAccessToken(user, "correct-secret", 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err = ParseToken(token, "wrong-secret"); err == nil {
		t.Error("ParseToken() should fail with wrong secret")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	for _, tok := range []string{"", "abc.def", "not-a-valid-jwt"} {
		if _, err := ParseToken(tok, "secret"); err == nil {
			t.Errorf("ParseToken(%q) should fail", tok)
		}
	}
}

func TestGenerateAccessToken_DefaultTTL(t *testing.T) {
	user := &User{ID: "usr-001", Role: RoleProvider}

	token, err := GenerateAccessToken(user, "secret", 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	// Zero TTL falls back to 60 minutes.
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 59*time.Minute || remaining > 61*time.Minute {
		t.Errorf("token expiry %v from now, want about 60 minutes", remaining)
	}
}
