package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateToken("user-1", "analyst", "analyst@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Username != "analyst" {
		t.Errorf("Username = %q, want %q", claims.Username, "analyst")
	}
	if claims.Email != "analyst@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "analyst@example.com")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Hour, 24*time.Hour)
	verifier := NewJWTManager("secret-b", time.Hour, 24*time.Hour)

	token, err := issuer.GenerateToken("user-1", "analyst", "analyst@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Error("ValidateToken() should reject a token signed with a different secret")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, 24*time.Hour)

	token, err := m.GenerateToken("user-1", "analyst", "analyst@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Error("ValidateToken() should reject an expired token")
	}
}

func TestValidateGarbageToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	if _, err := m.ValidateToken("not.a.token"); err == nil {
		t.Error("ValidateToken() should reject malformed input")
	}
}

func TestRefreshTokenCarriesUserID(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateRefreshToken("user-7")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error: %v", err)
	}
	if claims.UserID != "user-7" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-7")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Error("hash should not equal the plaintext password")
	}
	if !CheckPasswordHash("correct horse battery staple", hash) {
		t.Error("CheckPasswordHash() should accept the original password")
	}
	if CheckPasswordHash("wrong password", hash) {
		t.Error("CheckPasswordHash() should reject a different password")
	}
}
