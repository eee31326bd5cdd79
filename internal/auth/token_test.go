// ABOUTME: Tests for JWT token generation and verification
// ABOUTME: Covers claim roundtrips, expiry, wrong secret, and malformed tokens

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// testSecret is a 32-byte secret that meets MinSecretLength.
var testSecret = []byte("taskboard-token-test-secret-32b!")

func TestJWTVerifier_Roundtrip(t *testing.T) {
	verifier, err := NewJWTVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}

	token, err := verifier.Generate("user-123", "admin", time.Hour)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("expected user ID 'user-123', got '%s'", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("expected role 'admin', got '%s'", claims.Role)
	}
}

func TestJWTVerifier_ShortSecret(t *testing.T) {
	_, err := NewJWTVerifier([]byte("too-short"))
	if err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestJWTVerifier_ExpiredToken(t *testing.T) {
	verifier, _ := NewJWTVerifier(testSecret)

	token, err := verifier.Generate("user-123", "user", -time.Minute)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	verifier, _ := NewJWTVerifier(testSecret)
	other, _ := NewJWTVerifier([]byte("another-signing-secret-32-bytes!"))

	token, _ := verifier.Generate("user-123", "user", time.Hour)

	_, err := other.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTVerifier_MalformedToken(t *testing.T) {
	verifier, _ := NewJWTVerifier(testSecret)

	_, err := verifier.Verify("not-a-jwt")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTVerifier_MissingRoleClaim(t *testing.T) {
	verifier, _ := NewJWTVerifier(testSecret)

	// Hand-build a token with no role claim
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": "user-123",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrMissingClaim) {
		t.Errorf("expected ErrMissingClaim, got %v", err)
	}
}

func TestJWTVerifier_RejectsNoneAlgorithm(t *testing.T) {
	verifier, _ := NewJWTVerifier(testSecret)

	claims := jwt.MapClaims{"sub": "user-123", "role": "admin"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Error("expected unsigned token to be rejected")
	}
}
