package auth

import (
	"testing"
	"time"
)

func TestSignAndVerifyToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := SignToken("user-1", "user@example.com", "User One", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Sub != "user-1" {
		t.Fatalf("expected sub user-1, got %q", claims.Sub)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("expected email to round-trip, got %q", claims.Email)
	}
}

func TestVerifyTokenRejectsTampered(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := SignToken("user-1", "", "", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	if _, err := VerifyToken(token + "x"); err == nil {
		t.Fatalf("expected tampered token to fail verification")
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := SignToken("user-1", "", "", time.Millisecond)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := VerifyToken(token); err == nil {
		t.Fatalf("expected expired token to fail verification")
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-a")
	token, err := SignToken("user-1", "", "", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-b")
	if _, err := VerifyToken(token); err == nil {
		t.Fatalf("expected token signed with other secret to fail")
	}
}
