package token

import (
	"strings"
	"testing"
)

func TestGenerateAndValidateRoundTrip(t *testing.T) {
	tok, err := GenerateJWT("scorer-42", "test-secret", 15)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ValidateJWT(tok, "test-secret")
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.ScorerID != "scorer-42" {
		t.Fatalf("scorer id = %q, want scorer-42", claims.ScorerID)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tok, err := GenerateJWT("scorer-42", "test-secret", 15)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ValidateJWT(tok, "other-secret"); err == nil {
		t.Fatalf("expected an error for a token signed with another secret")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	tok, err := GenerateJWT("scorer-42", "test-secret", -1)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	_, err = ValidateJWT(tok, "test-secret")
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("got %v, want expiry error", err)
	}
}

func TestValidateRejectsEmptyToken(t *testing.T) {
	if _, err := ValidateJWT("", "test-secret"); err == nil {
		t.Fatalf("expected an error for an empty token")
	}
}
