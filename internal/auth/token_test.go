package auth

import (
	"context"
	"strings"
	"testing"
)

func TestHMACVerifier_RoundTrip(t *testing.T) {
	t.Parallel()

	verifier := NewHMACVerifier("test-secret")
	token := verifier.SignSubject("account-42")

	if !strings.HasPrefix(token, "v1.") {
		t.Errorf("Token should start with v1., got: %s", token)
	}

	subject, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "account-42" {
		t.Errorf("Subject = %s, want account-42", subject)
	}
}

func TestHMACVerifier_WrongSecret(t *testing.T) {
	t.Parallel()

	token := NewHMACVerifier("secret-a").SignSubject("account-42")

	_, err := NewHMACVerifier("secret-b").Verify(context.Background(), token)
	if err != ErrInvalidToken {
		t.Errorf("Verify with wrong secret error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestHMACVerifier_TamperedSubject(t *testing.T) {
	t.Parallel()

	verifier := NewHMACVerifier("test-secret")
	token := verifier.SignSubject("account-42")
	other := verifier.SignSubject("account-43")

	// Splice the signature of one token onto the subject of another.
	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	if _, err := verifier.Verify(context.Background(), forged); err != ErrInvalidToken {
		t.Errorf("Verify of forged token error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestHMACVerifier_Malformed(t *testing.T) {
	t.Parallel()

	verifier := NewHMACVerifier("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no dots", "v1"},
		{"one dot", "v1.YWJj"},
		{"wrong version", "v2.YWJj.c2ln"},
		{"bad subject b64", "v1.!!!.c2ln"},
		{"bad signature b64", "v1.YWJj.!!!"},
		{"empty subject", "v1..c2ln"},
		{"four parts", "v1.YWJj.c2ln.extra"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := verifier.Verify(context.Background(), tt.token); err != ErrInvalidToken {
				t.Errorf("Verify(%q) error = %v, want %v", tt.token, err, ErrInvalidToken)
			}
		})
	}
}
