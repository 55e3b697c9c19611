package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("kru.somsri@school.ac.th", "ครูสมศรี")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Email != "kru.somsri@school.ac.th" || claims.Name != "ครูสมศรี" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue("kru.somsri@school.ac.th", "ครูสมศรี")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("kru.somsri@school.ac.th", "ครูสมศรี")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify of expired token = %v, want ErrInvalidToken", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestCSRFTokens(t *testing.T) {
	csrf := NewCSRF("test-secret")

	token, err := csrf.Token("session-1")
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if !csrf.Valid("session-1", token) {
		t.Error("token rejected for its own session")
	}
	if csrf.Valid("session-2", token) {
		t.Error("token accepted for a different session")
	}
	if csrf.Valid("session-1", token+"tampered") {
		t.Error("tampered token accepted")
	}
	if csrf.Valid("", token) || csrf.Valid("session-1", "") {
		t.Error("empty inputs accepted")
	}
	if _, err := csrf.Token(""); err == nil {
		t.Error("Token accepted an empty session id")
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("1.2.3.4") {
			t.Fatalf("attempt %d denied inside the limit", i+1)
		}
	}
	if limiter.Allow("1.2.3.4") {
		t.Error("attempt over the limit allowed")
	}

	// other clients are tracked independently
	if !limiter.Allow("5.6.7.8") {
		t.Error("unrelated client denied")
	}
}
