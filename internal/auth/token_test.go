package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-signing-secret")

func TestTokenService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 30*time.Minute)

	token, err := svc.Issue("user-123", "alice@x.com", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("expected user_id 'user-123', got %s", claims.UserID)
	}
	if claims.Email != "alice@x.com" {
		t.Errorf("expected email 'alice@x.com', got %s", claims.Email)
	}

	wantExpiry := time.Now().Add(30 * time.Minute)
	gotExpiry := claims.ExpiresAt.Time
	if gotExpiry.Before(wantExpiry.Add(-time.Minute)) || gotExpiry.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expiry %s not within a minute of %s", gotExpiry, wantExpiry)
	}
}

func TestTokenService_DefaultLifetime(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 0)
	if svc.Lifetime() != DefaultTokenLifetime {
		t.Errorf("expected default lifetime %s, got %s", DefaultTokenLifetime, svc.Lifetime())
	}
}

func TestTokenService_Expired(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 30*time.Minute)

	// Sign an already-expired token with the correct secret.
	expired := signClaims(t, testSecret, SessionClaims{
		UserID: "user-123",
		Email:  "alice@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	_, err := svc.Verify(expired)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 30*time.Minute)
	other := NewTokenService([]byte("a-different-secret"), 30*time.Minute)

	token, err := other.Issue("user-123", "alice@x.com", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestTokenService_TamperedClaims(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 30*time.Minute)

	token, err := svc.Issue("user-123", "alice@x.com", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	// Replace the claims segment with a re-encoded variant; the
	// signature no longer matches.
	forged := signClaims(t, []byte("attacker-secret"), SessionClaims{
		UserID: "user-456",
		Email:  "mallory@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tampered := parts[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]

	if _, err := svc.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered claims, got %v", err)
	}
}

func TestTokenService_MissingIdentityClaims(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 30*time.Minute)

	tests := []struct {
		name   string
		claims SessionClaims
	}{
		{"no_user_id", SessionClaims{
			Email: "alice@x.com",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}},
		{"no_email", SessionClaims{
			UserID: "user-123",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Well-signed, unexpired, but missing an identity claim.
			token := signClaims(t, testSecret, test.claims)
			if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenService_Garbage(t *testing.T) {
	t.Parallel()

	svc := NewTokenService(testSecret, 30*time.Minute)

	for _, garbage := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := svc.Verify(garbage); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", garbage, err)
		}
	}
}

func signClaims(t *testing.T, secret []byte, claims SessionClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign claims: %v", err)
	}
	return signed
}
