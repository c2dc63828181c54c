package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenLifetime is the validity window applied when a caller
// does not supply an explicit lifetime.
const DefaultTokenLifetime = 30 * time.Minute

// ErrInvalidToken indicates a token that failed structural, signature
// or expiry checks. All verification failures wrap this error so the
// caller gets a single deny decision regardless of root cause.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims are the facts carried by a session token.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens.
// The signing secret is fixed at construction and never mutated, so a
// single instance is safe to share across request handlers.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenService creates a TokenService with the given signing secret
// and default token lifetime. A non-positive lifetime falls back to
// DefaultTokenLifetime.
func NewTokenService(secret []byte, lifetime time.Duration) *TokenService {
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &TokenService{
		secret:   secret,
		lifetime: lifetime,
	}
}

// Issue creates a signed token for the given user identity.
// A non-positive lifetime means the service default.
func (s *TokenService) Issue(userID, email string, lifetime time.Duration) (string, error) {
	if lifetime <= 0 {
		lifetime = s.lifetime
	}

	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the token's signature and expiry and returns its
// claims. A well-signed token missing user_id or email is invalid.
// All failures wrap ErrInvalidToken; Verify never panics on malformed
// input.
func (s *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing identity claims", ErrInvalidToken)
	}

	return claims, nil
}

// Lifetime returns the configured default token lifetime.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}
