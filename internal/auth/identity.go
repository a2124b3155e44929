// Package auth resolves the opaque caller identity on each request.
//
// Authentication lives with an external identity provider; this server only
// ever sees an identity token. The token's subject — the external UID — maps
// 1:1 to a User row, and that mapping is the entire authorization model:
// every authenticated user has full access to their own data and none to
// anyone else's.
//
// Two token forms are accepted:
//   - Authorization: Bearer <jwt> — an HS256-signed identity token whose
//     "sub" claim is the external UID, verified against a shared secret.
//   - X-Identity-UID: <uid> — the raw UID, accepted only when no secret is
//     configured. This is the development mode: no provider needed, curl-able.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the expected "iss" claim on identity tokens. Tokens minted for
// other applications are rejected even with the right secret.
const Issuer = "painpal-identity"

// TokenService verifies (and, for local tooling, mints) identity tokens.
// It holds the HMAC secret shared with the identity provider.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: identity secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims; the external UID rides in "sub".
type claims struct {
	jwt.RegisteredClaims
}

// Generate mints an identity token for the given external UID, valid for d.
// Production tokens come from the identity provider — this exists for the
// devtoken CLI and for tests.
func (s *TokenService) Generate(externalUID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   externalUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies an identity token, returning the external UID
// from the "sub" claim.
//
// The library checks the signature, expiry and issuer; pinning the accepted
// methods to HS256 closes the algorithm-confusion hole where a token signed
// with "none" might slip through.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
